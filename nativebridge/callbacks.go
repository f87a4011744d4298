// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package nativebridge

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	webbridge "github.com/YindSoft/chromium-ebitengine-bridge"
)

// Callback slots understood by wb_set_callback.
const (
	cbInterceptRequest = iota
	cbOverrideURLLoading
	cbPageLoad
	cbReceivedError
	cbReceivedTitle
	cbJSDialog
	cbBeforePopup
	cbConsoleMessage
	cbAddressChange
	cbRenderProcessTerminated
)

// registerCallbacks hands the library one C function pointer per slot. The
// library calls them on engine threads with the handle the browser was
// created with.
func registerCallbacks() {
	for kind, fn := range map[int32]any{
		cbInterceptRequest:        onInterceptRequest,
		cbOverrideURLLoading:      onOverrideURLLoading,
		cbPageLoad:                onPageLoad,
		cbReceivedError:           onReceivedError,
		cbReceivedTitle:           onReceivedTitle,
		cbJSDialog:                onJSDialog,
		cbBeforePopup:             onBeforePopup,
		cbConsoleMessage:          onConsoleMessage,
		cbAddressChange:           onAddressChange,
		cbRenderProcessTerminated: onRenderProcessTerminated,
	} {
		wbSetCallback(kind, purego.NewCallback(fn))
	}
}

// onInterceptRequest answers through wb_respond before returning 1, or
// returns 0 to let the engine load the URL itself.
func onInterceptRequest(handle, requestID, url uintptr) uintptr {
	resp := webbridge.InterceptRequest(webbridge.Handle(handle), goString(url))
	if !resp.Override {
		return 0
	}
	var data uintptr
	if len(resp.Body) > 0 {
		data = uintptr(unsafe.Pointer(&resp.Body[0]))
	}
	wbRespond(uint64(requestID), data, int64(len(resp.Body)))
	runtime.KeepAlive(resp.Body)
	return 1
}

func onOverrideURLLoading(handle, url, isRedirect, isMainFrame uintptr) uintptr {
	u := goString(url)
	cancel := webbridge.OverrideURLLoading(webbridge.Handle(handle), webbridge.NavigationRequest{
		URL:         u,
		IsRedirect:  isRedirect != 0,
		IsMainFrame: isMainFrame != 0,
	})
	return uintptr(boolToInt(cancel))
}

func onPageLoad(handle, url, loading, historySize, historyPosition uintptr) uintptr {
	webbridge.PageLoad(webbridge.Handle(handle), goString(url), loading != 0,
		int(int32(historySize)), int(int32(historyPosition)))
	return 0
}

func onReceivedError(handle, code, url uintptr) uintptr {
	webbridge.ReceivedError(webbridge.Handle(handle), int(int32(code)), goString(url))
	return 0
}

func onReceivedTitle(handle, title uintptr) uintptr {
	webbridge.ReceivedTitle(webbridge.Handle(handle), goString(title))
	return 0
}

// onJSDialog returns 1 when the host took the dialog. The library keeps the
// dialog open until wb_dialog_continue is called with its id.
func onJSDialog(handle, dialogID, dialogType, url, message, defaultPrompt uintptr) uintptr {
	id := uint64(dialogID)
	req := webbridge.NewDialogRequest(
		webbridge.DialogType(int32(dialogType)),
		goString(url),
		goString(message),
		goString(defaultPrompt),
		webbridge.DialogContinuationFunc(func(accept bool, text string) {
			wbDialogContinue(id, boolToInt(accept), text)
		}),
	)
	return uintptr(boolToInt(webbridge.JSDialog(webbridge.Handle(handle), req)))
}

func onBeforePopup(handle, url, frameName uintptr) uintptr {
	suppress := webbridge.BeforePopup(webbridge.Handle(handle), webbridge.PopupRequest{
		URL:       goString(url),
		FrameName: goString(frameName),
	})
	return uintptr(boolToInt(suppress))
}

func onConsoleMessage(handle, level, message, source, line uintptr) uintptr {
	webbridge.ConsoleMessage(webbridge.Handle(handle), webbridge.ConsoleLevel(int32(level)),
		goString(message), goString(source), int(int32(line)))
	return 0
}

// onAddressChange is only fired for the main frame.
func onAddressChange(handle, url uintptr) uintptr {
	webbridge.AddressChange(webbridge.Handle(handle), goString(url))
	return 0
}

func onRenderProcessTerminated(handle, status uintptr) uintptr {
	webbridge.RenderProcessTerminated(webbridge.Handle(handle), webbridge.TerminationStatus(int32(status)))
	return 0
}
