// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Entry points for engine bindings. Each resolves the handle first; an
// unknown or closed widget yields the conservative default without
// reaching any host code.

var nativeLog atomic.Pointer[zerolog.Logger]

// SetNativeLogger sets the logger stale-handle callbacks are reported to.
func SetNativeLogger(logger zerolog.Logger) {
	l := logger.With().Str("component", "native").Logger()
	nativeLog.Store(&l)
}

func clientFor(h Handle, callback string) (*Client, bool) {
	w, ok := widgets.Lookup(h)
	if !ok {
		if l := nativeLog.Load(); l != nil {
			l.Debug().Uint64("handle", uint64(h)).Str("callback", callback).Msg("stale handle, ignoring callback")
		}
		return nil, false
	}
	return w.client, true
}

// InterceptRequest returns an override for the request, or a zero
// LoadResponse to let the engine load it.
func InterceptRequest(h Handle, url string) LoadResponse {
	c, ok := clientFor(h, "intercept-request")
	if !ok {
		return LoadResponse{}
	}
	return c.Request.OnInterceptRequest(url)
}

// OverrideURLLoading returns true when the navigation must be cancelled.
func OverrideURLLoading(h Handle, req NavigationRequest) bool {
	c, ok := clientFor(h, "override-url-loading")
	if !ok {
		return false
	}
	return c.Request.OnOverrideURLLoading(req)
}

// PageLoad reports a load start (loading true) or end with the history
// state at that moment.
func PageLoad(h Handle, url string, loading bool, historySize, historyPosition int) {
	c, ok := clientFor(h, "page-load")
	if !ok {
		return
	}
	c.Load.OnPageLoad(url, loading, historySize, historyPosition)
}

// ReceivedError reports a failed load.
func ReceivedError(h Handle, code int, url string) {
	c, ok := clientFor(h, "received-error")
	if !ok {
		return
	}
	c.Load.OnLoadError(code, url)
}

// ReceivedTitle reports a document title change.
func ReceivedTitle(h Handle, title string) {
	c, ok := clientFor(h, "received-title")
	if !ok {
		return
	}
	c.Display.OnTitleChange(title)
}

// JSDialog asks the host to resolve a dialog. It returns false when the
// engine should show its default dialog.
func JSDialog(h Handle, dialog *DialogRequest) bool {
	c, ok := clientFor(h, "js-dialog")
	if !ok {
		return false
	}
	return c.Dialog.OnJSDialog(dialog)
}

// BeforePopup returns true when the popup must be suppressed.
func BeforePopup(h Handle, req PopupRequest) bool {
	c, ok := clientFor(h, "before-popup")
	if !ok {
		return true
	}
	return c.LifeSpan.OnBeforePopup(req)
}

// AddressChange reports a main-frame URL change.
func AddressChange(h Handle, url string) {
	c, ok := clientFor(h, "address-change")
	if !ok {
		return
	}
	c.Display.OnAddressChange(url)
}

// RenderProcessTerminated reports that the page's renderer process died.
func RenderProcessTerminated(h Handle, status TerminationStatus) {
	c, ok := clientFor(h, "render-process-terminated")
	if !ok {
		return
	}
	c.Load.OnRenderProcessTerminated(status)
}

// ConsoleMessage forwards a page console line.
func ConsoleMessage(h Handle, level ConsoleLevel, message, source string, line int) {
	c, ok := clientFor(h, "console-message")
	if !ok {
		return
	}
	c.Display.OnConsoleMessage(level, message, source, line)
}
