// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

// DisplayHandler receives presentation events.
type DisplayHandler interface {
	OnTitleChange(title string)
	// OnAddressChange reports the main frame's new URL.
	OnAddressChange(url string)
	OnConsoleMessage(level ConsoleLevel, message, source string, line int)
}

// LoadHandler receives document lifecycle events.
type LoadHandler interface {
	OnPageLoad(url string, loading bool, historySize, historyPosition int)
	OnLoadError(code int, url string)
	OnRenderProcessTerminated(status TerminationStatus)
}

// RequestHandler answers resource and navigation questions. Both calls block
// the engine thread until the host has decided.
type RequestHandler interface {
	OnInterceptRequest(url string) LoadResponse
	// OnOverrideURLLoading returns true to cancel the navigation.
	OnOverrideURLLoading(req NavigationRequest) bool
}

// DialogHandler resolves JavaScript dialogs. A false return lets the engine
// show its own dialog.
type DialogHandler interface {
	OnJSDialog(dialog *DialogRequest) bool
}

// LifeSpanHandler decides on new windows. True suppresses the popup.
type LifeSpanHandler interface {
	OnBeforePopup(req PopupRequest) bool
}

// Client is the set of handlers the native entry points dispatch into.
type Client struct {
	Display  DisplayHandler
	Load     LoadHandler
	Request  RequestHandler
	Dialog   DialogHandler
	LifeSpan LifeSpanHandler
}

// newClient builds the handlers a widget answers engine events with.
func newClient(w *Widget) *Client {
	return &Client{
		Display:  displayHandler{w},
		Load:     loadHandler{w},
		Request:  requestHandler{w},
		Dialog:   dialogHandler{w},
		LifeSpan: lifeSpanHandler{w},
	}
}

type displayHandler struct{ w *Widget }

func (h displayHandler) OnTitleChange(title string) {
	w := h.w
	w.titles.Post("title", func() {
		if win := w.bridge.target(); win != nil {
			win.setTitle(title)
		}
	})
}

func (h displayHandler) OnAddressChange(url string) {
	w := h.w
	w.titles.Post("address", func() {
		if win := w.bridge.target(); win != nil {
			win.setAddress(url)
		}
	})
}

func (h displayHandler) OnConsoleMessage(level ConsoleLevel, message, source string, line int) {
	h.w.log.Debug().
		Int("level", int(level)).
		Str("source", source).
		Int("line", line).
		Msg(message)
	CallAsync(h.w.bridge, func(win *BrowserWindow) {
		if win.OnConsoleMessage != nil {
			win.OnConsoleMessage(level, message, source, line)
		}
	})
}

type loadHandler struct{ w *Widget }

func (h loadHandler) OnPageLoad(url string, loading bool, historySize, historyPosition int) {
	w := h.w
	w.setLoadState(loading, historySize, historyPosition)
	CallAsync(w.bridge, func(win *BrowserWindow) {
		win.notifyLoadingState(url, loading)
	})
	if !loading {
		w.rt.Main.Post(w.injectBridgeScript)
	}
}

func (h loadHandler) OnLoadError(code int, url string) {
	h.w.log.Debug().Int("code", code).Str("url", url).Msg("load error")
	CallAsync(h.w.bridge, func(win *BrowserWindow) {
		win.notifyError(url, code)
	})
}

// OnRenderProcessTerminated leaves the last frame on screen. A Reload starts
// a new renderer.
func (h loadHandler) OnRenderProcessTerminated(status TerminationStatus) {
	w := h.w
	w.log.Warn().Stringer("status", status).Msg("render process terminated")
	w.mu.Lock()
	if w.state == StateLoading {
		w.state = StateIdle
	}
	w.mu.Unlock()
	CallAsync(w.bridge, func(win *BrowserWindow) {
		win.notifyTerminated(status)
	})
}

type requestHandler struct{ w *Widget }

type loadOverride struct {
	body string
	ok   bool
}

func (h requestHandler) OnInterceptRequest(url string) LoadResponse {
	w := h.w
	msg, tagged, err := ParseMessageURL(url, w.opts.MessageTag)
	if tagged {
		if err != nil {
			w.log.Error().Err(err).Str("url", url).Msg("invalid message from browser view")
		} else {
			CallAsync(w.bridge, func(win *BrowserWindow) {
				if win.OnJSMessage != nil {
					win.OnJSMessage(msg)
				}
			})
		}
		return LoadResponse{Override: true}
	}

	r := CallSync(w.bridge, loadOverride{}, func(win *BrowserWindow) loadOverride {
		if win.OnLoadURL == nil {
			return loadOverride{}
		}
		// Only the URL is forwarded; the method is not reported by the engine.
		body, ok := win.OnLoadURL("", url)
		return loadOverride{body: body, ok: ok}
	})
	if !r.ok {
		return LoadResponse{}
	}
	return LoadResponse{Body: []byte(r.body), Override: true}
}

func (h requestHandler) OnOverrideURLLoading(req NavigationRequest) bool {
	return CallSync(h.w.bridge, false, func(win *BrowserWindow) bool {
		if win.OnBeforeBrowse == nil {
			return false
		}
		return win.OnBeforeBrowse(req.URL, req)
	})
}

type dialogHandler struct{ w *Widget }

func (h dialogHandler) OnJSDialog(dialog *DialogRequest) bool {
	if dialog == nil {
		return false
	}
	return CallSync(h.w.bridge, false, func(win *BrowserWindow) bool {
		if win.OnShowDialog == nil {
			return false
		}
		return dialog.resolve(win.OnShowDialog(dialog))
	})
}

type lifeSpanHandler struct{ w *Widget }

func (h lifeSpanHandler) OnBeforePopup(req PopupRequest) bool {
	return CallSync(h.w.bridge, true, func(win *BrowserWindow) bool {
		if win.OnBeforePopup == nil {
			return true
		}
		return win.OnBeforePopup(req)
	})
}
