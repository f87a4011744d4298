// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"sync"
	"sync/atomic"
	"time"
)

// BrowserWindow is the host-side container a widget delivers events to. The
// host owns it; widgets only hold a weak reference, so once the host drops
// it (or calls Release) event delivery silently stops.
//
// Delegates are invoked on the host main thread. Set them before creating
// the widget.
type BrowserWindow struct {
	// OnBeforeBrowse returns true to block the navigation.
	OnBeforeBrowse func(url string, req NavigationRequest) bool

	// OnShowDialog decides how a JavaScript dialog is resolved.
	OnShowDialog func(dialog *DialogRequest) DialogResponse

	// OnLoadURL may override an intercepted request with a response body.
	OnLoadURL func(method, url string) (response string, ok bool)

	// OnJSMessage receives messages sent by the page.
	OnJSMessage func(msg Message)

	// OnBeforePopup returns true to suppress the popup.
	OnBeforePopup func(req PopupRequest) bool

	OnTitleChanged            func(title string)
	OnAddressChanged          func(url string)
	OnLoadingStateChanged     func(url string, loading bool)
	OnLoadError               func(url string, code int)
	OnConsoleMessage          func(level ConsoleLevel, message, source string, line int)
	OnRenderProcessTerminated func(status TerminationStatus)

	mu        sync.Mutex
	title     string
	url       string
	loading   bool
	errorCode int
	viewportW int
	viewportH int
	visible   bool
	virtual   bool
	tickedAt  time.Time
	released  atomic.Bool
}

// NewBrowserWindow returns a visible window rendering into a texture.
func NewBrowserWindow(width, height int) *BrowserWindow {
	return &BrowserWindow{
		viewportW: width,
		viewportH: height,
		visible:   true,
		virtual:   true,
	}
}

// Release marks the window gone. Bridge work arriving afterwards yields its
// conservative default.
func (w *BrowserWindow) Release() {
	w.released.Store(true)
}

// Released reports whether Release was called.
func (w *BrowserWindow) Released() bool {
	return w.released.Load()
}

// SetViewportSize sets the size the browser renders at.
func (w *BrowserWindow) SetViewportSize(width, height int) {
	w.mu.Lock()
	w.viewportW, w.viewportH = width, height
	w.mu.Unlock()
}

// ViewportSize returns the size the browser renders at.
func (w *BrowserWindow) ViewportSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewportW, w.viewportH
}

// SetVisible toggles painting.
func (w *BrowserWindow) SetVisible(visible bool) {
	w.mu.Lock()
	w.visible = visible
	w.mu.Unlock()
}

// IsVisible reports whether the window paints.
func (w *BrowserWindow) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// SetVirtual selects texture rendering (true) or a native overlay (false).
func (w *BrowserWindow) SetVirtual(virtual bool) {
	w.mu.Lock()
	w.virtual = virtual
	w.mu.Unlock()
}

// IsVirtual reports whether the window is rendered into a texture.
func (w *BrowserWindow) IsVirtual() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.virtual
}

// Title returns the last title reported by the page.
func (w *BrowserWindow) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// URL returns the URL of the last load event.
func (w *BrowserWindow) URL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.url
}

// IsLoading reports the loading state of the last load event.
func (w *BrowserWindow) IsLoading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// LastError returns the last load error code, 0 if none.
func (w *BrowserWindow) LastError() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errorCode
}

// LastTick returns the time of the last widget tick.
func (w *BrowserWindow) LastTick() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tickedAt
}

func (w *BrowserWindow) setTickLastFrame(now time.Time) {
	w.mu.Lock()
	w.tickedAt = now
	w.mu.Unlock()
}

func (w *BrowserWindow) setTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
	if w.OnTitleChanged != nil {
		w.OnTitleChanged(title)
	}
}

func (w *BrowserWindow) setAddress(url string) {
	w.mu.Lock()
	w.url = url
	w.mu.Unlock()
	if w.OnAddressChanged != nil {
		w.OnAddressChanged(url)
	}
}

func (w *BrowserWindow) notifyTerminated(status TerminationStatus) {
	w.mu.Lock()
	w.loading = false
	w.mu.Unlock()
	if w.OnRenderProcessTerminated != nil {
		w.OnRenderProcessTerminated(status)
	}
}

func (w *BrowserWindow) notifyLoadingState(url string, loading bool) {
	w.mu.Lock()
	w.url = url
	w.loading = loading
	if loading {
		w.errorCode = 0
	}
	w.mu.Unlock()
	if w.OnLoadingStateChanged != nil {
		w.OnLoadingStateChanged(url, loading)
	}
}

func (w *BrowserWindow) notifyError(url string, code int) {
	w.mu.Lock()
	w.errorCode = code
	w.mu.Unlock()
	if w.OnLoadError != nil {
		w.OnLoadError(url, code)
	}
}
