// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"github.com/rs/zerolog"

	"github.com/YindSoft/chromium-ebitengine-bridge/internal/mainloop"
)

// State is the lifecycle state of a widget.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Geometry is the widget's allotted area in layout units, plus the values
// needed to convert it to surface pixels.
type Geometry struct {
	X, Y          float64
	Width, Height float64

	// SurfaceHeight is the height of the render surface in pixels and
	// ScreenHeight the height of the screen in layout units. When either is
	// zero the scale is 1.
	SurfaceHeight float64
	ScreenHeight  float64
}

// Scale converts layout units to surface pixels. Landscape and portrait use
// the same vertical ratio.
func (g Geometry) Scale() float64 {
	if g.SurfaceHeight <= 0 || g.ScreenHeight <= 0 {
		return 1
	}
	return g.SurfaceHeight / g.ScreenHeight
}

// PixelRect rounds the scaled geometry to integers. The size is derived from
// the rounded far edge so position and size rounding errors do not add up.
func (g Geometry) PixelRect() Rect {
	s := g.Scale()
	x, y := g.X*s, g.Y*s
	w, h := g.Width*s, g.Height*s
	ix, iy := roundToInt(x), roundToInt(y)
	return Rect{
		X:      ix,
		Y:      iy,
		Width:  roundToInt(x+w) - ix,
		Height: roundToInt(y+h) - iy,
	}
}

func roundToInt(f float64) int {
	return int(math.Floor(f + 0.5))
}

// Widget owns one engine instance together with its frame pipeline and event
// bridge. Create it with NewWidget and release it with Close.
type Widget struct {
	handle   Handle
	rt       *Runtime
	opts     Options
	window   weak.Pointer[BrowserWindow]
	engine   *engineRef
	pipeline *VideoFramePipeline
	bridge   *EventBridge
	titles   *mainloop.Coalescer
	client   *Client
	log      zerolog.Logger

	mu              sync.Mutex
	state           State
	historySize     int
	historyPosition int

	// main thread only
	surface3D bool
	visible   bool
	lastRect  Rect

	closed atomic.Bool
}

// NewWidget creates the engine through factory, registers the widget for
// native callbacks and loads the configured initial URL. window may be nil, in
// which case host events are dropped.
func NewWidget(rt *Runtime, window *BrowserWindow, factory EngineFactory) (*Widget, error) {
	if rt == nil {
		return nil, errors.New("webbridge: nil runtime")
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: nil factory", ErrNoEngine)
	}
	opts := rt.Options
	handle := NewHandle()

	w := &Widget{
		handle:  handle,
		rt:      rt,
		opts:    opts,
		visible: true,
		log:     rt.Logger.With().Str("component", "widget").Uint64("handle", uint64(handle)).Logger(),
	}
	width, height := 0, 0
	if window != nil {
		w.window = weak.Make(window)
		width, height = window.ViewportSize()
		w.surface3D = window.IsVirtual()
	}
	w.bridge = NewEventBridge(rt.Main, window, opts.SyncCallTimeout, w.log)
	w.titles = mainloop.NewCoalescer(rt.Main.Post)
	w.client = newClient(w)

	mode := SelectSurfaceMode(ParseSurfaceMode(opts.SurfaceMode), rt.Device)

	// Registered before the engine exists so callbacks fired during creation resolve.
	widgets.Register(handle, w)

	eng, err := factory(EngineConfig{
		Handle:          handle,
		Width:           width,
		Height:          height,
		SurfaceMode:     mode,
		MessageTag:      opts.MessageTag,
		UseTransparency: opts.UseTransparency,
		Debug:           opts.Debug,
		BaseDir:         opts.BaseDir,
	})
	if err == nil && eng == nil {
		err = ErrNoEngine
	}
	if err != nil {
		widgets.Unregister(handle)
		w.closed.Store(true)
		w.titles.Destroy()
		w.bridge.Detach()
		return nil, fmt.Errorf("create engine: %w", err)
	}
	w.engine = newEngineRef(eng)
	w.pipeline = NewVideoFramePipeline(PipelineConfig{
		Mode:       mode,
		Render:     rt.Render,
		Device:     rt.Device,
		Textures:   rt.Textures,
		QueueDepth: opts.FrameQueueDepth,
		PoolSize:   opts.SamplePoolSize,
		Log:        w.log,
	}, w.engine)

	eng.Set3DSurface(w.surface3D)
	eng.LoadURL(opts.InitialURL)

	w.log.Debug().Str("mode", string(mode)).Str("url", opts.InitialURL).Msg("widget created")
	return w, nil
}

// Handle returns the key native callbacks use to reach this widget.
func (w *Widget) Handle() Handle { return w.handle }

// Client returns the handlers the native entry points dispatch into.
func (w *Widget) Client() *Client { return w.client }

// SurfaceMode returns the resolved frame transport.
func (w *Widget) SurfaceMode() SurfaceMode { return w.pipeline.Mode() }

// Pipeline exposes the frame pipeline, mainly for statistics.
func (w *Widget) Pipeline() *VideoFramePipeline { return w.pipeline }

// Destroyed reports whether Close was called.
func (w *Widget) Destroyed() bool { return w.closed.Load() }

// State returns the current lifecycle state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// IsLoading reports whether a page load is in progress.
func (w *Widget) IsLoading() bool { return w.State() == StateLoading }

// HistorySize returns the history length last reported by the engine.
func (w *Widget) HistorySize() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.historySize
}

// HistoryPosition returns the history index last reported by the engine.
func (w *Widget) HistoryPosition() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.historyPosition
}

// CanGoBack is true from history position 2 on; positions 0 and 1 have no
// back entry.
func (w *Widget) CanGoBack() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.historyPosition > 1
}

// CanGoForward reports whether entries exist after the current position.
func (w *Widget) CanGoForward() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.historyPosition < w.historySize-1
}

func (w *Widget) setLoadState(loading bool, historySize, historyPosition int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return
	}
	w.historySize = historySize
	w.historyPosition = historyPosition
	if loading {
		w.state = StateLoading
	} else {
		w.state = StateIdle
	}
}

func (w *Widget) do(fn func(e Engine)) error {
	if w.closed.Load() {
		return ErrClosed
	}
	if !w.engine.with(fn) {
		return ErrClosed
	}
	return nil
}

// LoadURL navigates to url.
func (w *Widget) LoadURL(url string) error {
	return w.do(func(e Engine) { e.LoadURL(url) })
}

// LoadHTML displays contents as if it had been loaded from baseURL.
func (w *Widget) LoadHTML(contents, baseURL string) error {
	return w.do(func(e Engine) { e.LoadString(contents, baseURL) })
}

// StopLoad cancels the current load.
func (w *Widget) StopLoad() error {
	return w.do(Engine.StopLoad)
}

// Reload reloads the current page.
func (w *Widget) Reload() error {
	return w.do(Engine.Reload)
}

// GoBack navigates one history entry back.
func (w *Widget) GoBack() error {
	return w.do(Engine.GoBack)
}

// GoForward navigates one history entry forward.
func (w *Widget) GoForward() error {
	return w.do(Engine.GoForward)
}

// SetVisible shows or hides the browser.
func (w *Widget) SetVisible(visible bool) error {
	err := w.do(func(e Engine) { e.SetVisibility(visible) })
	if err == nil {
		w.visible = visible
	}
	return err
}

// ExecuteScript runs script in the page. Fire-and-forget.
func (w *Widget) ExecuteScript(script string) error {
	return w.do(func(e Engine) { e.ExecuteJavaScript(script) })
}

// Send serializes data to JSON and hands it to window.webbridge.receive.
func (w *Widget) Send(data any) error {
	script, err := receiveScript(data)
	if err != nil {
		return err
	}
	return w.ExecuteScript(script)
}

func (w *Widget) injectBridgeScript() {
	_ = w.do(func(e Engine) { e.ExecuteJavaScript(BridgeScript(w.opts.MessageTag)) })
}

// Input returns the engine's input sink when it accepts forwarded input.
func (w *Widget) Input() (InputReceiver, bool) {
	var (
		in InputReceiver
		ok bool
	)
	if w.do(func(e Engine) { in, ok = e.(InputReceiver) }) != nil {
		return nil, false
	}
	return in, ok
}

// Bounds returns the integer rectangle computed by the last Tick.
func (w *Widget) Bounds() Rect { return w.lastRect }

// Tick positions the view, follows the window's surface mode and drives the
// frame pipeline. Call it on the main thread after Runtime.Update.
func (w *Widget) Tick(geom Geometry, now time.Time) {
	if w.closed.Load() {
		return
	}
	win := w.window.Value()
	if win != nil && win.Released() {
		win = nil
	}
	if win != nil {
		win.setTickLastFrame(now)
		if virt := win.IsVirtual(); virt != w.surface3D {
			w.surface3D = virt
			w.engine.with(func(e Engine) { e.Set3DSurface(virt) })
		}
	}

	resized := false
	rect := geom.PixelRect()
	alive := w.engine.with(func(e Engine) {
		resized = e.DidResolutionChange()
		e.Update(rect.X, rect.Y, rect.Width, rect.Height)
	})
	if !alive {
		return
	}
	if resized {
		w.pipeline.Invalidate()
	}
	w.lastRect = rect

	if !w.surface3D {
		return
	}
	vw, vh := rect.Width, rect.Height
	if win != nil {
		vw, vh = win.ViewportSize()
	}
	w.pipeline.Tick(vw, vh)
}

// Paint submits the browser texture to target when there is one to show.
func (w *Widget) Paint(target DrawTarget) {
	if w.closed.Load() || target == nil || !w.visible || !w.surface3D {
		return
	}
	if win := w.window.Value(); win != nil && !win.Released() && !win.IsVisible() {
		return
	}
	if !w.pipeline.HasFrame() {
		return
	}
	target.DrawTexture(w.pipeline.TextureRef(), w.lastRect)
}

// Close tears the widget down: no callback reaches it afterwards, the engine
// is released and GPU resources are freed on the render thread. Safe to call
// more than once.
func (w *Widget) Close() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	w.mu.Lock()
	w.state = StateClosed
	w.mu.Unlock()

	widgets.Unregister(w.handle)
	w.engine.release()
	w.bridge.Detach()
	w.titles.Destroy()
	w.pipeline.Release()
	w.log.Debug().Msg("widget closed")
}
