// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package nativebridge

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/gogpu/gputypes"

	webbridge "github.com/YindSoft/chromium-ebitengine-bridge"
)

// Engine is a browser instance inside the bridge library.
type Engine struct {
	id int32

	// frame is the render-thread copy of the engine's last frame.
	frame []byte

	releaseOnce sync.Once
}

var (
	_ webbridge.Engine        = (*Engine)(nil)
	_ webbridge.InputReceiver = (*Engine)(nil)
)

// NewEngine creates a browser; it has the webbridge.EngineFactory signature.
func NewEngine(cfg webbridge.EngineConfig) (webbridge.Engine, error) {
	if err := Load(cfg.BaseDir); err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}
	if err := ensureInit(cfg.BaseDir, cfg.Debug); err != nil {
		return nil, err
	}

	var flags uint32
	if cfg.UseTransparency {
		flags |= flagTransparent
	}
	if cfg.SurfaceMode == webbridge.SurfaceModeZeroCopy {
		flags |= flagZeroCopy
	}
	if cfg.Debug {
		flags |= flagDebug
	}

	id := wbCreateBrowser(uint64(cfg.Handle), int32(cfg.Width), int32(cfg.Height), flags, cfg.MessageTag)
	if id < 0 {
		return nil, fmt.Errorf("wb_create_browser failed with code %d", id)
	}
	retainLibrary()
	return &Engine{id: id}, nil
}

func (e *Engine) LoadURL(url string)                  { wbLoadURL(e.id, url) }
func (e *Engine) LoadString(contents, baseURL string) { wbLoadString(e.id, contents, baseURL) }
func (e *Engine) StopLoad()                           { wbStopLoad(e.id) }
func (e *Engine) Reload()                             { wbReload(e.id) }
func (e *Engine) GoBack()                             { wbGoBack(e.id) }
func (e *Engine) GoForward()                          { wbGoForward(e.id) }
func (e *Engine) ExecuteJavaScript(script string)     { wbExecuteJS(e.id, script) }
func (e *Engine) SetVisibility(visible bool)          { wbSetVisible(e.id, boolToInt(visible)) }
func (e *Engine) Set3DSurface(enabled bool)           { wbSet3D(e.id, boolToInt(enabled)) }

func (e *Engine) Update(x, y, width, height int) {
	wbUpdate(e.id, int32(x), int32(y), int32(width), int32(height))
}

func (e *Engine) DidResolutionChange() bool { return wbResolutionChanged(e.id) != 0 }

// LastFrameData copies the locked engine frame into an owned buffer, which
// stays valid until the next call.
func (e *Engine) LastFrameData() (webbridge.Frame, bool) {
	ptr := wbLockFrame(e.id)
	if ptr == 0 {
		return webbridge.Frame{}, false
	}
	defer wbUnlockFrame(e.id)

	h := wbFrameHeight(e.id)
	rowBytes := wbFrameRowBytes(e.id)
	if h == 0 || rowBytes == 0 {
		return webbridge.Frame{}, false
	}

	total := int(rowBytes) * int(h)
	if cap(e.frame) < total {
		e.frame = make([]byte, total)
	}
	e.frame = e.frame[:total]
	copy(e.frame, unsafe.Slice((*byte)(unsafe.Pointer(ptr)), total))

	return webbridge.Frame{
		Pixels:   e.frame,
		RowBytes: int(rowBytes),
		Format:   gputypes.TextureFormatBGRA8Unorm,
	}, true
}

func (e *Engine) SetVideoTexture(id uint32) { wbSetVideoTexture(e.id, id) }

func (e *Engine) UpdateVideoFrame(id uint32) (updated, regionChanged bool) {
	var changed int32
	rc := wbUpdateVideoFrame(e.id, id, uintptr(unsafe.Pointer(&changed)))
	return rc != 0, changed != 0
}

func (e *Engine) FireMouse(eventType, x, y, button int32) {
	wbFireMouse(e.id, eventType, x, y, button)
}

func (e *Engine) FireScroll(dx, dy int32) { wbFireScroll(e.id, dx, dy) }

func (e *Engine) FireKey(keyType, vk int32, mods uint32, text string) {
	wbFireKey(e.id, keyType, vk, mods, text)
}

// Release destroys the browser. Later calls do nothing.
func (e *Engine) Release() {
	e.releaseOnce.Do(func() {
		wbDestroyBrowser(e.id)
		releaseLibrary()
	})
}
