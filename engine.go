// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"strings"
	"sync"

	"github.com/gogpu/gputypes"
)

// SurfaceMode selects how frames travel from the engine to the host.
type SurfaceMode string

const (
	// SurfaceModeAuto picks zero-copy when the device supports external textures.
	SurfaceModeAuto SurfaceMode = "auto"
	// SurfaceModeCopy copies each frame through a CPU buffer.
	SurfaceModeCopy SurfaceMode = "copy"
	// SurfaceModeZeroCopy lets the engine write into a host texture directly.
	SurfaceModeZeroCopy SurfaceMode = "zero-copy"
)

// ParseSurfaceMode maps a configuration string to a mode. Unknown values map
// to SurfaceModeAuto.
func ParseSurfaceMode(s string) SurfaceMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SurfaceModeCopy):
		return SurfaceModeCopy
	case string(SurfaceModeZeroCopy), "zerocopy", "external":
		return SurfaceModeZeroCopy
	default:
		return SurfaceModeAuto
	}
}

// SelectSurfaceMode resolves requested against what device can do. The
// result is never SurfaceModeAuto.
func SelectSurfaceMode(requested SurfaceMode, device TextureDevice) SurfaceMode {
	external := device != nil && device.SupportsExternalTextures()
	switch requested {
	case SurfaceModeCopy:
		return SurfaceModeCopy
	case SurfaceModeZeroCopy:
		if external {
			return SurfaceModeZeroCopy
		}
		return SurfaceModeCopy
	default:
		if external {
			return SurfaceModeZeroCopy
		}
		return SurfaceModeCopy
	}
}

// Frame is the engine's most recent rendered frame. Pixels is engine-owned:
// it is read-only and valid only until the next LastFrameData call.
type Frame struct {
	Pixels   []byte
	RowBytes int
	Format   gputypes.TextureFormat
}

// Engine is one embedded browser instance. Control methods are called from
// the host main thread; LastFrameData, SetVideoTexture and UpdateVideoFrame
// only from the render thread.
type Engine interface {
	LoadURL(url string)
	LoadString(contents, baseURL string)
	StopLoad()
	Reload()
	GoBack()
	GoForward()
	ExecuteJavaScript(script string)
	SetVisibility(visible bool)

	// Set3DSurface switches between texture rendering and a native overlay.
	Set3DSurface(enabled bool)

	// Update positions the view in integer surface pixels.
	Update(x, y, width, height int)

	// DidResolutionChange reports, once, that the frame size changed.
	DidResolutionChange() bool

	LastFrameData() (Frame, bool)
	SetVideoTexture(id uint32)
	UpdateVideoFrame(id uint32) (updated, regionChanged bool)

	Release()
}

// Input events understood by engines implementing InputReceiver.
const (
	MouseMoved = 0
	MouseDown  = 1
	MouseUp    = 2

	MouseButtonNone   = 0
	MouseButtonLeft   = 1
	MouseButtonMiddle = 2
	MouseButtonRight  = 3

	KeyRawDown = 0
	KeyDown    = 1
	KeyUp      = 2
	KeyChar    = 3

	KeyModAlt   = 1
	KeyModCtrl  = 2
	KeyModMeta  = 4
	KeyModShift = 8
)

// InputReceiver is implemented by engines that accept forwarded host input.
type InputReceiver interface {
	FireMouse(eventType, x, y, button int32)
	FireScroll(dx, dy int32)
	FireKey(keyType, vk int32, mods uint32, text string)
}

// EngineConfig is passed to an EngineFactory.
type EngineConfig struct {
	Handle          Handle
	Width           int
	Height          int
	SurfaceMode     SurfaceMode
	MessageTag      string
	UseTransparency bool
	Debug           bool
	BaseDir         string
}

// EngineFactory creates the engine for a widget. The engine reports events
// back through the package entry points keyed by cfg.Handle.
type EngineFactory func(cfg EngineConfig) (Engine, error)

// engineRef guards an engine against use after release. Render tasks hold it
// weakly; the widget holds it strongly until Close.
type engineRef struct {
	mu       sync.RWMutex
	engine   Engine
	released bool
}

func newEngineRef(e Engine) *engineRef {
	return &engineRef{engine: e}
}

// with runs fn while the engine is alive. It reports false after release.
func (r *engineRef) with(fn func(e Engine)) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.released || r.engine == nil {
		return false
	}
	fn(r.engine)
	return true
}

func (r *engineRef) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	if r.engine != nil {
		r.engine.Release()
		r.engine = nil
	}
}
