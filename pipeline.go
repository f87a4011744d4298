// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"errors"
	"sync/atomic"
	"weak"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PipelineStats counts pipeline activity since creation.
type PipelineStats struct {
	Ticks          uint64
	Fetched        uint64
	Presented      uint64
	Registered     uint64
	CreateFailures uint64
	SizeMismatches uint64
	Queue          FrameQueueStats
}

// PipelineConfig wires a VideoFramePipeline to the host.
type PipelineConfig struct {
	Mode       SurfaceMode
	Render     *RenderQueue
	Device     TextureDevice
	Textures   *ExternalTextureRegistry
	QueueDepth int
	PoolSize   int
	Log        zerolog.Logger
}

// renderResources is touched only on the render thread.
type renderResources struct {
	display      Texture
	external     Texture
	valid        bool
	presentedSeq uint64
	closed       bool
}

func (r *renderResources) release() {
	if r.display != nil {
		r.display.Release()
		r.display = nil
	}
	if r.external != nil {
		r.external.Release()
		r.external = nil
	}
	r.valid = false
	r.closed = true
}

type pipelineCounters struct {
	ticks          atomic.Uint64
	fetched        atomic.Uint64
	presented      atomic.Uint64
	registered     atomic.Uint64
	createFailures atomic.Uint64
	sizeMismatches atomic.Uint64
}

// pipelineCore is what render tasks operate on. They reference it weakly so
// a task outliving its widget finds nothing and returns.
type pipelineCore struct {
	guid     uuid.UUID
	mode     SurfaceMode
	device   TextureDevice
	textures *ExternalTextureRegistry
	queue    *FrameQueue
	pool     *FrameSamplePool
	res      *renderResources
	hasFrame atomic.Bool
	stats    pipelineCounters
	log      zerolog.Logger
}

// VideoFramePipeline moves engine frames to a host texture registered under
// a stable per-browser identifier. Tick runs on the main thread and only
// enqueues render work; it never waits for it.
type VideoFramePipeline struct {
	core   *pipelineCore
	render *RenderQueue
	engine weak.Pointer[engineRef]

	lastW, lastH int
	released     atomic.Bool
}

// NewVideoFramePipeline creates a pipeline for engine. cfg.Mode must already
// be resolved with SelectSurfaceMode.
func NewVideoFramePipeline(cfg PipelineConfig, engine *engineRef) *VideoFramePipeline {
	if cfg.Mode != SurfaceModeZeroCopy {
		cfg.Mode = SurfaceModeCopy
	}
	if cfg.Textures == nil {
		cfg.Textures = NewExternalTextureRegistry()
	}
	pool := NewFrameSamplePool(cfg.PoolSize)
	core := &pipelineCore{
		guid:     uuid.New(),
		mode:     cfg.Mode,
		device:   cfg.Device,
		textures: cfg.Textures,
		queue:    NewFrameQueue(cfg.QueueDepth, pool.Release),
		pool:     pool,
		res:      &renderResources{},
	}
	core.log = cfg.Log.With().
		Str("component", "frame-pipeline").
		Str("guid", core.guid.String()).
		Str("mode", string(cfg.Mode)).
		Logger()

	p := &VideoFramePipeline{core: core, render: cfg.Render}
	if engine != nil {
		p.engine = weak.Make(engine)
	}
	return p
}

// Mode returns the resolved surface mode.
func (p *VideoFramePipeline) Mode() SurfaceMode { return p.core.mode }

// TextureRef returns the identifier the compositor resolves in the
// ExternalTextureRegistry.
func (p *VideoFramePipeline) TextureRef() TextureRef {
	return TextureRef{ID: p.core.guid}
}

// HasFrame reports whether a texture is registered and can be drawn.
func (p *VideoFramePipeline) HasFrame() bool {
	return !p.released.Load() && p.core.hasFrame.Load()
}

// Stats returns a snapshot of the counters.
func (p *VideoFramePipeline) Stats() PipelineStats {
	c := p.core
	return PipelineStats{
		Ticks:          c.stats.ticks.Load(),
		Fetched:        c.stats.fetched.Load(),
		Presented:      c.stats.presented.Load(),
		Registered:     c.stats.registered.Load(),
		CreateFailures: c.stats.createFailures.Load(),
		SizeMismatches: c.stats.sizeMismatches.Load(),
		Queue:          c.queue.Stats(),
	}
}

// Tick drives one frame at the given viewport size. Main thread only.
func (p *VideoFramePipeline) Tick(width, height int) {
	if p.released.Load() || p.render == nil {
		return
	}
	p.core.stats.ticks.Add(1)

	if width != p.lastW || height != p.lastH {
		if p.lastW != 0 || p.lastH != 0 {
			p.core.log.Debug().
				Int("width", width).
				Int("height", height).
				Msg("viewport size changed")
		}
		p.lastW, p.lastH = width, height
		p.invalidate(width, height)
	}
	if width <= 0 || height <= 0 {
		return
	}

	wcore := weak.Make(p.core)
	wengine := p.engine
	switch p.core.mode {
	case SurfaceModeZeroCopy:
		p.render.Enqueue("update-external", func() {
			updateExternal(wcore, wengine, width, height)
		})
	default:
		p.render.Enqueue("present", func() {
			present(wcore)
		})
		p.render.Enqueue("fetch", func() {
			fetch(wcore, wengine, width, height)
		})
	}
}

// Invalidate forces the registration to be redone on the next render step.
func (p *VideoFramePipeline) Invalidate() {
	if p.released.Load() {
		return
	}
	p.invalidate(p.lastW, p.lastH)
}

func (p *VideoFramePipeline) invalidate(width, height int) {
	if p.render == nil {
		return
	}
	wcore := weak.Make(p.core)
	p.render.Enqueue("invalidate", func() {
		c := wcore.Value()
		if c == nil || c.res.closed {
			return
		}
		c.res.valid = false
		if t := c.res.external; t != nil {
			if tw, th := t.Size(); tw != width || th != height {
				t.Release()
				c.res.external = nil
			}
		}
		if t := c.res.display; t != nil {
			if tw, th := t.Size(); tw != width || th != height {
				c.queue.RequestFlush()
			}
		}
	})
}

// Release flushes queued frames and schedules the GPU resources for release
// on the render thread. Safe to call more than once.
func (p *VideoFramePipeline) Release() {
	if !p.released.CompareAndSwap(false, true) {
		return
	}
	c := p.core
	c.hasFrame.Store(false)
	c.queue.RequestFlush()
	c.pool.Close()

	params := releaseParams{guid: c.guid, textures: c.textures, res: c.res}
	if p.render == nil || !p.render.Enqueue("release-textures", params.run) {
		// Render thread already stopped; nothing can be sampling the textures.
		params.run()
	}
}

// releaseParams takes ownership of the render-side resources.
type releaseParams struct {
	guid     uuid.UUID
	textures *ExternalTextureRegistry
	res      *renderResources
}

func (r releaseParams) run() {
	r.textures.Unregister(r.guid)
	r.res.release()
}

func present(wcore weak.Pointer[pipelineCore]) {
	c := wcore.Value()
	if c == nil || c.res.closed {
		return
	}
	s, ok := c.queue.Peek()
	if !ok || s.Pixels == nil {
		return
	}

	res := c.res
	if res.display != nil {
		if w, h := res.display.Size(); w != s.Width || h != s.Height {
			res.display.Release()
			res.display = nil
			res.valid = false
		}
	}
	if res.display == nil {
		tex, err := createTexture(c.device, false, browserTextureDescriptor("browser-frame", s.Width, s.Height))
		if err != nil {
			c.stats.createFailures.Add(1)
			c.log.Warn().Err(err).Int("width", s.Width).Int("height", s.Height).Msg("display texture creation failed")
			return
		}
		res.display = tex
		res.valid = false
		res.presentedSeq = 0
	}

	if s.Seq != res.presentedSeq {
		if err := res.display.Upload(s.Pixels); err != nil {
			c.log.Warn().Err(err).Uint64("seq", s.Seq).Msg("frame upload failed")
			return
		}
		res.presentedSeq = s.Seq
		c.stats.presented.Add(1)
	}
	c.register(res.display)
}

func fetch(wcore weak.Pointer[pipelineCore], wengine weak.Pointer[engineRef], width, height int) {
	c := wcore.Value()
	eng := wengine.Value()
	if c == nil || eng == nil || c.res.closed {
		return
	}

	var (
		frame Frame
		ok    bool
	)
	if !eng.with(func(e Engine) { frame, ok = e.LastFrameData() }) || !ok {
		return
	}

	s := c.pool.Acquire()
	if !s.Initialize(width, height) {
		c.pool.Release(s)
		return
	}
	if err := s.CopyFrom(frame.Pixels, frame.RowBytes, frame.Format); err != nil {
		c.pool.Release(s)
		if errors.Is(err, ErrSampleSize) {
			c.stats.sizeMismatches.Add(1)
		}
		c.log.Warn().Err(err).Msg("discarding frame, keeping previous one")
		return
	}
	c.stats.fetched.Add(1)
	c.queue.Enqueue(s)
}

func updateExternal(wcore weak.Pointer[pipelineCore], wengine weak.Pointer[engineRef], width, height int) {
	c := wcore.Value()
	eng := wengine.Value()
	if c == nil || eng == nil || c.res.closed {
		return
	}
	res := c.res

	eng.with(func(e Engine) {
		if res.external == nil {
			tex, err := createTexture(c.device, true, browserTextureDescriptor("browser-external", width, height))
			if err != nil {
				c.stats.createFailures.Add(1)
				c.log.Warn().Err(err).Int("width", width).Int("height", height).Msg("external texture creation failed")
				return
			}
			res.external = tex
			res.valid = false
			e.SetVideoTexture(tex.NativeID())
			c.log.Debug().Uint32("texture", tex.NativeID()).Int("width", width).Int("height", height).Msg("created external texture")
		}

		id := res.external.NativeID()
		updated, regionChanged := e.UpdateVideoFrame(id)
		if updated {
			c.stats.fetched.Add(1)
			if regionChanged {
				res.valid = false
			}
			s := c.pool.Acquire()
			s.SetExternal(id, width, height)
			c.queue.Enqueue(s)
		}
		c.register(res.external)
	})
}

// register (re)maps the identifier to tex when the mapping is stale.
func (c *pipelineCore) register(tex Texture) {
	if c.res.valid {
		return
	}
	c.textures.Register(c.guid, tex, BilinearClampSampler)
	c.res.valid = true
	c.hasFrame.Store(true)
	c.stats.registered.Add(1)
	c.log.Debug().Msg("registered browser texture")
}

func createTexture(device TextureDevice, external bool, desc TextureDescriptor) (Texture, error) {
	if device == nil {
		return nil, errNoDevice
	}
	var (
		tex Texture
		err error
	)
	if external {
		tex, err = device.CreateExternalTexture(desc)
	} else {
		tex, err = device.CreateTexture(desc)
	}
	if err == nil && tex == nil {
		err = errNoTexture
	}
	return tex, err
}

var (
	errNoDevice  = errors.New("no texture device")
	errNoTexture = errors.New("device returned no texture")
)
