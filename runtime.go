// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Runtime holds the host-side queues shared by every widget: the main-thread
// queue drained from the host update loop and the render-thread queue.
type Runtime struct {
	Main     *MainQueue
	Render   *RenderQueue
	Device   TextureDevice
	Textures *ExternalTextureRegistry
	Logger   zerolog.Logger
	Options  Options

	closeOnce sync.Once
}

// NewRuntime starts the render queue. device creates the browser textures.
func NewRuntime(device TextureDevice, opts Options, logger zerolog.Logger) (*Runtime, error) {
	opts.normalize()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("runtime options: %w", err)
	}
	SetNativeLogger(logger)
	return &Runtime{
		Main:     NewMainQueue(logger),
		Render:   NewRenderQueue(logger),
		Device:   device,
		Textures: NewExternalTextureRegistry(),
		Logger:   logger,
		Options:  opts,
	}, nil
}

// Update runs the main-thread work posted since the previous call. Call it
// once per host tick before ticking widgets.
func (rt *Runtime) Update() int {
	return rt.Main.Drain()
}

// Close releases any engine thread still waiting on the main thread and
// stops the render queue after its pending tasks ran. Close widgets first.
func (rt *Runtime) Close() {
	rt.closeOnce.Do(func() {
		rt.Main.Close()
		rt.Render.Close()
	})
}
