// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ebitenhost

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	webbridge "github.com/YindSoft/chromium-ebitengine-bridge"
)

// Mount places a widget on screen.
type Mount struct {
	Widget *webbridge.Widget
	Rect   webbridge.Rect

	// Alpha scales the widget's opacity; zero means opaque.
	Alpha float32

	input Input
}

// Game is an ebiten.Game that drains the runtime's main queue each Update,
// then ticks mounted widgets and forwards input to them.
type Game struct {
	Runtime *webbridge.Runtime
	Width   int
	Height  int

	// OnUpdate runs after the widgets were ticked.
	OnUpdate func() error

	// Background draws before the widgets, Overlay after.
	Background func(screen *ebiten.Image)
	Overlay    func(screen *ebiten.Image)

	mounts []*Mount
	now    func() time.Time
}

// NewGame returns a game with a logical screen of width x height.
func NewGame(rt *webbridge.Runtime, width, height int) *Game {
	return &Game{Runtime: rt, Width: width, Height: height, now: time.Now}
}

// Mount adds w at rect. The first mounted widget gets keyboard focus.
func (g *Game) Mount(w *webbridge.Widget, rect webbridge.Rect) *Mount {
	m := &Mount{Widget: w, Rect: rect}
	if len(g.mounts) == 0 {
		Focus(w)
	}
	g.mounts = append(g.mounts, m)
	return m
}

// Unmount removes w and closes it.
func (g *Game) Unmount(w *webbridge.Widget) {
	for i, m := range g.mounts {
		if m.Widget == w {
			g.mounts = append(g.mounts[:i], g.mounts[i+1:]...)
			break
		}
	}
	Blur(w)
	w.Close()
}

// Close closes every mounted widget, then the runtime.
func (g *Game) Close() {
	for _, m := range g.mounts {
		m.Widget.Close()
	}
	g.mounts = nil
	g.Runtime.Close()
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	g.Runtime.Update()

	now := g.now()
	for _, m := range g.mounts {
		m.Widget.Tick(g.geometry(m.Rect), now)
		m.input.Forward(m.Widget)
	}
	if g.OnUpdate != nil {
		return g.OnUpdate()
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.Background != nil {
		g.Background(screen)
	}
	target := NewTarget(screen, g.Runtime.Textures)
	for _, m := range g.mounts {
		target.Alpha = m.Alpha
		m.Widget.Paint(target)
	}
	if g.Overlay != nil {
		g.Overlay(screen)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.Width, g.Height
}

// geometry converts a logical rect into widget geometry. The logical screen
// is the surface, so the scale is 1 and the widget is drawn where it sits.
func (g *Game) geometry(r webbridge.Rect) webbridge.Geometry {
	return webbridge.Geometry{
		X:             float64(r.X),
		Y:             float64(r.Y),
		Width:         float64(r.Width),
		Height:        float64(r.Height),
		SurfaceHeight: float64(g.Height),
		ScreenHeight:  float64(g.Height),
	}
}
