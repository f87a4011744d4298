// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ebitenhost

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	webbridge "github.com/YindSoft/chromium-ebitengine-bridge"
)

// Focus: only the focused widget receives keyboard. Mouse and scroll still
// require the cursor in bounds. Clicking inside a widget gives it focus.
var (
	focused   webbridge.Handle
	focusedMu sync.Mutex
)

func focusedHandle() webbridge.Handle {
	focusedMu.Lock()
	defer focusedMu.Unlock()
	return focused
}

func setFocusedHandle(h webbridge.Handle) {
	focusedMu.Lock()
	defer focusedMu.Unlock()
	focused = h
}

// Focus gives w keyboard focus.
func Focus(w *webbridge.Widget) {
	setFocusedHandle(w.Handle())
}

// Blur drops keyboard focus from w if it has it.
func Blur(w *webbridge.Widget) {
	focusedMu.Lock()
	defer focusedMu.Unlock()
	if focused == w.Handle() {
		focused = 0
	}
}

// Input forwards ebiten input to one widget. Call Forward once per Update
// after ticking the widget.
type Input struct {
	mouseX, mouseY int
	leftDown       bool
	rightDown      bool
}

func inBounds(r webbridge.Rect, mx, my int) bool {
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	return mx >= r.X && mx < r.X+r.Width &&
		my >= r.Y && my < r.Y+r.Height
}

// Forward sends this tick's input to w when its engine accepts input.
// Coordinates are made relative to the widget's last bounds.
func (in *Input) Forward(w *webbridge.Widget) {
	sink, ok := w.Input()
	if !ok {
		return
	}
	bounds := w.Bounds()
	mx, my := ebiten.CursorPosition()
	inside := inBounds(bounds, mx, my)

	if inside && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		setFocusedHandle(w.Handle())
	}

	if inside {
		lx := int32(mx - bounds.X)
		ly := int32(my - bounds.Y)

		if int(lx) != in.mouseX || int(ly) != in.mouseY {
			sink.FireMouse(webbridge.MouseMoved, lx, ly, webbridge.MouseButtonNone)
			in.mouseX, in.mouseY = int(lx), int(ly)
		}

		in.leftDown = forwardButton(sink, ebiten.MouseButtonLeft, webbridge.MouseButtonLeft, in.leftDown, lx, ly)
		in.rightDown = forwardButton(sink, ebiten.MouseButtonRight, webbridge.MouseButtonRight, in.rightDown, lx, ly)

		if _, scrollY := ebiten.Wheel(); scrollY != 0 {
			sink.FireScroll(0, int32(scrollY*100))
		}
	}

	if focusedHandle() == w.Handle() {
		forwardKeyboard(sink)
	}
}

func forwardButton(sink webbridge.InputReceiver, b ebiten.MouseButton, button int32, down bool, x, y int32) bool {
	pressed := ebiten.IsMouseButtonPressed(b)
	switch {
	case pressed && !down:
		sink.FireMouse(webbridge.MouseDown, x, y, button)
	case !pressed && down:
		sink.FireMouse(webbridge.MouseUp, x, y, button)
	}
	return pressed
}

func forwardKeyboard(sink webbridge.InputReceiver) {
	// RawKeyDown triggers accelerators like Ctrl+C/V/X/A
	mods := currentMods()
	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		if vk := KeyToVK(key); vk != 0 {
			sink.FireKey(webbridge.KeyRawDown, vk, mods, "")
		}
	}
	// Character input from the OS text input system handles layout and IME.
	for _, r := range ebiten.AppendInputChars(nil) {
		sink.FireKey(webbridge.KeyChar, 0, 0, string(r))
	}
	for _, key := range inpututil.AppendJustReleasedKeys(nil) {
		if vk := KeyToVK(key); vk != 0 {
			sink.FireKey(webbridge.KeyUp, vk, mods, "")
		}
	}
}

func currentMods() uint32 {
	var mods uint32
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= webbridge.KeyModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= webbridge.KeyModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= webbridge.KeyModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= webbridge.KeyModMeta
	}
	return mods
}
