// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ebitenhost

import (
	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"

	webbridge "github.com/YindSoft/chromium-ebitengine-bridge"
)

// Target draws registered browser textures onto an ebiten image.
type Target struct {
	Screen   *ebiten.Image
	Textures *webbridge.ExternalTextureRegistry

	// Alpha scales the browser's opacity; zero means opaque.
	Alpha float32
}

// NewTarget returns a target drawing onto screen.
func NewTarget(screen *ebiten.Image, textures *webbridge.ExternalTextureRegistry) *Target {
	return &Target{Screen: screen, Textures: textures}
}

// DrawTexture draws the texture registered under ref, scaled into dst.
func (t *Target) DrawTexture(ref webbridge.TextureRef, dst webbridge.Rect) {
	if t.Screen == nil || t.Textures == nil || dst.Width <= 0 || dst.Height <= 0 {
		return
	}
	entry, ok := t.Textures.Lookup(ref.ID)
	if !ok {
		return
	}
	tex, ok := entry.Texture.(*Texture)
	if !ok {
		return
	}
	img := tex.Image()
	if img == nil {
		return
	}

	op := &ebiten.DrawImageOptions{Filter: filterFor(entry.Sampler)}
	if tex.width != dst.Width || tex.height != dst.Height {
		op.GeoM.Scale(float64(dst.Width)/float64(tex.width), float64(dst.Height)/float64(tex.height))
	}
	op.GeoM.Translate(float64(dst.X), float64(dst.Y))
	if t.Alpha > 0 && t.Alpha < 1 {
		op.ColorScale.ScaleAlpha(t.Alpha)
	}
	t.Screen.DrawImage(img, op)
}

func filterFor(s webbridge.SamplerDescriptor) ebiten.Filter {
	if s.MagFilter == gputypes.FilterModeLinear || s.MinFilter == gputypes.FilterModeLinear {
		return ebiten.FilterLinear
	}
	return ebiten.FilterNearest
}
