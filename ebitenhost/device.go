// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package ebitenhost connects webbridge widgets to an Ebitengine game: it
// creates browser textures as ebiten images, draws registered textures onto
// the screen and forwards mouse and keyboard input to the engine.
package ebitenhost

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"

	webbridge "github.com/YindSoft/chromium-ebitengine-bridge"
)

// ErrExternalUnsupported is returned by CreateExternalTexture: ebiten images
// expose no native handle an engine could write into.
var ErrExternalUnsupported = errors.New("ebitenhost: external textures not supported")

// Texture is a browser texture backed by an ebiten image.
type Texture struct {
	id     uint32
	img    *ebiten.Image
	width  int
	height int
	device *Device
}

// NativeID returns the device-local texture id.
func (t *Texture) NativeID() uint32 { return t.id }

// Size returns the texture size in pixels.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// Image returns the backing image, nil after Release.
func (t *Texture) Image() *ebiten.Image {
	t.device.mu.Lock()
	defer t.device.mu.Unlock()
	return t.img
}

// Upload replaces the image contents with tightly packed RGBA pixels.
func (t *Texture) Upload(pixels []byte) error {
	img := t.Image()
	if img == nil {
		return fmt.Errorf("texture %d: upload after release", t.id)
	}
	if want := t.width * t.height * 4; len(pixels) != want {
		return fmt.Errorf("texture %d: got %d bytes, want %d", t.id, len(pixels), want)
	}
	img.WritePixels(pixels)
	return nil
}

// Release disposes the backing image.
func (t *Texture) Release() {
	d := t.device
	d.mu.Lock()
	img := t.img
	t.img = nil
	delete(d.textures, t.id)
	d.mu.Unlock()
	if img != nil {
		img.Deallocate()
	}
}

// Device creates browser textures as ebiten images.
type Device struct {
	mu       sync.Mutex
	textures map[uint32]*Texture
	lastID   uint32
}

// NewDevice returns an empty device.
func NewDevice() *Device {
	return &Device{textures: make(map[uint32]*Texture)}
}

// SupportsExternalTextures is always false for ebiten images.
func (d *Device) SupportsExternalTextures() bool { return false }

// CreateTexture allocates an ebiten image for desc.
func (d *Device) CreateTexture(desc webbridge.TextureDescriptor) (webbridge.Texture, error) {
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		return nil, fmt.Errorf("ebitenhost: unsupported texture format %v", desc.Format)
	}
	w, h := int(desc.Size.Width), int(desc.Size.Height)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("ebitenhost: invalid texture size %dx%d", w, h)
	}

	img := ebiten.NewImage(w, h)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastID++
	t := &Texture{id: d.lastID, img: img, width: w, height: h, device: d}
	d.textures[t.id] = t
	return t, nil
}

// CreateExternalTexture always fails; see ErrExternalUnsupported.
func (d *Device) CreateExternalTexture(webbridge.TextureDescriptor) (webbridge.Texture, error) {
	return nil, ErrExternalUnsupported
}

// Len returns the number of live textures.
func (d *Device) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.textures)
}
