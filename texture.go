// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/google/uuid"
)

// TextureDescriptor describes a 2D texture the pipeline asks the host to create.
type TextureDescriptor struct {
	Label  string
	Size   gputypes.Extent3D
	Format gputypes.TextureFormat
	Usage  gputypes.TextureUsage
}

// SamplerDescriptor is the fixed sampling configuration paired with a
// registered external texture.
type SamplerDescriptor struct {
	MagFilter    gputypes.FilterMode
	MinFilter    gputypes.FilterMode
	AddressModeU gputypes.AddressMode
	AddressModeV gputypes.AddressMode
	AddressModeW gputypes.AddressMode
}

// BilinearClampSampler is used for every browser texture.
var BilinearClampSampler = SamplerDescriptor{
	MagFilter:    gputypes.FilterModeLinear,
	MinFilter:    gputypes.FilterModeLinear,
	AddressModeU: gputypes.AddressModeClampToEdge,
	AddressModeV: gputypes.AddressModeClampToEdge,
	AddressModeW: gputypes.AddressModeClampToEdge,
}

func browserTextureDescriptor(label string, width, height int) TextureDescriptor {
	return TextureDescriptor{
		Label: label,
		Size: gputypes.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	}
}

// Texture is a host GPU texture. All methods are called on the render thread.
type Texture interface {
	// NativeID is the handle the engine writes into on the zero-copy path.
	NativeID() uint32
	Size() (width, height int)
	// Upload replaces the contents with tightly packed RGBA pixels.
	Upload(pixels []byte) error
	Release()
}

// TextureDevice creates host textures. Called on the render thread only.
type TextureDevice interface {
	SupportsExternalTextures() bool
	CreateTexture(desc TextureDescriptor) (Texture, error)
	CreateExternalTexture(desc TextureDescriptor) (Texture, error)
}

// ExternalTexture is one registry entry.
type ExternalTexture struct {
	Texture Texture
	Sampler SamplerDescriptor
}

// ExternalTextureRegistry maps stable per-browser identifiers to the texture
// the compositor should sample. Registering an identifier again replaces the
// previous mapping.
type ExternalTextureRegistry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]ExternalTexture
}

// NewExternalTextureRegistry returns an empty registry.
func NewExternalTextureRegistry() *ExternalTextureRegistry {
	return &ExternalTextureRegistry{entries: make(map[uuid.UUID]ExternalTexture)}
}

// Register maps id to tex.
func (r *ExternalTextureRegistry) Register(id uuid.UUID, tex Texture, sampler SamplerDescriptor) {
	r.mu.Lock()
	r.entries[id] = ExternalTexture{Texture: tex, Sampler: sampler}
	r.mu.Unlock()
}

// Unregister removes the mapping for id.
func (r *ExternalTextureRegistry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Lookup returns the mapping for id.
func (r *ExternalTextureRegistry) Lookup(id uuid.UUID) (ExternalTexture, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Len returns the number of active mappings.
func (r *ExternalTextureRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// TextureRef is the opaque identifier the main thread hands to the compositor.
type TextureRef struct {
	ID uuid.UUID
}

// Rect is an integer screen rectangle.
type Rect struct {
	X, Y, Width, Height int
}

// DrawTarget accepts a browser texture for composition.
type DrawTarget interface {
	DrawTexture(ref TextureRef, dst Rect)
}
