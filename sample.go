// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
)

const bytesPerPixel = 4

// FrameSample is one video frame. It carries either an owned CPU buffer
// (copy path) or the identifier of an engine-written external texture
// (zero-copy path), never both.
//
// Samples belong to a FrameSamplePool: they are acquired, filled, enqueued,
// consumed and returned, never dropped individually.
type FrameSample struct {
	Width  int
	Height int
	Format gputypes.TextureFormat

	// Pixels is tightly packed RGBA, Width*Height*4 bytes. Nil on the
	// zero-copy path.
	Pixels []byte

	// ExternalID is the native texture the engine wrote into. Zero on the
	// copy path.
	ExternalID uint32

	// Valid reports whether ExternalID currently holds a usable frame.
	Valid bool

	// Seq is assigned by the FrameQueue on enqueue.
	Seq uint64
}

// Initialize prepares the sample for a width x height copy-path frame,
// reusing the existing buffer when it is large enough.
func (s *FrameSample) Initialize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	n := width * height * bytesPerPixel
	if cap(s.Pixels) < n {
		s.Pixels = make([]byte, n)
	}
	s.Pixels = s.Pixels[:n]
	s.Width, s.Height = width, height
	s.Format = gputypes.TextureFormatRGBA8Unorm
	s.ExternalID = 0
	s.Valid = false
	return true
}

// ExpectedBytes is the tightly packed size of the frame.
func (s *FrameSample) ExpectedBytes() int {
	return s.Width * s.Height * bytesPerPixel
}

// CopyFrom copies an engine-owned frame into the sample. src is only read
// for the duration of the call. rowBytes may exceed Width*4 when the engine
// pads rows but never be shorter. BGRA sources are swizzled to RGBA.
func (s *FrameSample) CopyFrom(src []byte, rowBytes int, srcFormat gputypes.TextureFormat) error {
	if s.Pixels == nil {
		return fmt.Errorf("copy into uninitialized sample")
	}
	if rowBytes <= 0 {
		rowBytes = s.Width * bytesPerPixel
	}
	if rowBytes < s.Width*bytesPerPixel {
		return fmt.Errorf("%w: row of %d bytes, need %d", ErrSampleSize, rowBytes, s.Width*bytesPerPixel)
	}
	need := rowBytes*(s.Height-1) + s.Width*bytesPerPixel
	if len(src) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrSampleSize, len(src), need)
	}

	row := s.Width * bytesPerPixel
	if srcFormat != gputypes.TextureFormatBGRA8Unorm {
		for y := 0; y < s.Height; y++ {
			copy(s.Pixels[y*row:(y+1)*row], src[y*rowBytes:y*rowBytes+row])
		}
		return nil
	}

	dstIdx := 0
	for y := 0; y < s.Height; y++ {
		srcRowStart := y * rowBytes
		for x := 0; x < s.Width; x++ {
			srcOff := srcRowStart + x*4
			s.Pixels[dstIdx+0] = src[srcOff+2] // BGRA -> RGBA
			s.Pixels[dstIdx+1] = src[srcOff+1]
			s.Pixels[dstIdx+2] = src[srcOff+0]
			s.Pixels[dstIdx+3] = src[srcOff+3]
			dstIdx += 4
		}
	}
	return nil
}

// SetExternal switches the sample to the zero-copy variant.
func (s *FrameSample) SetExternal(id uint32, width, height int) {
	s.Pixels = nil
	s.ExternalID = id
	s.Valid = id != 0
	s.Width, s.Height = width, height
}

func (s *FrameSample) reset() {
	s.Seq = 0
	s.Valid = false
	s.ExternalID = 0
}

// FrameSamplePool recycles samples so the per-tick path does not allocate.
type FrameSamplePool struct {
	mu      sync.Mutex
	free    []*FrameSample
	maxIdle int
	closed  bool

	allocated int
}

// NewFrameSamplePool returns a pool keeping at most maxIdle released samples.
func NewFrameSamplePool(maxIdle int) *FrameSamplePool {
	if maxIdle < 1 {
		maxIdle = 1
	}
	return &FrameSamplePool{maxIdle: maxIdle}
}

// Acquire returns an idle sample or a new one.
func (p *FrameSamplePool) Acquire() *FrameSample {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		s := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		s.reset()
		return s
	}
	p.allocated++
	return &FrameSample{}
}

// Release returns s to the pool. After Close, released samples are dropped.
// The sample is not touched until the next Acquire hands it out again.
func (p *FrameSamplePool) Release(s *FrameSample) {
	if s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || len(p.free) >= p.maxIdle {
		return
	}
	p.free = append(p.free, s)
}

// Len returns the number of idle samples.
func (p *FrameSamplePool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Allocated returns how many samples the pool has created.
func (p *FrameSamplePool) Allocated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocated
}

// Close drops all idle samples.
func (p *FrameSamplePool) Close() {
	p.mu.Lock()
	p.closed = true
	p.free = nil
	p.mu.Unlock()
}
