// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	timeoutShort = 2 * time.Second
	tickShort    = 5 * time.Millisecond
)

var errCreateFailed = errors.New("create failed")

type fakeTexture struct {
	mu       sync.Mutex
	id       uint32
	width    int
	height   int
	external bool
	pixels   []byte
	uploads  int
	released bool
}

func (t *fakeTexture) NativeID() uint32 { return t.id }
func (t *fakeTexture) Size() (int, int) { return t.width, t.height }
func (t *fakeTexture) Upload(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pixels = append(t.pixels[:0], p...)
	t.uploads++
	return nil
}

func (t *fakeTexture) Release() {
	t.mu.Lock()
	t.released = true
	t.mu.Unlock()
}

func (t *fakeTexture) isReleased() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released
}

type fakeDevice struct {
	mu          sync.Mutex
	external    bool
	failCreates int
	created     []*fakeTexture
}

func (d *fakeDevice) SupportsExternalTextures() bool { return d.external }

func (d *fakeDevice) CreateTexture(desc TextureDescriptor) (Texture, error) {
	return d.create(desc, false)
}

func (d *fakeDevice) CreateExternalTexture(desc TextureDescriptor) (Texture, error) {
	return d.create(desc, true)
}

func (d *fakeDevice) create(desc TextureDescriptor, external bool) (Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failCreates > 0 {
		d.failCreates--
		return nil, errCreateFailed
	}
	t := &fakeTexture{
		id:       uint32(len(d.created) + 1),
		width:    int(desc.Size.Width),
		height:   int(desc.Size.Height),
		external: external,
	}
	d.created = append(d.created, t)
	return t, nil
}

func (d *fakeDevice) textures() []*fakeTexture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakeTexture(nil), d.created...)
}

// frameEngine serves a configurable frame to the render thread. Control
// methods do nothing.
type frameEngine struct {
	mu            sync.Mutex
	frame         Frame
	hasFrame      bool
	videoTexture  uint32
	updated       bool
	regionChanged bool
	released      bool
}

func (e *frameEngine) setFrame(width, height int, format gputypes.TextureFormat, fill byte) {
	pixels := make([]byte, width*height*4)
	for i := range pixels {
		pixels[i] = fill
	}
	e.mu.Lock()
	e.frame = Frame{Pixels: pixels, RowBytes: width * 4, Format: format}
	e.hasFrame = true
	e.mu.Unlock()
}

func (e *frameEngine) LoadURL(string)            {}
func (e *frameEngine) LoadString(string, string) {}
func (e *frameEngine) StopLoad()                 {}
func (e *frameEngine) Reload()                   {}
func (e *frameEngine) GoBack()                   {}
func (e *frameEngine) GoForward()                {}
func (e *frameEngine) ExecuteJavaScript(string)  {}
func (e *frameEngine) SetVisibility(bool)        {}
func (e *frameEngine) Set3DSurface(bool)         {}
func (e *frameEngine) Update(int, int, int, int) {}
func (e *frameEngine) DidResolutionChange() bool { return false }

func (e *frameEngine) LastFrameData() (Frame, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame, e.hasFrame
}

func (e *frameEngine) SetVideoTexture(id uint32) {
	e.mu.Lock()
	e.videoTexture = id
	e.mu.Unlock()
}

func (e *frameEngine) UpdateVideoFrame(uint32) (bool, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updated, e.regionChanged
}

func (e *frameEngine) Release() {
	e.mu.Lock()
	e.released = true
	e.mu.Unlock()
}

// mockEngine is a testify mock with permissive defaults for every call.
type mockEngine struct {
	mock.Mock
}

// newMockEngine returns a mock whose LastFrameData serves frame, if given.
func newMockEngine(frame ...Frame) *mockEngine {
	e := &mockEngine{}
	e.On("LoadURL", mock.Anything).Maybe()
	e.On("LoadString", mock.Anything, mock.Anything).Maybe()
	e.On("StopLoad").Maybe()
	e.On("Reload").Maybe()
	e.On("GoBack").Maybe()
	e.On("GoForward").Maybe()
	e.On("ExecuteJavaScript", mock.Anything).Maybe()
	e.On("SetVisibility", mock.Anything).Maybe()
	e.On("Set3DSurface", mock.Anything).Maybe()
	e.On("Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	e.On("DidResolutionChange").Return(false).Maybe()
	if len(frame) > 0 {
		e.On("LastFrameData").Return(frame[0], true).Maybe()
	} else {
		e.On("LastFrameData").Return(Frame{}, false).Maybe()
	}
	e.On("SetVideoTexture", mock.Anything).Maybe()
	e.On("UpdateVideoFrame", mock.Anything).Return(false, false).Maybe()
	e.On("Release").Maybe()
	return e
}

func (e *mockEngine) LoadURL(url string)                  { e.Called(url) }
func (e *mockEngine) LoadString(contents, baseURL string) { e.Called(contents, baseURL) }
func (e *mockEngine) StopLoad()                           { e.Called() }
func (e *mockEngine) Reload()                             { e.Called() }
func (e *mockEngine) GoBack()                             { e.Called() }
func (e *mockEngine) GoForward()                          { e.Called() }
func (e *mockEngine) ExecuteJavaScript(script string)     { e.Called(script) }
func (e *mockEngine) SetVisibility(visible bool)          { e.Called(visible) }
func (e *mockEngine) Set3DSurface(enabled bool)           { e.Called(enabled) }
func (e *mockEngine) Update(x, y, width, height int)      { e.Called(x, y, width, height) }
func (e *mockEngine) SetVideoTexture(id uint32)           { e.Called(id) }
func (e *mockEngine) Release()                            { e.Called() }

func (e *mockEngine) DidResolutionChange() bool {
	return e.Called().Bool(0)
}

func (e *mockEngine) LastFrameData() (Frame, bool) {
	args := e.Called()
	return args.Get(0).(Frame), args.Bool(1)
}

func (e *mockEngine) UpdateVideoFrame(id uint32) (bool, bool) {
	args := e.Called(id)
	return args.Bool(0), args.Bool(1)
}

func newTestRuntime(t *testing.T, device TextureDevice, opts Options) *Runtime {
	t.Helper()
	rt, err := NewRuntime(device, opts, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(rt.Close)
	return rt
}

// onEngineThread runs fn on another goroutine, the way engine callbacks
// arrive, and keeps draining the main queue until it returns.
func onEngineThread[T any](t *testing.T, rt *Runtime, fn func() T) T {
	t.Helper()
	done := make(chan T, 1)
	go func() { done <- fn() }()

	deadline := time.After(timeoutShort)
	for {
		select {
		case v := <-done:
			return v
		case <-deadline:
			t.Fatal("engine-thread call did not return")
			var zero T
			return zero
		case <-time.After(tickShort):
			rt.Update()
		}
	}
}
