// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package nativebridge binds the wb_bridge shared library, a thin C layer
// over the browser engine, without cgo. It implements webbridge.Engine and
// routes the library's callbacks into the webbridge entry points.
//
// Requirements: the bridge library (wb_bridge.dll on Windows,
// libwb_bridge.so on Linux, libwb_bridge.dylib on macOS) and the engine
// runtime files next to the executable or in Options.BaseDir.
package nativebridge

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	wbInit              func(baseDir string, debug int32) int32
	wbSetCallback       func(kind int32, fn uintptr)
	wbShutdown          func()
	wbPump              func()
	wbCreateBrowser     func(handle uint64, width, height int32, flags uint32, tag string) int32
	wbDestroyBrowser    func(id int32)
	wbLoadURL           func(id int32, url string)
	wbLoadString        func(id int32, contents, baseURL string)
	wbStopLoad          func(id int32)
	wbReload            func(id int32)
	wbGoBack            func(id int32)
	wbGoForward         func(id int32)
	wbExecuteJS         func(id int32, js string)
	wbSetVisible        func(id int32, visible int32)
	wbSet3D             func(id int32, enabled int32)
	wbUpdate            func(id int32, x, y, width, height int32)
	wbResolutionChanged func(id int32) int32
	wbLockFrame         func(id int32) uintptr
	wbUnlockFrame       func(id int32)
	wbFrameHeight       func(id int32) uint32
	wbFrameRowBytes     func(id int32) uint32
	wbSetVideoTexture   func(id int32, texture uint32)
	wbUpdateVideoFrame  func(id int32, texture uint32, regionChanged uintptr) int32
	wbFireMouse         func(id int32, eventType, x, y, button int32)
	wbFireScroll        func(id int32, dx, dy int32)
	wbFireKey           func(id int32, keyType, vk int32, mods uint32, text string)
	wbRespond           func(requestID uint64, data uintptr, size int64)
	wbDialogContinue    func(dialogID uint64, accept int32, text string)
)

// Browser creation flags.
const (
	flagTransparent = 1 << 0
	flagZeroCopy    = 1 << 1
	flagDebug       = 1 << 2
)

var (
	loadOnce sync.Once
	loadErr  error
	initOnce sync.Once
	initErr  error

	browserCount   int
	browserCountMu sync.Mutex
)

// Load opens the bridge library from baseDir and resolves its symbols. Only
// the first call has an effect; later calls return the first result.
func Load(baseDir string) error {
	loadOnce.Do(func() {
		loadErr = load(resolveBaseDir(baseDir))
	})
	return loadErr
}

func load(baseDir string) error {
	handle, err := openLibrary(baseDir)
	if err != nil {
		return err
	}
	if err := resolveAllSymbols(handle); err != nil {
		return err
	}
	registerCallbacks()
	return nil
}

// ensureInit calls wb_init once. Must be called after Load.
func ensureInit(baseDir string, debug bool) error {
	initOnce.Do(func() {
		if rc := wbInit(resolveBaseDir(baseDir), boolToInt(debug)); rc != 0 {
			initErr = fmt.Errorf("wb_init failed with code %d", rc)
		}
	})
	return initErr
}

func resolveBaseDir(baseDir string) string {
	if baseDir != "" {
		return baseDir
	}
	baseDir, _ = os.Getwd()
	if _, err := os.Stat(filepath.Join(baseDir, bridgeLibName())); err != nil {
		if exe, _ := os.Executable(); exe != "" {
			baseDir = filepath.Dir(exe)
		}
	}
	return baseDir
}

func libraryPath(baseDir string) string {
	p := filepath.Join(baseDir, bridgeLibName())
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func resolveAllSymbols(handle uintptr) error {
	for _, reg := range []struct {
		fptr any
		name string
	}{
		{&wbInit, "wb_init"},
		{&wbSetCallback, "wb_set_callback"},
		{&wbShutdown, "wb_shutdown"},
		{&wbPump, "wb_pump"},
		{&wbCreateBrowser, "wb_create_browser"},
		{&wbDestroyBrowser, "wb_destroy_browser"},
		{&wbLoadURL, "wb_load_url"},
		{&wbLoadString, "wb_load_string"},
		{&wbStopLoad, "wb_stop_load"},
		{&wbReload, "wb_reload"},
		{&wbGoBack, "wb_go_back"},
		{&wbGoForward, "wb_go_forward"},
		{&wbExecuteJS, "wb_execute_js"},
		{&wbSetVisible, "wb_set_visible"},
		{&wbSet3D, "wb_set_3d"},
		{&wbUpdate, "wb_update"},
		{&wbResolutionChanged, "wb_resolution_changed"},
		{&wbLockFrame, "wb_lock_frame"},
		{&wbUnlockFrame, "wb_unlock_frame"},
		{&wbFrameHeight, "wb_frame_height"},
		{&wbFrameRowBytes, "wb_frame_row_bytes"},
		{&wbSetVideoTexture, "wb_set_video_texture"},
		{&wbUpdateVideoFrame, "wb_update_video_frame"},
		{&wbFireMouse, "wb_fire_mouse"},
		{&wbFireScroll, "wb_fire_scroll"},
		{&wbFireKey, "wb_fire_key"},
		{&wbRespond, "wb_respond"},
		{&wbDialogContinue, "wb_dialog_continue"},
	} {
		sym, err := getSymbolAddr(handle, reg.name)
		if err != nil {
			return fmt.Errorf("%s: %w (rebuild %s)", reg.name, err, bridgeLibName())
		}
		purego.RegisterFunc(reg.fptr, sym)
	}
	return nil
}

func retainLibrary() {
	browserCountMu.Lock()
	browserCount++
	browserCountMu.Unlock()
}

// releaseLibrary shuts the engine down when the last browser is gone.
func releaseLibrary() {
	browserCountMu.Lock()
	defer browserCountMu.Unlock()
	browserCount--
	if browserCount <= 0 {
		browserCount = 0
		wbShutdown()
	}
}

// Pump runs pending engine work on the calling thread. Call it once per host
// tick when the engine is configured without its own message loop thread.
// Engine callbacks may fire during the pump, so wrap it in MainQueue.Park:
//
//	rt.Main.Park(nativebridge.Pump)
//
// A bare Pump on the thread that drains the main queue deadlocks the first
// synchronous callback.
func Pump() {
	if loadErr == nil && wbPump != nil {
		wbPump()
	}
}

// goString copies a NUL-terminated C string.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
