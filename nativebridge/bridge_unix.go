// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build linux || darwin

package nativebridge

import (
	"fmt"
	"runtime"

	"github.com/ebitengine/purego"
)

func openLibrary(baseDir string) (uintptr, error) {
	absPath := libraryPath(baseDir)
	handle, err := purego.Dlopen(absPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s from %s: %w", bridgeLibName(), absPath, err)
	}
	return handle, nil
}

func getSymbolAddr(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func bridgeLibName() string {
	if runtime.GOOS == "darwin" {
		return "libwb_bridge.dylib"
	}
	return "libwb_bridge.so"
}
