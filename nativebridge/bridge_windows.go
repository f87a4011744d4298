// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build windows

package nativebridge

import (
	"fmt"
	"syscall"
)

func openLibrary(baseDir string) (uintptr, error) {
	absPath := libraryPath(baseDir)
	lib, err := syscall.LoadLibrary(absPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s from %s: %w", bridgeLibName(), absPath, err)
	}
	return uintptr(lib), nil
}

func getSymbolAddr(handle uintptr, name string) (uintptr, error) {
	sym, err := syscall.GetProcAddress(syscall.Handle(handle), name)
	if err != nil {
		return 0, err
	}
	if sym == 0 {
		return 0, fmt.Errorf("symbol %q not found in DLL", name)
	}
	return sym, nil
}

func bridgeLibName() string {
	return "wb_bridge.dll"
}
