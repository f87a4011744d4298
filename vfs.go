// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// FSResponder returns a BrowserWindow.OnLoadURL delegate serving intercepted
// requests whose URL starts with prefix from fsys. Requests outside prefix,
// and files missing from fsys, fall through to a normal load.
//
// Example with embed.FS:
//
//	//go:embed ui
//	var uiFiles embed.FS
//	win.OnLoadURL = webbridge.FSResponder(uiFiles, "https://app.local/")
//	// https://app.local/ui/index.html is served from uiFiles
func FSResponder(fsys fs.FS, prefix string) func(method, url string) (string, bool) {
	return func(_, url string) (string, bool) {
		name, ok := fsPath(url, prefix)
		if !ok {
			return "", false
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}

// fsPath maps a request URL to a file name inside the responder's FS.
func fsPath(url, prefix string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	rest := url[len(prefix):]
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	norm := strings.ReplaceAll(rest, "\\", "/")
	norm = strings.TrimLeft(norm, "/")
	if norm == "" || strings.HasSuffix(norm, "/") {
		norm += "index.html"
	}
	norm = path.Clean(norm)
	if !fs.ValidPath(norm) {
		return "", false
	}
	return norm, true
}

// CountFiles returns the number of regular files in fsys.
func CountFiles(fsys fs.FS) (int, error) {
	n := 0
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking FS: %w", err)
	}
	return n, nil
}
