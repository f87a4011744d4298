// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package webbridge embeds a multi-threaded browser engine in a single
// threaded game loop such as Ebitengine's.
//
// The engine runs on its own threads. The bridge moves three kinds of traffic
// across that boundary:
//
//   - video frames, copied through pooled CPU buffers or written by the
//     engine straight into a host texture, and registered under a stable
//     per-browser identifier the compositor draws from;
//   - questions that need a host decision (navigation, dialogs, popups,
//     request overrides), answered on the host main thread while the engine
//     thread waits;
//   - page messages, which the page encodes into a tagged request URL.
//
// Basic usage with the ebitenhost and nativebridge packages:
//
//	opts, _ := webbridge.LoadOptions("")
//	host := ebitenhost.NewDevice()
//	rt, err := webbridge.NewRuntime(host, opts, logging.New(opts.Log))
//	if err != nil { ... }
//	defer rt.Close()
//
//	win := webbridge.NewBrowserWindow(800, 600)
//	win.OnJSMessage = func(msg webbridge.Message) { ... }
//
//	w, err := webbridge.NewWidget(rt, win, nativebridge.NewEngine)
//	if err != nil { ... }
//	defer w.Close()
//
//	// In Ebiten Update():
//	rt.Update()
//	w.Tick(webbridge.Geometry{Width: 800, Height: 600}, time.Now())
//
//	// In Ebiten Draw():
//	w.Paint(host.Target(screen))
//
// Page side, after each load the widget injects a helper:
//
//	window.webbridge.send("buy", "sword", JSON.stringify({qty: 2}))
//	window.webbridge.receive = function(data) { ... } // fed by Widget.Send
//
// Native engine callbacks enter through the package-level functions
// (InterceptRequest, OverrideURLLoading, PageLoad, ...), keyed by the
// widget's Handle. A handle whose widget is closed or collected resolves to
// nothing and the callback gets its conservative default.
package webbridge
