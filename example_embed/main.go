// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Example of FSResponder: serves HTML/CSS/JS from embed.FS (no files on disk).
package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/rs/zerolog"

	webbridge "github.com/YindSoft/chromium-ebitengine-bridge"
	"github.com/YindSoft/chromium-ebitengine-bridge/ebitenhost"
	"github.com/YindSoft/chromium-ebitengine-bridge/internal/logging"
	"github.com/YindSoft/chromium-ebitengine-bridge/nativebridge"
)

//go:embed ui
var uiFiles embed.FS

const (
	screenWidth  = 800
	screenHeight = 600
	appOrigin    = "https://app.local/"
)

type embedDemo struct {
	ui        *webbridge.Widget
	main      *webbridge.MainQueue
	counter   int
	fileCount int
	log       zerolog.Logger
}

func newDemo(game *ebitenhost.Game) (*embedDemo, error) {
	n, err := webbridge.CountFiles(uiFiles)
	if err != nil {
		return nil, err
	}
	d := &embedDemo{main: game.Runtime.Main, fileCount: n, log: logging.WithComponent(game.Runtime.Logger, "embed")}

	win := webbridge.NewBrowserWindow(screenWidth, screenHeight)
	win.OnLoadURL = webbridge.FSResponder(uiFiles, appOrigin)
	win.OnJSMessage = d.handleMessage

	d.ui, err = webbridge.NewWidget(game.Runtime, win, nativebridge.NewEngine)
	if err != nil {
		return nil, fmt.Errorf("NewWidget: %w", err)
	}
	if err := d.ui.LoadURL(appOrigin + "ui/index.html"); err != nil {
		return nil, err
	}
	game.Mount(d.ui, webbridge.Rect{Width: screenWidth, Height: screenHeight})
	return d, nil
}

func (d *embedDemo) update() error {
	d.main.Park(nativebridge.Pump)
	d.counter++
	if d.counter%60 == 0 {
		_ = d.ui.Send(map[string]any{"counter": d.counter / 60})
	}
	return nil
}

func (d *embedDemo) overlay(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  embedded files: %d", ebiten.ActualFPS(), d.fileCount))
}

func (d *embedDemo) handleMessage(msg webbridge.Message) {
	d.log.Info().Str("command", msg.Command).Strs("args", msg.Args).Msg("embed UI message")
	switch msg.Command {
	case "greet":
		_ = d.ui.Send(map[string]any{"message": "Hello from embedded Go!"})
	default:
		_ = d.ui.Send(map[string]any{"message": "Go received: " + msg.Command})
	}
}

func run() error {
	opts, err := webbridge.LoadOptions(os.Getenv(webbridge.EnvPrefix + "_CONFIG"))
	if err != nil {
		return err
	}
	opts.Debug = true

	logger := logging.New(opts.Log)
	rt, err := webbridge.NewRuntime(ebitenhost.NewDevice(), opts, logger)
	if err != nil {
		return err
	}
	game := ebitenhost.NewGame(rt, screenWidth, screenHeight)
	defer game.Close()

	d, err := newDemo(game)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	game.OnUpdate = d.update
	game.Overlay = d.overlay

	ebiten.SetVsyncEnabled(false)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("webbridge - embed.FS example")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	return ebiten.RunGame(game)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
