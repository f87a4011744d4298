// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package main

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	webbridge "github.com/YindSoft/chromium-ebitengine-bridge"
	"github.com/YindSoft/chromium-ebitengine-bridge/ebitenhost"
	"github.com/YindSoft/chromium-ebitengine-bridge/internal/logging"
	"github.com/YindSoft/chromium-ebitengine-bridge/nativebridge"
)

const (
	sidebarWidth = 200
)

const sidebarHTML = `<!doctype html>
<html><body style="background:rgba(20,20,30,.8);color:#eee;font-family:sans-serif">
<h3>Sidebar</h3>
<button onclick="webbridge.send('ping', String(Date.now()))">Ping host</button>
<pre id="out"></pre>
<script>
window.webbridge = window.webbridge || {};
webbridge.receive = function(data) {
  document.getElementById('out').textContent = JSON.stringify(data, null, 2);
};
</script>
</body></html>`

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "webbridge-demo",
	Short: "Browser widgets inside an Ebitengine window",
	RunE: func(_ *cobra.Command, _ []string) error {
		return run()
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (toml, yaml or json)")
	flags.String("url", "https://example.com", "page shown in the main widget")
	flags.String("mode", "auto", "surface mode: auto, copy or zero-copy")
	flags.Int("width", 800, "window width")
	flags.Int("height", 600, "window height")
	flags.String("base-dir", "", "directory holding the bridge library")
	flags.String("log-level", "info", "log level")

	_ = v.BindPFlag("initial_url", flags.Lookup("url"))
	_ = v.BindPFlag("surface_mode", flags.Lookup("mode"))
	_ = v.BindPFlag("base_dir", flags.Lookup("base-dir"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("window.width", flags.Lookup("width"))
	_ = v.BindPFlag("window.height", flags.Lookup("height"))
}

type demo struct {
	game    *ebitenhost.Game
	main    *webbridge.Widget
	sidebar *webbridge.Widget
	counter int
	log     zerolog.Logger
}

func run() error {
	v.SetEnvPrefix(webbridge.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file at %s: %w", cfgFile, err)
		}
	}
	opts, err := webbridge.OptionsFromViper(v)
	if err != nil {
		return err
	}
	width, height := v.GetInt("window.width"), v.GetInt("window.height")

	logger := logging.New(opts.Log)
	rt, err := webbridge.NewRuntime(ebitenhost.NewDevice(), opts, logger)
	if err != nil {
		return err
	}

	d := &demo{log: logging.WithComponent(logger, "demo")}
	d.game = ebitenhost.NewGame(rt, width, height)
	defer d.game.Close()

	mainWin := webbridge.NewBrowserWindow(width-sidebarWidth, height)
	mainWin.OnJSMessage = d.handleMainMessage
	mainWin.OnTitleChanged = func(title string) {
		ebiten.SetWindowTitle("webbridge - " + title)
	}
	mainWin.OnLoadError = func(url string, code int) {
		d.log.Warn().Str("url", url).Int("code", code).Msg("load failed")
	}
	mainWin.OnRenderProcessTerminated = func(status webbridge.TerminationStatus) {
		d.log.Error().Stringer("status", status).Msg("renderer gone, reloading")
		if d.main != nil {
			_ = d.main.Reload()
		}
	}
	mainWin.OnShowDialog = func(dlg *webbridge.DialogRequest) webbridge.DialogResponse {
		d.log.Info().Stringer("type", dlg.Type).Str("message", dlg.Message).Msg("dialog")
		return webbridge.DialogContinue
	}

	d.main, err = webbridge.NewWidget(rt, mainWin, nativebridge.NewEngine)
	if err != nil {
		return fmt.Errorf("main widget: %w", err)
	}
	d.game.Mount(d.main, webbridge.Rect{Width: width - sidebarWidth, Height: height}).Alpha = 0.5

	sideWin := webbridge.NewBrowserWindow(sidebarWidth, height)
	sideWin.OnJSMessage = d.handleSidebarMessage
	d.sidebar, err = webbridge.NewWidget(rt, sideWin, nativebridge.NewEngine)
	if err != nil {
		return fmt.Errorf("sidebar widget: %w", err)
	}
	if err := d.sidebar.LoadHTML(sidebarHTML, "https://sidebar.local/"); err != nil {
		return err
	}
	d.game.Mount(d.sidebar, webbridge.Rect{X: width - sidebarWidth, Width: sidebarWidth, Height: height})

	d.game.OnUpdate = d.update
	d.game.Background = d.drawBackground
	d.game.Overlay = d.drawOverlay

	ebiten.SetVsyncEnabled(false)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("webbridge - Ebiten + browser demo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	return ebiten.RunGame(d.game)
}

func (d *demo) update() error {
	d.game.Runtime.Main.Park(nativebridge.Pump)
	d.counter++
	// Send a counter update every second
	if d.counter%60 == 0 {
		_ = d.main.ExecuteScript(fmt.Sprintf("if(typeof updateCounter==='function')updateCounter(%d)", d.counter/60))
	}
	return nil
}

func (d *demo) drawBackground(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 40, 255})

	// Animated shapes behind the browser, visible through transparent areas
	t := float64(d.counter) / 60.0
	bx := float32(100 + 80*math.Sin(t*0.5))
	by := float32(200 + 60*math.Cos(t*0.7))
	vector.DrawFilledRect(screen, bx, by, 120, 120, color.RGBA{0, 200, 80, 255}, true)
	vector.DrawFilledRect(screen, bx+140, by+30, 80, 80, color.RGBA{200, 180, 0, 255}, true)
}

func (d *demo) drawOverlay(screen *ebiten.Image) {
	stats := d.main.Pipeline().Stats()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  TPS: %.1f  frames: %d  dropped: %d  [%s]",
		ebiten.ActualFPS(), ebiten.ActualTPS(), stats.Presented, stats.Queue.Dropped, d.main.State()))
}

func (d *demo) handleMainMessage(msg webbridge.Message) {
	d.log.Info().Str("command", msg.Command).Strs("args", msg.Args).Str("origin", msg.Origin).Msg("main message")
	switch msg.Command {
	case "greet":
		_ = d.main.ExecuteScript("showMessage('Hello from Go!')")
	case "count":
		_ = d.main.ExecuteScript(fmt.Sprintf("showMessage('Counter is at %d')", d.counter/60))
	case "back":
		if d.main.CanGoBack() {
			_ = d.main.GoBack()
		}
	default:
		_ = d.main.Send(map[string]any{"command": msg.Command, "args": msg.Args})
	}
}

func (d *demo) handleSidebarMessage(msg webbridge.Message) {
	d.log.Info().Str("command", msg.Command).Strs("args", msg.Args).Msg("sidebar message")
	var payload any = msg.Args
	if len(msg.Args) > 0 {
		if parsed, err := webbridge.DecodeJSONArg(msg.Args[0]); err == nil {
			payload = parsed
		}
	}
	_ = d.sidebar.Send(map[string]any{"echo": payload, "status": "ok"})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
