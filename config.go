// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/YindSoft/chromium-ebitengine-bridge/internal/logging"
)

// EnvPrefix is the prefix for environment overrides, e.g. WEBBRIDGE_INITIAL_URL.
const EnvPrefix = "WEBBRIDGE"

// Options configure a Runtime and the widgets created from it. All fields are
// optional.
type Options struct {
	InitialURL string `mapstructure:"initial_url"`
	MessageTag string `mapstructure:"message_tag"`

	// SurfaceMode is "auto", "copy" or "zero-copy".
	SurfaceMode     string `mapstructure:"surface_mode"`
	UseTransparency bool   `mapstructure:"use_transparency"`
	Debug           bool   `mapstructure:"debug"`

	// SyncCallTimeout bounds how long an engine thread waits for the main
	// thread. Zero waits until the main thread answers.
	SyncCallTimeout time.Duration `mapstructure:"sync_call_timeout"`

	FrameQueueDepth int `mapstructure:"frame_queue_depth"`
	SamplePoolSize  int `mapstructure:"sample_pool_size"`

	// BaseDir is the directory holding the native bridge library.
	BaseDir string `mapstructure:"base_dir"`

	Log logging.Config `mapstructure:"log"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		InitialURL:      "about:blank",
		MessageTag:      DefaultMessageTag,
		SurfaceMode:     string(SurfaceModeAuto),
		FrameQueueDepth: 1,
		SamplePoolSize:  4,
		Log:             logging.DefaultConfig(),
	}
}

// LoadOptions reads options from path (TOML, YAML or JSON; may be empty) and
// WEBBRIDGE_* environment variables, on top of DefaultOptions.
func LoadOptions(path string) (Options, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL"); err != nil {
		return Options{}, fmt.Errorf("failed to bind %s_LOG_LEVEL: %w", EnvPrefix, err)
	}
	if err := v.BindEnv("log.format", EnvPrefix+"_LOG_FORMAT"); err != nil {
		return Options{}, fmt.Errorf("failed to bind %s_LOG_FORMAT: %w", EnvPrefix, err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("failed to read config file at %s: %w", path, err)
		}
	}
	return decodeOptions(v)
}

// OptionsFromViper decodes options from an existing viper instance, such as
// one with command-line flags bound to it.
func OptionsFromViper(v *viper.Viper) (Options, error) {
	setDefaults(v)
	return decodeOptions(v)
}

func decodeOptions(v *viper.Viper) (Options, error) {
	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse options: %w", err)
	}
	opts.normalize()
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("options validation failed: %w", err)
	}
	return opts, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultOptions()
	v.SetDefault("initial_url", d.InitialURL)
	v.SetDefault("message_tag", d.MessageTag)
	v.SetDefault("surface_mode", d.SurfaceMode)
	v.SetDefault("use_transparency", d.UseTransparency)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("sync_call_timeout", d.SyncCallTimeout)
	v.SetDefault("frame_queue_depth", d.FrameQueueDepth)
	v.SetDefault("sample_pool_size", d.SamplePoolSize)
	v.SetDefault("base_dir", d.BaseDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.time_format", d.Log.TimeFormat)
}

func (o *Options) normalize() {
	if strings.TrimSpace(o.InitialURL) == "" {
		o.InitialURL = "about:blank"
	}
	o.SurfaceMode = string(ParseSurfaceMode(o.SurfaceMode))
	if o.FrameQueueDepth < 1 {
		o.FrameQueueDepth = 1
	}
	if o.SamplePoolSize < 1 {
		o.SamplePoolSize = 1
	}
	if o.SyncCallTimeout < 0 {
		o.SyncCallTimeout = 0
	}
}

// Validate reports configuration errors normalization cannot repair.
func (o Options) Validate() error {
	var errs []error
	if o.MessageTag == "" {
		errs = append(errs, errors.New("message_tag must not be empty"))
	} else if i := strings.Index(o.MessageTag, "/"); i >= 0 && i != len(o.MessageTag)-1 {
		errs = append(errs, fmt.Errorf("message_tag %q may only contain '/' as its last character", o.MessageTag))
	}
	switch o.Log.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", o.Log.Format))
	}
	return errors.Join(errs...)
}
