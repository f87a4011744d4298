// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadOptionsDefaults(t *testing.T) {
	opts, err := LoadOptions("")
	require.NoError(t, err)

	assert.Equal(t, DefaultOptions(), opts)
	assert.Equal(t, "about:blank", opts.InitialURL)
	assert.Equal(t, DefaultMessageTag, opts.MessageTag)
	assert.Equal(t, string(SurfaceModeAuto), opts.SurfaceMode)
}

func TestLoadOptionsFromTOML(t *testing.T) {
	path := writeConfig(t, "webbridge.toml", `
initial_url = "https://app.local/ui/index.html"
surface_mode = "ZeroCopy"
use_transparency = true
sync_call_timeout = "250ms"
frame_queue_depth = 0
sample_pool_size = 8

[log]
level = "debug"
format = "json"
`)

	opts, err := LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, "https://app.local/ui/index.html", opts.InitialURL)
	assert.Equal(t, string(SurfaceModeZeroCopy), opts.SurfaceMode)
	assert.True(t, opts.UseTransparency)
	assert.Equal(t, 250*time.Millisecond, opts.SyncCallTimeout)
	assert.Equal(t, 1, opts.FrameQueueDepth, "depth is clamped to 1")
	assert.Equal(t, 8, opts.SamplePoolSize)
	assert.Equal(t, "debug", opts.Log.Level)
	assert.Equal(t, "json", opts.Log.Format)
	assert.Equal(t, DefaultMessageTag, opts.MessageTag)
}

func TestLoadOptionsEnvOverrides(t *testing.T) {
	t.Setenv("WEBBRIDGE_INITIAL_URL", "https://env.local/")
	t.Setenv("WEBBRIDGE_LOG_LEVEL", "warn")
	t.Setenv("WEBBRIDGE_DEBUG", "true")

	path := writeConfig(t, "webbridge.yaml", "initial_url: https://file.local/\n")
	opts, err := LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.local/", opts.InitialURL)
	assert.Equal(t, "warn", opts.Log.Level)
	assert.True(t, opts.Debug)
}

func TestLoadOptionsMissingFile(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadOptionsValidation(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		errText  string
	}{
		{"empty tag", `message_tag = ""`, "message_tag must not be empty"},
		{"slash inside tag", `message_tag = "a/b"`, "may only contain '/'"},
		{"unknown log format", "[log]\nformat = \"xml\"", "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOptions(writeConfig(t, "webbridge.toml", tt.contents))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestOptionsFromViperKeepsExplicitValues(t *testing.T) {
	v := viper.New()
	v.Set("initial_url", "https://flag.local/")
	v.Set("message_tag", "__msg__/")

	opts, err := OptionsFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "https://flag.local/", opts.InitialURL)
	assert.Equal(t, "__msg__/", opts.MessageTag)
	assert.Equal(t, 4, opts.SamplePoolSize)
}

func TestOptionsNormalize(t *testing.T) {
	opts := Options{
		InitialURL:      "  ",
		SurfaceMode:     "bogus",
		SyncCallTimeout: -time.Second,
	}
	opts.normalize()

	assert.Equal(t, "about:blank", opts.InitialURL)
	assert.Equal(t, string(SurfaceModeAuto), opts.SurfaceMode)
	assert.Zero(t, opts.SyncCallTimeout)
	assert.Equal(t, 1, opts.FrameQueueDepth)
	assert.Equal(t, 1, opts.SamplePoolSize)
}

func TestSurfaceModeSelection(t *testing.T) {
	assert.Equal(t, SurfaceModeZeroCopy, ParseSurfaceMode(" External "))
	assert.Equal(t, SurfaceModeCopy, ParseSurfaceMode("COPY"))
	assert.Equal(t, SurfaceModeAuto, ParseSurfaceMode(""))

	capable := &fakeDevice{external: true}
	limited := &fakeDevice{}
	tests := []struct {
		requested SurfaceMode
		device    TextureDevice
		want      SurfaceMode
	}{
		{SurfaceModeAuto, capable, SurfaceModeZeroCopy},
		{SurfaceModeAuto, limited, SurfaceModeCopy},
		{SurfaceModeAuto, nil, SurfaceModeCopy},
		{SurfaceModeZeroCopy, capable, SurfaceModeZeroCopy},
		{SurfaceModeZeroCopy, limited, SurfaceModeCopy},
		{SurfaceModeCopy, capable, SurfaceModeCopy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectSurfaceMode(tt.requested, tt.device), "requested %s", tt.requested)
	}
}
