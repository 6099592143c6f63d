package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dreamview.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1024, cfg.Batch.Capacity)
	assert.Equal(t, float32(60), cfg.Camera.Fov)
	assert.Equal(t, [3]float32{0, 1, 0}, cfg.Camera.Target)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[window]
title = "forest"
width = 800

[engine]
tick_rate = 30
frame_limit = 120

[camera]
target = [0, 2, 0]

[source]
listen = "127.0.0.1:9000"

[log]
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "forest", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep their default")
	assert.Equal(t, 30.0, cfg.Engine.TickRate)
	assert.Equal(t, uint64(120), cfg.Engine.FrameLimit)
	assert.Equal(t, [3]float32{0, 2, 0}, cfg.Camera.Target)
	assert.Equal(t, "127.0.0.1:9000", cfg.Source.Listen)
	assert.True(t, cfg.Source.Watch)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{"syntax", "[window\nwidth = 1", false},
		{"unknown key", "[window]\nwidht = 10\n", true},
		{"out of range", "[batch]\ncapacity = 0\n", true},
		{"bad level", "[log]\nlevel = \"loud\"\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalid))
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Window.MSAA = 2
	cfg.Camera.Near = 10
	cfg.Camera.Far = 1
	cfg.Engine.TickRate = 0

	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorContains(t, err, "window.msaa")
	assert.ErrorContains(t, err, "near")
	assert.ErrorContains(t, err, "tick_rate")
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Window.Title = "round trip"
	data, err := cfg.Marshal()
	require.NoError(t, err)

	loaded, err := Load(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"
	logger, err := cfg.Logger(&buf)
	require.NoError(t, err)

	logger.Info("[Test] hidden")
	logger.Warn("[Test] shown", "n", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"[Test] shown"`)
}
