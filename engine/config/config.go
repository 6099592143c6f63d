// Package config holds the viewer settings read from a TOML file. Command-line flags are
// applied on top of a loaded Config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-dream/engine/batch"
	"github.com/Carmen-Shannon/oxy-dream/engine/camera"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is returned for a configuration that fails validation.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete viewer configuration.
type Config struct {
	Window WindowConfig `toml:"window"`
	Engine EngineConfig `toml:"engine"`
	Camera CameraConfig `toml:"camera"`
	Batch  BatchConfig  `toml:"batch"`
	Source SourceConfig `toml:"source"`
	Log    LogConfig    `toml:"log"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
	// MSAA is the sample count, 1 or 4.
	MSAA int `toml:"msaa"`
}

type EngineConfig struct {
	// TickRate is the frame loop rate in frames per second.
	TickRate float64 `toml:"tick_rate"`
	// FrameLimit stops the viewer after this many frames. Zero runs until the window closes.
	FrameLimit uint64 `toml:"frame_limit"`
	Profiling  bool   `toml:"profiling"`
	// Workers sizes the animation worker pool. Zero picks one less than the CPU count.
	Workers int `toml:"workers"`
}

type CameraConfig struct {
	// Fov is the vertical field of view in degrees.
	Fov     float32    `toml:"fov"`
	Near    float32    `toml:"near"`
	Far     float32    `toml:"far"`
	Damping float32    `toml:"damping"`
	Target  [3]float32 `toml:"target"`
}

type BatchConfig struct {
	Capacity int `toml:"capacity"`
}

type SourceConfig struct {
	// Watch reloads the description file when it changes.
	Watch bool `toml:"watch"`
	// Listen is the websocket push address. Empty disables push.
	Listen string `toml:"listen"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Format is text or json.
	Format string `toml:"format"`
}

// Default returns the documented defaults.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "dreamview",
			Width:  1280,
			Height: 720,
			VSync:  true,
			MSAA:   4,
		},
		Engine: EngineConfig{
			TickRate: 60,
		},
		Camera: CameraConfig{
			Fov:     camera.DefaultFovDegrees,
			Near:    camera.DefaultNear,
			Far:     camera.DefaultFar,
			Damping: camera.DefaultDamping,
			Target:  camera.DefaultTarget,
		},
		Batch: BatchConfig{
			Capacity: batch.DefaultCapacity,
		},
		Source: SourceConfig{
			Watch: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults. Unknown keys are
// rejected so a misspelt setting does not go unnoticed.
//
// Parameters:
//   - path: the TOML file, or "" for defaults only
//
// Returns:
//   - *Config: the loaded and validated configuration
//   - error: a read or parse error, or an ErrInvalid-wrapped validation error
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			return fmt.Errorf("%w: %s", ErrInvalid, strings.TrimSpace(serr.String()))
		}
		return err
	}
	return nil
}

// Validate reports every out-of-range setting.
//
// Returns:
//   - error: nil, or the joined ErrInvalid-wrapped problems
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.MSAA != 1 && c.Window.MSAA != 4 {
		bad("window.msaa %d must be 1 or 4", c.Window.MSAA)
	}
	if c.Engine.TickRate <= 0 {
		bad("engine.tick_rate %v must be positive", c.Engine.TickRate)
	}
	if c.Engine.Workers < 0 {
		bad("engine.workers %d must not be negative", c.Engine.Workers)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		bad("camera.fov %v must be in (0, 180)", c.Camera.Fov)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		bad("camera near %v and far %v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.Damping <= 0 || c.Camera.Damping > 1 {
		bad("camera.damping %v must be in (0, 1]", c.Camera.Damping)
	}
	if c.Batch.Capacity <= 0 {
		bad("batch.capacity %d must be positive", c.Batch.Capacity)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		bad("log.format %q must be text or json", f)
	}
	return errors.Join(errs...)
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Logger builds the slog logger described by the log section.
//
// Parameters:
//   - w: where records are written
//
// Returns:
//   - *slog.Logger: the logger
//   - error: an ErrInvalid-wrapped error for an unknown level
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, s)
	}
	return level, nil
}
