package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/olivier-w/asciicam/internal/ascii"
	"github.com/olivier-w/asciicam/internal/render"
	"gopkg.in/yaml.v3"
)

// Facing modes for the camera, named after the browser constraint values.
const (
	FacingUser        = "user"
	FacingEnvironment = "environment"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config describes all startup settings.
type Config struct {
	Camera struct {
		Device      string `yaml:"device"`
		FrontDevice string `yaml:"front_device"`
		BackDevice  string `yaml:"back_device"`
		Facing      string `yaml:"facing"`
		Format      string `yaml:"format"`
		Width       int    `yaml:"width"`
		Height      int    `yaml:"height"`
		FPS         int    `yaml:"fps"`
		Loop        bool   `yaml:"loop"`
	} `yaml:"camera"`

	Render struct {
		FontSize   int     `yaml:"font_size"`
		Contrast   float64 `yaml:"contrast"`
		Brightness float64 `yaml:"brightness"`
		Color      bool    `yaml:"color"`
		Invert     bool    `yaml:"invert"`
		Charset    string  `yaml:"charset"`
		Resolution int     `yaml:"resolution"`
	} `yaml:"render"`

	Capture struct {
		Dir           string  `yaml:"dir"`
		VideoFormat   string  `yaml:"video_format"`
		SnapshotScale int     `yaml:"snapshot_scale"`
		RecordFPS     int     `yaml:"record_fps"`
		Shutter       bool    `yaml:"shutter"`
		ShutterWAV    string  `yaml:"shutter_wav"`
		Volume        float64 `yaml:"volume"`
	} `yaml:"capture"`

	UI struct {
		CellPixels int    `yaml:"cell_pixels"`
		ColorMode  string `yaml:"color_mode"`
	} `yaml:"ui"`

	Log struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Camera.Facing = FacingUser
	cfg.Camera.Width = 640
	cfg.Camera.Height = 480
	cfg.Camera.FPS = 30

	s := render.DefaultSettings()
	cfg.Render.FontSize = s.FontSize
	cfg.Render.Contrast = s.Contrast
	cfg.Render.Brightness = s.Brightness
	cfg.Render.Charset = string(s.Charset)
	cfg.Render.Resolution = s.Resolution

	cfg.Capture.Dir = "."
	cfg.Capture.VideoFormat = "webm"
	cfg.Capture.SnapshotScale = render.DefaultSnapshotScale
	cfg.Capture.RecordFPS = 30
	cfg.Capture.Shutter = true
	cfg.Capture.Volume = 0.6

	cfg.UI.CellPixels = 10
	cfg.UI.ColorMode = "auto"

	cfg.Log.Level = "info"
	return cfg
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "asciicam.yaml"
	}
	return filepath.Join(dir, "asciicam", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func (cfg *Config) Save(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks value ranges.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Camera.Width <= 0 || cfg.Camera.Height <= 0:
		return fmt.Errorf("%w: camera size %dx%d", ErrInvalid, cfg.Camera.Width, cfg.Camera.Height)
	case cfg.Camera.FPS <= 0:
		return fmt.Errorf("%w: camera fps %d", ErrInvalid, cfg.Camera.FPS)
	case cfg.Camera.Facing != FacingUser && cfg.Camera.Facing != FacingEnvironment:
		return fmt.Errorf("%w: camera facing %q", ErrInvalid, cfg.Camera.Facing)
	case cfg.Render.FontSize <= 0:
		return fmt.Errorf("%w: font size %d", ErrInvalid, cfg.Render.FontSize)
	case cfg.Render.Contrast < 0:
		return fmt.Errorf("%w: contrast %v", ErrInvalid, cfg.Render.Contrast)
	case cfg.Render.Resolution <= 0 || cfg.Render.Resolution > 100:
		return fmt.Errorf("%w: resolution %d%%", ErrInvalid, cfg.Render.Resolution)
	case cfg.Capture.SnapshotScale <= 0:
		return fmt.Errorf("%w: snapshot scale %d", ErrInvalid, cfg.Capture.SnapshotScale)
	case cfg.Capture.RecordFPS <= 0:
		return fmt.Errorf("%w: record fps %d", ErrInvalid, cfg.Capture.RecordFPS)
	case cfg.Capture.Volume < 0 || cfg.Capture.Volume > 1:
		return fmt.Errorf("%w: volume %v", ErrInvalid, cfg.Capture.Volume)
	case cfg.UI.CellPixels <= 0:
		return fmt.Errorf("%w: cell pixels %d", ErrInvalid, cfg.UI.CellPixels)
	}
	if !ascii.Charset(cfg.Render.Charset).Valid() {
		return fmt.Errorf("%w: %w", ErrInvalid, ascii.ErrUnknownCharset)
	}
	switch cfg.Capture.VideoFormat {
	case "webm", "mp4", "mov", "mkv":
	default:
		return fmt.Errorf("%w: video format %q", ErrInvalid, cfg.Capture.VideoFormat)
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Settings returns the initial render settings.
func (cfg *Config) Settings() render.Settings {
	return render.Settings{
		FontSize:   cfg.Render.FontSize,
		Contrast:   cfg.Render.Contrast,
		Brightness: cfg.Render.Brightness,
		ColorMode:  cfg.Render.Color,
		Invert:     cfg.Render.Invert,
		Charset:    ascii.Charset(cfg.Render.Charset),
		Resolution: cfg.Render.Resolution,
	}
}

// Device returns the capture input for facing. Front and back devices fall
// back to the plain device setting.
func (cfg *Config) Device(facing string) string {
	switch {
	case facing == FacingUser && cfg.Camera.FrontDevice != "":
		return cfg.Camera.FrontDevice
	case facing == FacingEnvironment && cfg.Camera.BackDevice != "":
		return cfg.Camera.BackDevice
	}
	return cfg.Camera.Device
}

// CaptureSize scales the camera size by resolution percent, keeping both
// dimensions even and at least 2.
func CaptureSize(width, height, resolution int) (int, int) {
	scale := func(v int) int {
		v = v * resolution / 100
		v -= v % 2
		return max(v, 2)
	}
	return scale(width), scale(height)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
