package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alexflint/go-arg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/asciicam/internal/config"
	"github.com/olivier-w/asciicam/internal/export"
	"github.com/olivier-w/asciicam/internal/render"
	"github.com/olivier-w/asciicam/internal/term"
	"github.com/olivier-w/asciicam/internal/video"
)

const version = "0.3.0"

type snapCmd struct {
	Out    string `arg:"-o,--out" help:"output PNG path (default: a timestamped file in the capture dir)"`
	Width  int    `arg:"--width" default:"800" help:"viewport width in pixels"`
	Height int    `arg:"--height" default:"600" help:"viewport height in pixels"`
	Scale  int    `arg:"--scale" help:"snapshot scale (default from config)"`
	Text   bool   `arg:"--text" help:"also write the character grid as a .txt file"`
	Wait   int    `arg:"--wait" default:"10" help:"seconds to wait for the first camera frame"`
}

type args struct {
	Snap *snapCmd `arg:"subcommand:snap" help:"render a single frame to PNG and exit"`

	Config   string  `arg:"-c,--config" env:"ASCIICAM_CONFIG" help:"config file path"`
	Input    string  `arg:"-i,--input" env:"ASCIICAM_INPUT" help:"camera device, video file, URL or image"`
	Facing   string  `arg:"--facing" env:"ASCIICAM_FACING" help:"user or environment"`
	Charset  string  `arg:"--charset" env:"ASCIICAM_CHARSET" help:"standard, simple, blocks, matrix or edges"`
	FontSize int     `arg:"--font-size" env:"ASCIICAM_FONT_SIZE" help:"glyph cell size in pixels"`
	Contrast float64 `arg:"--contrast" env:"ASCIICAM_CONTRAST" help:"contrast multiplier"`
	Color    bool    `arg:"--color" env:"ASCIICAM_COLOR" help:"use the camera colors"`
	Invert   bool    `arg:"--invert" env:"ASCIICAM_INVERT" help:"invert the brightness mapping"`
	Dir      string  `arg:"-d,--dir" env:"ASCIICAM_DIR" help:"capture directory"`
	LogFile  string  `arg:"--log" env:"ASCIICAM_LOG" help:"log file path"`
	Verbose  bool    `arg:"-v,--verbose" help:"debug logging"`
}

func (args) Version() string { return "asciicam " + version }

func (args) Description() string {
	return "asciicam renders a live camera feed as character art in the terminal."
}

func main() {
	var a args
	arg.MustParse(&a)

	if a.Config == "" {
		a.Config = config.DefaultPath()
	}
	cfg, err := config.Load(a.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := applyArgs(cfg, &a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if a.Snap != nil {
		logger := newLogger(os.Stderr, cfg.Log.Level)
		path, err := runSnap(ctx, cfg, a.Input, a.Snap, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(path)
		return
	}

	logFile, err := openLogFile(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := newLogger(logFile, cfg.Log.Level)
	slog.SetDefault(logger)

	colorMode, err := term.ParseMode(cfg.UI.ColorMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	model := newStartupModel(cfg, colorMode, openSessionFunc(ctx, cfg, a.Input, logger))
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyArgs layers command line flags over the loaded config.
func applyArgs(cfg *config.Config, a *args) error {
	if a.Facing != "" {
		cfg.Camera.Facing = a.Facing
	}
	if a.Charset != "" {
		cfg.Render.Charset = a.Charset
	}
	if a.FontSize != 0 {
		cfg.Render.FontSize = a.FontSize
	}
	if a.Contrast != 0 {
		cfg.Render.Contrast = a.Contrast
	}
	if a.Color {
		cfg.Render.Color = true
	}
	if a.Invert {
		cfg.Render.Invert = true
	}
	if a.Dir != "" {
		cfg.Capture.Dir = a.Dir
	}
	if a.LogFile != "" {
		cfg.Log.File = a.LogFile
	}
	if a.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg.Validate()
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, _ := config.ParseLevel(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// openLogFile opens path for appending. The TUI owns stdout, so logs always go to a file.
func openLogFile(path string) (*os.File, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), "asciicam.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// runSnap renders one frame from input and writes it as PNG.
func runSnap(ctx context.Context, cfg *config.Config, input string, c *snapCmd, logger *slog.Logger) (string, error) {
	scale := c.Scale
	if scale <= 0 {
		scale = cfg.Capture.SnapshotScale
	}

	src, cam, err := openSource(ctx, cfg, input, cfg.Camera.Facing, logger)
	if err != nil {
		return "", err
	}
	if cam != nil {
		defer cam.Close()
		if err := waitForFrame(ctx, cam, time.Duration(c.Wait)*time.Second); err != nil {
			return "", err
		}
	}

	loop, err := render.NewLoop(cfg.Settings(), render.LoopOptions{Logger: logger})
	if err != nil {
		return "", err
	}
	if err := loop.Attach(src); err != nil {
		return "", err
	}
	loop.SetViewport(c.Width, c.Height)
	loop.Tick(time.Now())

	data, err := loop.CaptureStillAt(scale)
	if err != nil {
		return "", err
	}

	now := time.Now()
	path := c.Out
	if path == "" {
		path, err = export.WritePNG(cfg.Capture.Dir, now, data)
	} else {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		return "", err
	}

	if c.Text {
		var g render.Grid
		loop.CopyGrid(&g)
		txt, err := export.WriteText(filepath.Dir(path), now, g.Text())
		if err != nil {
			return "", err
		}
		logger.Info("text written", "path", txt)
	}
	logger.Info("snapshot written", "path", path, "bytes", len(data))
	return path, nil
}

// waitForFrame blocks until cam has a frame, the stream ends, or timeout.
func waitForFrame(ctx context.Context, cam *video.Camera, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		if cam.Frames() > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for first frame: %w", render.ErrNotReady)
		case <-cam.Done():
			if err := cam.Err(); err != nil {
				return err
			}
			return fmt.Errorf("capture ended before the first frame: %w", render.ErrNotReady)
		case <-ticker.C:
		}
	}
}
