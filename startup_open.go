package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/olivier-w/asciicam/internal/config"
	"github.com/olivier-w/asciicam/internal/export"
	"github.com/olivier-w/asciicam/internal/media"
	"github.com/olivier-w/asciicam/internal/render"
	"github.com/olivier-w/asciicam/internal/shutter"
	"github.com/olivier-w/asciicam/internal/video"
)

var (
	errNoSecondCamera = errors.New("no other camera configured (set camera.front_device and camera.back_device)")
	errNotRecording   = errors.New("not recording")
	errRecording      = errors.New("already recording")
)

// session owns the capture pipeline: frame source, render loop, recorder and shutter.
type session struct {
	ctx     context.Context
	cfg     *config.Config
	input   string
	log     *slog.Logger
	loop    *render.Loop
	shutter *shutter.Shutter
	stats   chan render.ProcessingStats

	mu       sync.Mutex
	camera   *video.Camera
	facing   string
	recorder *video.Recorder
}

// openSession opens the input and starts the render loop. input overrides
// the configured device.
func openSession(ctx context.Context, cfg *config.Config, input string, logger *slog.Logger) (*session, error) {
	s := &session{
		ctx:    ctx,
		cfg:    cfg,
		input:  input,
		log:    logger,
		facing: cfg.Camera.Facing,
		stats:  make(chan render.ProcessingStats, 4),
	}

	loop, err := render.NewLoop(cfg.Settings(), render.LoopOptions{
		Logger:  logger,
		OnStats: s.publishStats,
	})
	if err != nil {
		return nil, err
	}
	s.loop = loop

	src, cam, err := openSource(ctx, cfg, input, s.facing, logger)
	if err != nil {
		return nil, err
	}
	s.camera = cam
	if err := loop.Start(ctx, src); err != nil {
		s.closeCamera()
		return nil, err
	}

	if cfg.Capture.Shutter {
		sh, err := shutter.New(cfg.Capture.ShutterWAV, cfg.Capture.Volume)
		if err != nil {
			logger.Warn("shutter sound disabled", "error", err)
		} else {
			s.shutter = sh
		}
	}
	return s, nil
}

// openSource opens a still image or starts an ffmpeg capture.
func openSource(ctx context.Context, cfg *config.Config, input, facing string, logger *slog.Logger) (render.FrameSource, *video.Camera, error) {
	if input == "" {
		input = cfg.Device(facing)
	}
	if media.Classify(input) == media.KindImage {
		still, err := video.OpenStill(input)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("still image opened", "path", input)
		return still, nil, nil
	}

	w, h := config.CaptureSize(cfg.Camera.Width, cfg.Camera.Height, cfg.Render.Resolution)
	opts := video.CameraOptions{
		Input:  input,
		Format: cfg.Camera.Format,
		Width:  w,
		Height: h,
		FPS:    cfg.Camera.FPS,
		Loop:   cfg.Camera.Loop,
	}
	if media.Classify(input) == media.KindVideo {
		// Decode files at their native size.
		opts.Width, opts.Height = 0, 0
	}
	cam, err := video.OpenCamera(ctx, opts, logger)
	if err != nil {
		return nil, nil, err
	}
	return cam, cam, nil
}

func (s *session) publishStats(st render.ProcessingStats) {
	select {
	case s.stats <- st:
	default:
	}
}

func (s *session) Loop() *render.Loop { return s.loop }

func (s *session) Snapshot() (string, error) {
	data, err := s.loop.CaptureStillAt(s.cfg.Capture.SnapshotScale)
	if err != nil {
		return "", err
	}
	path, err := export.WritePNG(s.cfg.Capture.Dir, time.Now(), data)
	if err != nil {
		return "", err
	}
	if s.shutter != nil {
		s.shutter.Play()
	}
	s.log.Info("snapshot saved", "path", path, "bytes", len(data))
	return path, nil
}

func (s *session) SaveText() (string, error) {
	var g render.Grid
	s.loop.CopyGrid(&g)
	path, err := export.WriteText(s.cfg.Capture.Dir, time.Now(), g.Text())
	if err != nil {
		return "", err
	}
	s.log.Info("text saved", "path", path, "cols", g.Cols, "rows", g.Rows)
	return path, nil
}

func (s *session) StartRecording() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorder != nil {
		return "", errRecording
	}
	path := export.Path(s.cfg.Capture.Dir, time.Now(), s.cfg.Capture.VideoFormat)
	rec, err := video.StartRecording(s.ctx, s.loop, path, s.cfg.Capture.RecordFPS, s.log)
	if err != nil {
		return "", err
	}
	s.recorder = rec
	return path, nil
}

func (s *session) StopRecording() (string, int64, error) {
	s.mu.Lock()
	rec := s.recorder
	s.recorder = nil
	s.mu.Unlock()
	if rec == nil {
		return "", 0, errNotRecording
	}
	frames, err := rec.Stop()
	return rec.Path(), frames, err
}

// SwitchFacing reopens the camera with the other facing mode.
func (s *session) SwitchFacing() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorder != nil {
		return "", errRecording
	}

	next := config.FacingEnvironment
	if s.facing == config.FacingEnvironment {
		next = config.FacingUser
	}
	if s.input != "" || s.cfg.Device(next) == s.cfg.Device(s.facing) {
		return "", errNoSecondCamera
	}

	s.loop.Stop()
	s.closeCamera()
	src, cam, err := openSource(s.ctx, s.cfg, "", next, s.log)
	if err != nil {
		// Fall back to the camera we had.
		if src, cam, err2 := openSource(s.ctx, s.cfg, "", s.facing, s.log); err2 == nil {
			s.camera = cam
			s.loop.Start(s.ctx, src)
		}
		return "", fmt.Errorf("opening %s camera: %w", next, err)
	}
	s.camera = cam
	s.facing = next
	if err := s.loop.Start(s.ctx, src); err != nil {
		return "", err
	}
	s.log.Info("camera switched", "facing", next)
	return next, nil
}

func (s *session) closeCamera() {
	if s.camera != nil {
		s.camera.Close()
		s.camera = nil
	}
}

func (s *session) Close() error {
	s.mu.Lock()
	rec := s.recorder
	s.recorder = nil
	s.mu.Unlock()
	if rec != nil {
		if _, err := rec.Stop(); err != nil {
			s.log.Warn("recording ended with error", "error", err)
		}
	}

	s.loop.Stop()
	s.mu.Lock()
	s.closeCamera()
	s.mu.Unlock()
	return nil
}
