package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olivier-w/asciicam/internal/ascii"
)

// State is the render loop lifecycle state.
type State uint8

const (
	StateIdle    State = iota // no source attached
	StatePriming              // source attached, no frame drawn yet
	StateRunning              // drawing every tick
	StateStopped              // torn down
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePriming:
		return "priming"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// ProcessingStats is the periodic performance report.
type ProcessingStats struct {
	FPS        float64
	RenderTime time.Duration
}

// StatsFunc receives throttled stats. It runs on the loop goroutine and must not block.
type StatsFunc func(ProcessingStats)

const (
	// StatsEvery is the number of drawn frames between stats reports.
	StatsEvery = 20
	// DefaultInterval matches a 60 Hz display refresh.
	DefaultInterval = time.Second / 60
)

// ErrLoopActive is returned when attaching a source to a loop that already has one.
var ErrLoopActive = errors.New("render loop already active")

// LoopOptions configures a Loop. Zero values pick defaults.
type LoopOptions struct {
	Interval time.Duration
	OnStats  StatsFunc
	Logger   *slog.Logger
	Maps     *ascii.MapCache
}

// Loop renders frames from a source onto a visible surface on every tick.
type Loop struct {
	interval time.Duration
	onStats  StatsFunc
	log      *slog.Logger
	maps     *ascii.MapCache

	settings atomic.Pointer[Settings]
	viewport atomic.Uint64 // width<<32 | height

	// Owned by the tick goroutine.
	sampler *Sampler
	atlas   *GlyphAtlas
	last    time.Time
	drawn   atomic.Uint64
	skipped atomic.Uint64

	mu      sync.RWMutex
	src     FrameSource
	state   State
	task    *Task
	surface *Surface
	grid    Grid
}

// NewLoop returns an idle loop. s must be valid.
func NewLoop(s Settings, opts LoopOptions) (*Loop, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Maps == nil {
		opts.Maps = ascii.NewMapCache()
	}

	l := &Loop{
		interval: opts.Interval,
		onStats:  opts.OnStats,
		log:      opts.Logger.With("component", "render"),
		maps:     opts.Maps,
		sampler:  NewSampler(),
		surface:  NewSurface(0, 0),
	}
	l.settings.Store(&s)
	return l, nil
}

// Settings returns the current settings snapshot.
func (l *Loop) Settings() Settings { return *l.settings.Load() }

// SetSettings replaces the settings used from the next tick on.
// Invalid settings are rejected and the previous snapshot stays active.
func (l *Loop) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	l.settings.Store(&s)
	return nil
}

// SetViewport sets the display size in pixels.
func (l *Loop) SetViewport(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	l.viewport.Store(uint64(uint32(width))<<32 | uint64(uint32(height)))
}

// Viewport returns the display size in pixels.
func (l *Loop) Viewport() (width, height int) {
	v := l.viewport.Load()
	return int(v >> 32), int(uint32(v))
}

// State returns the lifecycle state.
func (l *Loop) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Attach binds a frame source without scheduling ticks.
// Use Tick to drive the loop manually, or Start to schedule it.
func (l *Loop) Attach(src FrameSource) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StatePriming || l.state == StateRunning {
		return ErrLoopActive
	}
	l.src = src
	l.state = StatePriming
	l.last = time.Time{}
	return nil
}

// Start attaches src and ticks every interval until Stop or ctx ends.
func (l *Loop) Start(ctx context.Context, src FrameSource) error {
	if err := l.Attach(src); err != nil {
		return err
	}
	task := Repeat(ctx, l.interval, l.Tick)

	l.mu.Lock()
	l.task = task
	l.mu.Unlock()
	l.log.Info("render loop started", "interval", l.interval)
	return nil
}

// Stop cancels the pending tick and detaches the source.
// When Stop returns no tick is running or will run.
func (l *Loop) Stop() {
	l.mu.Lock()
	task := l.task
	l.task = nil
	l.mu.Unlock()

	if task != nil {
		task.Cancel()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateIdle || l.state == StateStopped {
		return
	}
	l.src = nil
	l.state = StateStopped
	l.log.Info("render loop stopped", "drawn", l.drawn.Load(), "skipped", l.skipped.Load())
}

// Tick renders one frame. Failures skip the frame and are retried next tick.
func (l *Loop) Tick(now time.Time) {
	start := time.Now()

	var fps float64
	hasFPS := !l.last.IsZero()
	if hasFPS {
		if elapsed := now.Sub(l.last); elapsed > 0 {
			fps = float64(time.Second) / float64(elapsed)
		} else {
			hasFPS = false
		}
	}
	l.last = now

	l.mu.RLock()
	src := l.src
	l.mu.RUnlock()
	if src == nil {
		return
	}

	s := l.Settings()
	w, h := l.Viewport()
	cols, rows := GridSize(w, h, s.FontSize)
	if cols <= 0 || rows <= 0 {
		l.skip("empty grid", nil)
		return
	}

	samples, err := l.sampler.Sample(src, cols, rows)
	if err != nil {
		l.skip("sample", err)
		return
	}

	m, err := l.maps.Get(s.Charset)
	if err != nil {
		l.skip("brightness map", err)
		return
	}

	if l.atlas == nil || l.atlas.Size() != s.FontSize {
		atlas, err := NewGlyphAtlas(s.FontSize)
		if err != nil {
			l.skip("glyph atlas", err)
			return
		}
		if l.atlas != nil {
			l.atlas.Close()
		}
		l.atlas = atlas
	}

	l.mu.Lock()
	l.surface.Resize(cols*s.FontSize, rows*s.FontSize)
	paintGrid(l.surface, l.atlas, samples, s.FontSize, s, m, &l.grid)
	if l.state == StatePriming {
		l.state = StateRunning
	}
	l.mu.Unlock()

	drawn := l.drawn.Add(1)
	if hasFPS && l.onStats != nil && drawn%StatsEvery == 0 {
		l.onStats(ProcessingStats{FPS: fps, RenderTime: time.Since(start)})
	}
}

func (l *Loop) skip(reason string, err error) {
	l.skipped.Add(1)
	if err != nil && !errors.Is(err, ErrNotReady) {
		l.log.Debug("frame skipped", "reason", reason, "error", err)
	}
}

// ReadSurface calls fn with the visible surface. fn must not retain img.
// The surface always holds a complete frame.
func (l *Loop) ReadSurface(fn func(img *image.RGBA)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn(l.surface.Image())
}

// CopyGrid copies the last frame's character grid into dst.
func (l *Loop) CopyGrid(dst *Grid) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.grid.CopyTo(dst)
}

// CaptureStill renders the current frame at DefaultSnapshotScale as PNG.
// It uses its own buffers and may run while the loop is ticking.
func (l *Loop) CaptureStill() ([]byte, error) {
	return l.CaptureStillAt(DefaultSnapshotScale)
}

// CaptureStillAt is CaptureStill with an explicit scale.
func (l *Loop) CaptureStillAt(scale int) ([]byte, error) {
	l.mu.RLock()
	src := l.src
	l.mu.RUnlock()

	w, h := l.Viewport()
	return Snapshot(src, l.Settings(), w, h, scale, l.maps)
}

// Frames returns the number of drawn and skipped ticks.
func (l *Loop) Frames() (drawn, skipped uint64) {
	return l.drawn.Load(), l.skipped.Load()
}
