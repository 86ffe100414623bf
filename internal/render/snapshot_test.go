package render

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/olivier-w/asciicam/internal/ascii"
)

func TestSnapshotScalesSurface(t *testing.T) {
	src := newStaticSource(gradientFrame(160, 90))
	img, err := SnapshotImage(src, DefaultSettings(), 200, 100, DefaultSnapshotScale, nil)
	if err != nil {
		t.Fatalf("SnapshotImage() error = %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 800, 400) {
		t.Fatalf("snapshot bounds = %v, want 800x400", got)
	}
}

func TestSnapshotMatchesLiveGrid(t *testing.T) {
	frame := flatFrame(160, 90, midGray)
	s := scenarioSettings()

	l := newTestLoop(t, s, nil)
	l.SetViewport(100, 50)
	l.Attach(newStaticSource(frame))
	l.Tick(time.Unix(0, 0))

	img, err := SnapshotImage(newStaticSource(frame), s, 100, 50, 4, nil)
	if err != nil {
		t.Fatalf("SnapshotImage() error = %v", err)
	}

	var g Grid
	l.CopyGrid(&g)
	cell := s.FontSize * 4
	if img.Bounds().Dx()/cell != g.Cols || img.Bounds().Dy()/cell != g.Rows {
		t.Fatalf("snapshot grid = %dx%d, want %dx%d", img.Bounds().Dx()/cell, img.Bounds().Dy()/cell, g.Cols, g.Rows)
	}

	// Every cell should carry the same ink as the first one.
	first := img.SubImage(image.Rect(0, 0, cell, cell)).(*image.RGBA)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			c := img.SubImage(image.Rect(col*cell, row*cell, (col+1)*cell, (row+1)*cell)).(*image.RGBA)
			for y := 0; y < cell; y++ {
				a := first.Pix[y*first.Stride : y*first.Stride+cell*4]
				b := c.Pix[y*c.Stride : y*c.Stride+cell*4]
				if !bytes.Equal(a, b) {
					t.Fatalf("cell %d,%d differs from cell 0,0", col, row)
				}
			}
		}
	}
}

func TestSnapshotLeavesLiveSurfaceAlone(t *testing.T) {
	src := newStaticSource(gradientFrame(64, 64))
	l := newTestLoop(t, DefaultSettings(), nil)
	l.SetViewport(100, 100)
	l.Attach(src)
	l.Tick(time.Unix(0, 0))

	var before []byte
	l.ReadSurface(func(img *image.RGBA) { before = append(before, img.Pix...) })

	data, err := l.CaptureStill()
	if err != nil {
		t.Fatalf("CaptureStill() error = %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding capture: %v", err)
	}
	if got := decoded.Bounds(); got != image.Rect(0, 0, 400, 400) {
		t.Fatalf("capture bounds = %v, want 400x400", got)
	}

	l.ReadSurface(func(img *image.RGBA) {
		if img.Bounds() != image.Rect(0, 0, 100, 100) {
			t.Fatalf("live surface resized to %v", img.Bounds())
		}
		if !bytes.Equal(before, img.Pix) {
			t.Fatal("live surface changed by snapshot")
		}
	})
}

func TestSnapshotErrors(t *testing.T) {
	ready := newStaticSource(flatFrame(16, 16, midGray))
	notReady := newStaticSource(flatFrame(16, 16, midGray))
	notReady.setReady(false)

	tests := []struct {
		name   string
		src    FrameSource
		s      Settings
		w, h   int
		scale  int
		target error
	}{
		{"nil source", nil, DefaultSettings(), 100, 100, 4, ErrNotReady},
		{"not ready", notReady, DefaultSettings(), 100, 100, 4, ErrNotReady},
		{"zero viewport", ready, DefaultSettings(), 0, 100, 4, ErrInvalidDimensions},
		{"zero scale", ready, DefaultSettings(), 100, 100, 0, ErrInvalidDimensions},
		{"font larger than viewport", ready, DefaultSettings().WithFontSize(40), 30, 30, 4, ErrInvalidDimensions},
		{"unknown charset", ready, DefaultSettings().WithCharset("nope"), 100, 100, 4, ascii.ErrUnknownCharset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Snapshot(tt.src, tt.s, tt.w, tt.h, tt.scale, nil)
			if !errors.Is(err, tt.target) {
				t.Fatalf("Snapshot() error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestLoopCaptureWithoutSource(t *testing.T) {
	l := newTestLoop(t, DefaultSettings(), nil)
	l.SetViewport(100, 100)
	if _, err := l.CaptureStill(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("CaptureStill() error = %v, want ErrNotReady", err)
	}
}

func TestSnapshotIsExactMultipleOfLiveSurface(t *testing.T) {
	src := newStaticSource(gradientFrame(64, 64))
	l := newTestLoop(t, DefaultSettings().WithFontSize(10), nil)
	l.SetViewport(105, 53)
	l.Attach(src)
	l.Tick(time.Unix(0, 0))

	var live image.Rectangle
	l.ReadSurface(func(img *image.RGBA) { live = img.Bounds() })
	if live != image.Rect(0, 0, 100, 50) {
		t.Fatalf("live surface = %v, want 100x50", live)
	}

	data, err := l.CaptureStill()
	if err != nil {
		t.Fatalf("CaptureStill() error = %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding capture: %v", err)
	}
	if cfg.Width != live.Dx()*DefaultSnapshotScale || cfg.Height != live.Dy()*DefaultSnapshotScale {
		t.Fatalf("capture = %dx%d, want %dx%d", cfg.Width, cfg.Height, live.Dx()*DefaultSnapshotScale, live.Dy()*DefaultSnapshotScale)
	}
}

func TestCaptureWhileLoopRuns(t *testing.T) {
	l := newTestLoop(t, DefaultSettings(), nil)
	l.SetViewport(120, 80)
	if err := l.Start(t.Context(), newStaticSource(gradientFrame(64, 64))); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer l.Stop()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < 10; n++ {
				data, err := l.CaptureStillAt(2)
				if err != nil && !errors.Is(err, ErrNotReady) {
					errs <- err
					return
				}
				if err == nil {
					if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
						errs <- err
						return
					}
				}
				size := 8 + (i+n)%4*2
				if err := l.SetSettings(l.Settings().WithFontSize(size)); err != nil {
					errs <- err
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent capture: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if drawn, _ := l.Frames(); drawn > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("loop drew no frames while captures ran")
		}
		time.Sleep(time.Millisecond)
	}
	l.ReadSurface(func(img *image.RGBA) {
		if img.Bounds().Empty() {
			t.Fatal("live surface is empty after concurrent captures")
		}
	})
}
