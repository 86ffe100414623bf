package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// ErrNoInput is returned when no camera input can be chosen for the platform.
var ErrNoInput = errors.New("no camera input")

// CameraOptions selects and sizes a capture input.
type CameraOptions struct {
	// Input is a device (/dev/video0, "0", "video=Name"), a file, or a URL.
	// Empty picks the platform default camera.
	Input string
	// Format overrides the ffmpeg input format (v4l2, avfoundation, dshow).
	Format string
	Width  int
	Height int
	FPS    int
	// Loop replays file inputs forever.
	Loop bool
}

// Camera decodes an ffmpeg input into RGBA frames, keeping only the latest.
type Camera struct {
	log    *slog.Logger
	width  int
	height int

	cmd    *exec.Cmd
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.RWMutex
	front  *image.RGBA
	back   *image.RGBA
	ready  bool
	frames int64
	err    error
	closed bool
}

// OpenCamera starts capturing. File inputs without an explicit size are
// probed and decoded at their native size.
func OpenCamera(ctx context.Context, opts CameraOptions, logger *slog.Logger) (*Camera, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	if isFileInput(opts.Input) && (opts.Width <= 0 || opts.Height <= 0) {
		p, err := ProbeInput(ctx, opts.Input)
		if err != nil {
			return nil, err
		}
		if !p.HasVideo {
			return nil, fmt.Errorf("no video stream in %s", opts.Input)
		}
		opts.Width, opts.Height = p.Width, p.Height
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 640, 480
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}

	args, err := captureArgs(opts, runtime.GOOS)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("starting ffmpeg capture: %w", err)
	}

	c := newCamera(opts.Width, opts.Height, logger)
	c.cmd = cmd
	c.cancel = cancel
	c.log.Info("camera opened", "input", inputLabel(opts.Input), "width", opts.Width, "height", opts.Height, "fps", opts.FPS)
	go c.readFrames(stdout)
	return c, nil
}

func newCamera(width, height int, logger *slog.Logger) *Camera {
	return &Camera{
		log:    logger.With("component", "camera"),
		width:  width,
		height: height,
		front:  image.NewRGBA(image.Rect(0, 0, width, height)),
		back:   image.NewRGBA(image.Rect(0, 0, width, height)),
		done:   make(chan struct{}),
	}
}

// readFrames fills the back buffer from r and swaps it in after each full frame.
func (c *Camera) readFrames(r io.Reader) {
	defer close(c.done)
	for {
		if _, err := io.ReadFull(r, c.back.Pix); err != nil {
			c.mu.Lock()
			if !c.closed && !errors.Is(err, io.EOF) {
				c.err = fmt.Errorf("reading frame %d: %w", c.frames, err)
				c.log.Warn("capture ended", "error", err)
			}
			c.mu.Unlock()
			return
		}
		c.mu.Lock()
		c.front, c.back = c.back, c.front
		c.ready = true
		c.frames++
		c.mu.Unlock()
	}
}

// ViewFrame calls fn with the latest decoded frame.
// It reports false until the first frame has arrived.
func (c *Camera) ViewFrame(fn func(frame image.Image)) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready {
		return false
	}
	fn(c.front)
	return true
}

// Size returns the decoded frame size.
func (c *Camera) Size() (width, height int) { return c.width, c.height }

// Frames returns the number of frames decoded so far.
func (c *Camera) Frames() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frames
}

// Err returns the error that ended capture, if any.
func (c *Camera) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Done is closed when the capture stream ends.
func (c *Camera) Done() <-chan struct{} { return c.done }

// Close stops ffmpeg and waits for the reader to exit.
func (c *Camera) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	// The reader must drain stdout before Wait closes the pipe.
	<-c.done
	if c.cmd != nil {
		c.cmd.Wait()
	}
	c.log.Info("camera closed", "frames", c.Frames())
	return nil
}

// captureArgs builds the ffmpeg command line for opts on goos.
func captureArgs(opts CameraOptions, goos string) ([]string, error) {
	args := []string{"-v", "quiet"}

	switch {
	case isURL(opts.Input):
		args = append(args, "-i", opts.Input)
	case isFileInput(opts.Input):
		if opts.Loop {
			args = append(args, "-stream_loop", "-1")
		}
		args = append(args, "-re", "-i", opts.Input)
	default:
		format := opts.Format
		input := opts.Input
		switch goos {
		case "linux":
			if format == "" {
				format = "v4l2"
			}
			if input == "" {
				input = "/dev/video0"
			}
		case "darwin":
			if format == "" {
				format = "avfoundation"
			}
			if input == "" {
				input = "0"
			}
		case "windows":
			if format == "" {
				format = "dshow"
			}
			if input == "" {
				return nil, fmt.Errorf("%w: set camera.device to video=<name> on windows", ErrNoInput)
			}
			if !strings.HasPrefix(input, "video=") {
				input = "video=" + input
			}
		default:
			if format == "" || input == "" {
				return nil, fmt.Errorf("%w: unsupported platform %s", ErrNoInput, goos)
			}
		}
		args = append(args,
			"-f", format,
			"-framerate", strconv.Itoa(opts.FPS),
			"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
			"-i", input,
		)
	}

	args = append(args,
		"-an",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-vf", fmt.Sprintf("scale=%d:%d,fps=%d", opts.Width, opts.Height, opts.FPS),
		"pipe:1",
	)
	return args, nil
}

func isURL(s string) bool {
	return strings.Contains(s, "://")
}

// isFileInput reports whether s names a regular file rather than a device.
func isFileInput(s string) bool {
	if s == "" || isURL(s) {
		return false
	}
	info, err := os.Stat(s)
	return err == nil && info.Mode().IsRegular()
}

func inputLabel(s string) string {
	if s == "" {
		return "default"
	}
	return s
}
