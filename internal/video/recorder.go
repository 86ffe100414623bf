package video

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olivier-w/asciicam/internal/render"
	"golang.org/x/image/draw"
)

var (
	// ErrNoEncoder means ffmpeg offers none of the candidate encoders.
	ErrNoEncoder = errors.New("no supported video encoder")
	// ErrEmptySurface means there is nothing on screen to record yet.
	ErrEmptySurface = errors.New("surface is empty")
)

// SurfaceReader exposes the visible surface to the encoder.
type SurfaceReader interface {
	ReadSurface(fn func(img *image.RGBA))
}

// Encoder preference per container, most preferred first.
var encoderCandidates = map[string][]string{
	".webm": {"libvpx-vp9", "libvpx"},
	".mp4":  {"libx264", "h264_videotoolbox", "mpeg4"},
	".mov":  {"libx264", "h264_videotoolbox", "mpeg4"},
	".mkv":  {"libvpx-vp9", "libx264", "mpeg4"},
}

var defaultEncoders = []string{"libvpx-vp9", "libvpx", "libx264", "mpeg4"}

// pickEncoder returns the first candidate for path's container that ffmpeg has.
func pickEncoder(path string, available map[string]bool) (string, error) {
	candidates, ok := encoderCandidates[strings.ToLower(filepath.Ext(path))]
	if !ok {
		candidates = defaultEncoders
	}
	for _, name := range candidates {
		if available[name] {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w for %s (tried %s)", ErrNoEncoder, filepath.Ext(path), strings.Join(candidates, ", "))
}

// parseEncoders reads `ffmpeg -encoders` output, keeping video encoders.
func parseEncoders(r io.Reader) map[string]bool {
	out := make(map[string]bool)
	sc := bufio.NewScanner(r)
	started := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !started {
			started = strings.HasPrefix(line, "------")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "V") {
			continue
		}
		out[fields[1]] = true
	}
	return out
}

func availableEncoders(ctx context.Context, ffmpeg string) (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, ffmpeg, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, fmt.Errorf("listing ffmpeg encoders: %w", err)
	}
	return parseEncoders(strings.NewReader(string(out))), nil
}

func encodeArgs(encoder string, width, height, fps int, path string) []string {
	args := []string{
		"-y", "-v", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", strconv.Itoa(fps),
		"-i", "pipe:0",
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-c:v", encoder,
	}
	switch encoder {
	case "libx264":
		args = append(args, "-preset", "ultrafast", "-crf", "23")
	case "libvpx-vp9", "libvpx":
		args = append(args, "-deadline", "realtime", "-b:v", "2M")
	}
	return append(args, "-pix_fmt", "yuv420p", path)
}

// Recorder streams the visible surface into an ffmpeg encoder at a fixed rate.
type Recorder struct {
	path    string
	log     *slog.Logger
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	task    *render.Task
	frame   *image.RGBA
	written int64

	mu  sync.Mutex
	err error
}

// StartRecording begins encoding surf to path. The output size is fixed by
// the surface size at start; later frames of another size are rescaled.
func StartRecording(ctx context.Context, surf SurfaceReader, path string, fps int, logger *slog.Logger) (*Recorder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if fps <= 0 {
		fps = 30
	}

	var bounds image.Rectangle
	surf.ReadSurface(func(img *image.RGBA) { bounds = img.Bounds() })
	if bounds.Empty() {
		return nil, ErrEmptySurface
	}

	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	available, err := availableEncoders(ctx, ffmpeg)
	if err != nil {
		return nil, err
	}
	encoder, err := pickEncoder(path, available)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(ffmpeg, encodeArgs(encoder, bounds.Dx(), bounds.Dy(), fps, path)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg encoder: %w", err)
	}

	r := &Recorder{
		path:  path,
		log:   logger.With("component", "recorder"),
		cmd:   cmd,
		stdin: stdin,
		frame: image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy())),
	}
	r.log.Info("recording started", "path", path, "encoder", encoder, "size", bounds.Size(), "fps", fps)
	r.task = render.Repeat(ctx, time.Second/time.Duration(fps), func(time.Time) {
		r.writeFrame(surf, stdin)
	})
	return r, nil
}

func (r *Recorder) writeFrame(surf SurfaceReader, w io.Writer) {
	if r.failed() {
		return
	}
	surf.ReadSurface(func(img *image.RGBA) {
		fitFrame(r.frame, img)
	})
	if _, err := w.Write(r.frame.Pix); err != nil {
		r.mu.Lock()
		r.err = fmt.Errorf("writing frame %d: %w", r.written, err)
		r.mu.Unlock()
		r.log.Error("encoder write failed", "error", err)
		return
	}
	r.written++
}

func (r *Recorder) failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err != nil
}

// fitFrame copies src into dst, rescaling when the sizes differ.
func fitFrame(dst, src *image.RGBA) {
	if src.Bounds().Empty() {
		return
	}
	if src.Rect.Size() == dst.Rect.Size() && src.Stride == dst.Stride {
		copy(dst.Pix, src.Pix[src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y):])
		return
	}
	draw.NearestNeighbor.Scale(dst, dst.Rect, src, src.Bounds(), draw.Src, nil)
}

// Path returns the output file.
func (r *Recorder) Path() string { return r.path }

// Stop ends the frame pump, flushes the encoder and waits for it to exit.
func (r *Recorder) Stop() (frames int64, err error) {
	r.task.Cancel()
	r.stdin.Close()
	waitErr := r.cmd.Wait()

	r.mu.Lock()
	err = r.err
	r.mu.Unlock()
	if err == nil && waitErr != nil {
		err = fmt.Errorf("ffmpeg encoder: %w", waitErr)
	}
	r.log.Info("recording stopped", "path", r.path, "frames", r.written, "error", err)
	return r.written, err
}
