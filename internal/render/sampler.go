package render

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

var (
	// ErrNotReady means there is no frame to render yet, or the grid is empty.
	ErrNotReady = errors.New("frame source not ready")
	// ErrInvalidDimensions means a computed size was not positive.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrSurface means a drawing surface or font face could not be created.
	ErrSurface = errors.New("surface creation failed")
)

// FrameSource supplies the current decoded video frame.
type FrameSource interface {
	// ViewFrame calls fn with the latest frame and reports whether one existed.
	// The frame must not be retained after fn returns.
	ViewFrame(fn func(frame image.Image)) bool
}

// GridSize returns the character grid for a display of width x height pixels.
func GridSize(width, height, fontSize int) (cols, rows int) {
	if fontSize <= 0 || width <= 0 || height <= 0 {
		return 0, 0
	}
	return width / fontSize, height / fontSize
}

// Sampler downsamples source frames into a reused cols x rows scratch image.
// It is not safe for concurrent use; each owner keeps its own.
type Sampler struct {
	scratch *image.RGBA
	scaler  draw.Scaler
}

// NewSampler returns a sampler using bilinear scaling.
func NewSampler() *Sampler {
	return &Sampler{scaler: draw.ApproxBiLinear}
}

// Sample scales the current frame of src to cols x rows.
// The returned image is owned by the sampler and overwritten on the next call.
func (s *Sampler) Sample(src FrameSource, cols, rows int) (*image.RGBA, error) {
	if cols <= 0 || rows <= 0 || src == nil {
		return nil, ErrNotReady
	}
	if s.scratch == nil || s.scratch.Rect.Dx() != cols || s.scratch.Rect.Dy() != rows {
		s.scratch = image.NewRGBA(image.Rect(0, 0, cols, rows))
	}

	dst := s.scratch
	var empty bool
	ok := src.ViewFrame(func(frame image.Image) {
		b := frame.Bounds()
		if b.Empty() {
			empty = true
			return
		}
		s.scaler.Scale(dst, dst.Rect, frame, b, draw.Src, nil)
	})
	if !ok || empty {
		return nil, ErrNotReady
	}
	return dst, nil
}
