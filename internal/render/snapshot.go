package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/olivier-w/asciicam/internal/ascii"
)

// DefaultSnapshotScale is the linear upscale applied to still captures.
const DefaultSnapshotScale = 4

// SnapshotImage re-renders the current frame of src for export.
//
// The character grid is computed from the unscaled font size so the layout
// matches the live view, while every glyph is drawn scale times larger. The
// image covers whole cells only, so it is exactly scale times the live
// surface for the same viewport. It allocates its own sampler and surface
// and never touches a Loop's buffers.
func SnapshotImage(src FrameSource, s Settings, width, height, scale int, maps *ascii.MapCache) (*image.RGBA, error) {
	if src == nil || !hasFrame(src) {
		return nil, ErrNotReady
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if scale <= 0 || width*scale <= 0 || height*scale <= 0 {
		return nil, fmt.Errorf("capture size %dx%d at %dx: %w", width, height, scale, ErrInvalidDimensions)
	}
	cols, rows := GridSize(width, height, s.FontSize)
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("character grid %dx%d: %w", cols, rows, ErrInvalidDimensions)
	}
	if maps == nil {
		maps = ascii.NewMapCache()
	}
	m, err := maps.Get(s.Charset)
	if err != nil {
		return nil, err
	}

	cell := s.FontSize * scale
	atlas, err := NewGlyphAtlas(cell)
	if err != nil {
		return nil, err
	}
	defer atlas.Close()

	surface := NewSurface(cols*cell, rows*cell)
	if surface.Bounds().Empty() {
		return nil, ErrSurface
	}

	samples, err := NewSampler().Sample(src, cols, rows)
	if err != nil {
		return nil, err
	}
	paintGrid(surface, atlas, samples, cell, s, m, nil)
	return surface.Image(), nil
}

// Snapshot renders like SnapshotImage and encodes the result as PNG.
func Snapshot(src FrameSource, s Settings, width, height, scale int, maps *ascii.MapCache) ([]byte, error) {
	img, err := SnapshotImage(src, s, width, height, scale, maps)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func hasFrame(src FrameSource) bool {
	return src.ViewFrame(func(image.Image) {})
}
