package render

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	monoOnce sync.Once
	monoFont *opentype.Font
	monoErr  error
)

// parsedMono parses the embedded Go Mono font once.
func parsedMono() (*opentype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = opentype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

// GlyphAtlas caches rasterized glyph masks for one square cell size.
// Masks are size wide and at least size tall: descenders hang below the
// cell into the next row, the way text drawn from a top baseline does.
// Not safe for concurrent use.
type GlyphAtlas struct {
	size   int
	height int
	face   font.Face
	ascent fixed.Int26_6
	masks  map[rune]*image.Alpha
}

// NewGlyphAtlas builds a Go Mono face whose em fills a size x size cell.
func NewGlyphAtlas(size int) (*GlyphAtlas, error) {
	if size <= 0 {
		return nil, fmt.Errorf("glyph size %d: %w", size, ErrInvalidDimensions)
	}
	f, err := parsedMono()
	if err != nil {
		return nil, fmt.Errorf("parsing mono font: %w: %v", ErrSurface, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %dpx face: %w: %v", size, ErrSurface, err)
	}
	metrics := face.Metrics()
	return &GlyphAtlas{
		size:   size,
		height: max(size, (metrics.Ascent + metrics.Descent).Ceil()),
		face:   face,
		ascent: metrics.Ascent,
		masks:  make(map[rune]*image.Alpha),
	}, nil
}

// Size returns the cell edge length in pixels.
func (a *GlyphAtlas) Size() int { return a.size }

// Mask returns the coverage mask for r, top-aligned in its cell.
// It may be taller than the cell. Glyphs with no ink (space) return nil.
func (a *GlyphAtlas) Mask(r rune) *image.Alpha {
	if m, ok := a.masks[r]; ok {
		return m
	}
	m := a.rasterize(r)
	a.masks[r] = m
	return m
}

func (a *GlyphAtlas) rasterize(r rune) *image.Alpha {
	height := a.height
	if bounds, _, ok := a.face.GlyphBounds(r); ok {
		height = max(height, (a.ascent + bounds.Max.Y).Ceil())
	}
	mask := image.NewAlpha(image.Rect(0, 0, a.size, height))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: a.face,
		Dot:  fixed.Point26_6{X: 0, Y: a.ascent},
	}
	d.DrawString(string(r))

	for _, v := range mask.Pix {
		if v != 0 {
			return mask
		}
	}
	return nil
}

// Close releases the font face.
func (a *GlyphAtlas) Close() error {
	return a.face.Close()
}
