package render

import (
	"image"
	"image/color"

	"github.com/olivier-w/asciicam/internal/ascii"
	"golang.org/x/image/draw"
)

var (
	// Phosphor is the flat foreground color.
	Phosphor = color.RGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}
	// Black is the default background.
	Black = color.RGBA{A: 0xff}
)

// Surface is an RGBA drawing target resized only when its dimensions change.
type Surface struct {
	img  *image.RGBA
	fill image.Uniform
}

// NewSurface allocates a width x height surface.
func NewSurface(width, height int) *Surface {
	s := &Surface{}
	s.Resize(width, height)
	return s
}

// Resize reallocates the surface when width or height differ.
// It reports whether a new buffer was allocated.
func (s *Surface) Resize(width, height int) bool {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if s.img != nil && s.img.Rect.Dx() == width && s.img.Rect.Dy() == height {
		return false
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return true
}

// Image returns the backing image.
func (s *Surface) Image() *image.RGBA { return s.img }

// Bounds returns the surface rectangle.
func (s *Surface) Bounds() image.Rectangle { return s.img.Rect }

// Clear paints the whole surface with c.
func (s *Surface) Clear(c color.RGBA) {
	pix := s.img.Pix
	if len(pix) == 0 {
		return
	}
	pix[0], pix[1], pix[2], pix[3] = c.R, c.G, c.B, c.A
	for filled := 4; filled < len(pix); filled *= 2 {
		copy(pix[filled:], pix[:filled])
	}
}

// DrawGlyph composites mask at (x, y) in color c.
func (s *Surface) DrawGlyph(x, y int, mask *image.Alpha, c color.RGBA) {
	if mask == nil {
		return
	}
	s.fill.C = c
	r := mask.Rect.Add(image.Pt(x, y))
	draw.DrawMask(s.img, r, &s.fill, image.Point{}, mask, mask.Rect.Min, draw.Over)
}

// colors returns the background and flat foreground for s.
func colors(s Settings) (bg, fg color.RGBA) {
	if s.Invert && !s.ColorMode {
		return Phosphor, Black
	}
	return Black, Phosphor
}

// paintGrid tone-maps every sample and draws its glyph into a cell x cell slot.
// grid is optional.
func paintGrid(dst *Surface, atlas *GlyphAtlas, samples *image.RGBA, cell int, s Settings, m *ascii.BrightnessMap, grid *Grid) {
	bg, fg := colors(s)
	dst.Clear(bg)

	cols, rows := samples.Rect.Dx(), samples.Rect.Dy()
	if grid != nil {
		grid.resize(cols, rows)
		grid.Background = bg
	}

	identity := s.Contrast == 1 && s.Brightness == 0
	for row := 0; row < rows; row++ {
		off := row * samples.Stride
		for col := 0; col < cols; col++ {
			i := off + col*4
			r, g, b := samples.Pix[i], samples.Pix[i+1], samples.Pix[i+2]

			l := ascii.Luminance(r, g, b)
			if !identity {
				l = ascii.AdjustLuminance(l, s.Contrast, s.Brightness)
			}
			glyph := ascii.GlyphFor(l, m, s.Invert)

			c := fg
			if s.ColorMode {
				c = color.RGBA{R: r, G: g, B: b, A: 0xff}
			}
			dst.DrawGlyph(col*cell, row*cell, atlas.Mask(glyph), c)

			if grid != nil {
				grid.Cells[row*cols+col] = Cell{Glyph: glyph, Color: c}
			}
		}
	}
}
