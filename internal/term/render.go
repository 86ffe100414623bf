package term

import (
	"strings"

	"github.com/olivier-w/asciicam/internal/render"
)

// Renderer converts a glyph grid into a terminal string.
type Renderer struct {
	mode Mode
	sb   strings.Builder // reused between frames
}

// NewRenderer creates a renderer writing colors in mode.
func NewRenderer(mode Mode) *Renderer {
	return &Renderer{mode: mode}
}

// Mode returns the color mode in use.
func (r *Renderer) Mode() Mode { return r.mode }

// Fit returns the terminal size for a cols x rows grid of square cells
// inside maxW x maxH terminal cells. Terminal cells are about twice as tall
// as they are wide, so two grid rows fold into one terminal row.
func Fit(cols, rows, maxW, maxH int) (w, h int) {
	if cols <= 0 || rows <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	w, h = cols, (rows+1)/2
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if h > maxH {
		w = w * maxH / h
		h = maxH
	}
	return max(w, 1), max(h, 1)
}

// Render draws g into at most outW x outH terminal cells, picking grid cells
// by nearest neighbor.
func (r *Renderer) Render(g *render.Grid, outW, outH int) string {
	if g == nil || g.Empty() {
		return ""
	}
	w, h := Fit(g.Cols, g.Rows, outW, outH)
	if w == 0 {
		return ""
	}

	r.sb.Reset()
	// Worst case about 20 bytes of escapes per cell plus the glyph.
	if r.mode == ModeNone {
		r.sb.Grow(w*h*3 + h)
	} else {
		r.sb.Grow(w*h*24 + h)
	}

	bg := bgSeq(r.mode, g.Background)
	for row := 0; row < h; row++ {
		srcRow := row * g.Rows / h
		r.sb.WriteString(bg)
		var lastFg string
		for col := 0; col < w; col++ {
			cell := g.At(col*g.Cols/w, srcRow)
			if fg := fgSeq(r.mode, cell.Color); fg != lastFg {
				r.sb.WriteString(fg)
				lastFg = fg
			}
			r.sb.WriteRune(cell.Glyph)
		}
		if r.mode != ModeNone {
			r.sb.WriteString(reset)
		}
		if row < h-1 {
			r.sb.WriteByte('\n')
		}
	}
	return r.sb.String()
}
