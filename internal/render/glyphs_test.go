package render

import (
	"image"
	"testing"

	"github.com/olivier-w/asciicam/internal/ascii"
)

func TestGlyphAtlasMasks(t *testing.T) {
	a, err := NewGlyphAtlas(12)
	if err != nil {
		t.Fatalf("NewGlyphAtlas() error = %v", err)
	}
	defer a.Close()

	if a.Mask(' ') != nil {
		t.Fatal("expected space to have no mask")
	}
	m := a.Mask('@')
	if m == nil {
		t.Fatal("expected ink for '@'")
	}
	if m.Rect.Dx() != 12 || m.Rect.Dy() < 12 {
		t.Fatalf("mask bounds = %v, want 12 wide and at least 12 tall", m.Rect)
	}
	if a.Mask('@') != m {
		t.Fatal("expected cached mask")
	}
}

func TestGlyphAtlasCoversEveryRamp(t *testing.T) {
	for _, size := range []int{6, 10, 16, 30} {
		a, err := NewGlyphAtlas(size)
		if err != nil {
			t.Fatal(err)
		}
		for _, name := range ascii.Charsets() {
			ramp, _ := ascii.LookupRamp(name)
			for _, r := range ramp {
				if r == ' ' {
					continue
				}
				if a.Mask(r) == nil {
					t.Fatalf("size %d, %s: glyph %q has no ink", size, name, r)
				}
			}
		}
		a.Close()
	}
}

func TestGlyphAtlasKeepsDescenders(t *testing.T) {
	a, err := NewGlyphAtlas(10)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	for _, r := range []rune{'_', ','} {
		m := a.Mask(r)
		if m == nil {
			t.Fatalf("glyph %q has no ink", r)
		}
		if !hasInkBelow(m, 10) {
			t.Fatalf("glyph %q has no ink below the cell, mask %v", r, m.Rect)
		}
	}
}

func hasInkBelow(m *image.Alpha, y0 int) bool {
	for y := y0; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			if m.AlphaAt(x, y).A != 0 {
				return true
			}
		}
	}
	return false
}

func TestUnderscoreDrawsIntoRowBelow(t *testing.T) {
	a, err := NewGlyphAtlas(10)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	s := NewSurface(10, 20)
	s.Clear(Black)
	s.DrawGlyph(0, 0, a.Mask('_'), Phosphor)

	inked := false
	img := s.Image()
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+1] != 0 {
			inked = true
			break
		}
	}
	if !inked {
		t.Fatal("underscore left no ink on the surface")
	}
}

func TestGlyphAtlasRejectsZeroSize(t *testing.T) {
	if _, err := NewGlyphAtlas(0); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestSurfaceClearAndResize(t *testing.T) {
	s := NewSurface(5, 3)
	s.Clear(Phosphor)
	for i := 0; i < len(s.Image().Pix); i += 4 {
		if s.Image().Pix[i+1] != 0xff || s.Image().Pix[i+3] != 0xff {
			t.Fatalf("pixel %d not cleared", i/4)
		}
	}
	if s.Resize(5, 3) {
		t.Fatal("expected no reallocation for equal size")
	}
	if !s.Resize(6, 3) {
		t.Fatal("expected reallocation on resize")
	}
}
