package ascii

import (
	"errors"
	"math"
	"testing"
)

func TestLuminanceWeights(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    float64
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{255, 0, 0, 0.299 * 255},
		{0, 255, 0, 0.587 * 255},
		{0, 0, 255, 0.114 * 255},
		{128, 128, 128, 128},
	}
	for _, tt := range tests {
		got := Luminance(tt.r, tt.g, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("Luminance(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestLuminanceGrayIsExact(t *testing.T) {
	for v := 0; v <= 255; v++ {
		if got := Luminance(uint8(v), uint8(v), uint8(v)); got != float64(v) {
			t.Fatalf("Luminance(%d,%d,%d) = %v, want %d", v, v, v, got, v)
		}
	}
}

func TestAdjustLuminanceIdentity(t *testing.T) {
	for l := 0; l <= 255; l++ {
		if got := AdjustLuminance(float64(l), 1, 0); got != float64(l) {
			t.Fatalf("AdjustLuminance(%d, 1, 0) = %v, want %d", l, got, l)
		}
	}
}

func TestAdjustLuminanceClamps(t *testing.T) {
	tests := []struct {
		l, c, b float64
		want    float64
	}{
		{255, 3, 100, 255},
		{0, 3, -100, 0},
		{10, 50, 0, 0},
		{200, 0.5, 0, 164},
		{128, 1.2, 0, 128},
	}
	for _, tt := range tests {
		if got := AdjustLuminance(tt.l, tt.c, tt.b); got != tt.want {
			t.Fatalf("AdjustLuminance(%v, %v, %v) = %v, want %v", tt.l, tt.c, tt.b, got, tt.want)
		}
	}
	for l := 0.0; l <= 255; l += 17 {
		for _, c := range []float64{0.1, 1, 2, 5, 100} {
			for _, b := range []float64{-500, -50, 0, 50, 500} {
				got := AdjustLuminance(l, c, b)
				if got < 0 || got > 255 {
					t.Fatalf("AdjustLuminance(%v, %v, %v) = %v out of range", l, c, b, got)
				}
			}
		}
	}
}

func TestGlyphIndexFloorsBeforeClamp(t *testing.T) {
	tests := []struct {
		l      float64
		invert bool
		want   int
	}{
		{255.9, false, 255},
		{300, false, 255},
		{-4, false, 0},
		{127.99, false, 127},
		{128, true, 127},
		{0, true, 255},
		{255, true, 0},
		{math.NaN(), false, 0},
	}
	for _, tt := range tests {
		if got := GlyphIndex(tt.l, tt.invert); got != tt.want {
			t.Fatalf("GlyphIndex(%v, %v) = %d, want %d", tt.l, tt.invert, got, tt.want)
		}
	}
}

func TestGlyphForInvertIsComplement(t *testing.T) {
	ramp, err := LookupRamp(Edges)
	if err != nil {
		t.Fatal(err)
	}
	m := BuildBrightnessMap(ramp)
	for l := 0; l <= 255; l++ {
		want := m[255-l]
		if got := GlyphFor(float64(l), &m, true); got != want {
			t.Fatalf("GlyphFor(%d, invert) = %q, want %q", l, got, want)
		}
		if got := GlyphFor(float64(l), &m, false); got != m[l] {
			t.Fatalf("GlyphFor(%d) = %q, want %q", l, got, m[l])
		}
	}
}

func TestMidGrayScenario(t *testing.T) {
	ramp, _ := LookupRamp(Standard)
	m := BuildBrightnessMap(ramp)

	l := AdjustLuminance(Luminance(128, 128, 128), 1.2, 0)
	if got := GlyphFor(l, &m, false); got != '*' {
		t.Fatalf("mid gray glyph = %q, want '*'", got)
	}
	if got := GlyphFor(l, &m, true); got != '+' {
		t.Fatalf("inverted mid gray glyph = %q, want '+'", got)
	}
}

func TestLookupRampUnknown(t *testing.T) {
	_, err := LookupRamp("braille")
	if !errors.Is(err, ErrUnknownCharset) {
		t.Fatalf("LookupRamp(braille) error = %v, want ErrUnknownCharset", err)
	}
}
