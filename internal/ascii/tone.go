package ascii

import "math"

// Luminance computes perceived brightness (ITU-R BT.601).
// The result is not clamped.
func Luminance(r, g, b uint8) float64 {
	// Integer weights keep grays exact: 0.299*128+0.587*128+0.114*128 in
	// floating point lands just below 128 and floors to the wrong glyph.
	return float64(299*int(r)+587*int(g)+114*int(b)) / 1000
}

// AdjustLuminance applies contrast around mid-gray and a brightness offset,
// clamping to [0,255]. contrast=1, brightness=0 is the identity.
func AdjustLuminance(l, contrast, brightness float64) float64 {
	v := contrast*(l-128) + 128 + brightness
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// GlyphFor picks the glyph for luminance l. Inverting mirrors the index.
func GlyphFor(l float64, m *BrightnessMap, invert bool) rune {
	return m[GlyphIndex(l, invert)]
}

// GlyphIndex returns the brightness map index for l.
// The value is floored before clamping so 255.9 never becomes 256.
func GlyphIndex(l float64, invert bool) int {
	if invert {
		l = 255 - l
	}
	f := math.Floor(l)
	if f != f || f < 0 { // NaN or negative
		return 0
	}
	if f > 255 {
		return 255
	}
	return int(f)
}
