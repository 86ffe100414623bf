package ascii

import (
	"errors"
	"fmt"
)

// ErrUnknownCharset is returned when a character set name has no ramp.
var ErrUnknownCharset = errors.New("unknown character set")

// Charset names a glyph ramp.
type Charset string

const (
	Standard Charset = "standard"
	Simple   Charset = "simple"
	Blocks   Charset = "blocks"
	Matrix   Charset = "matrix"
	Edges    Charset = "edges"
)

// Ramp is an ordered glyph sequence from least to most visually dense.
type Ramp []rune

// Ramps from least dense to most dense. Space leads wherever it appears.
var ramps = map[Charset]string{
	Standard: " .:-=+*#%@MB",
	Simple:   " .+#@",
	Blocks:   " ░▒▓█",
	Matrix:   " 01",
	Edges:    "  .,-_~:;=!*#$@",
}

// charsetOrder is the cycle order used by the UI.
var charsetOrder = []Charset{Standard, Simple, Blocks, Matrix, Edges}

// Charsets returns every known character set in a stable order.
func Charsets() []Charset {
	out := make([]Charset, len(charsetOrder))
	copy(out, charsetOrder)
	return out
}

// Next returns the character set following c in cycle order.
// Unknown names restart the cycle.
func (c Charset) Next() Charset {
	for i, name := range charsetOrder {
		if name == c {
			return charsetOrder[(i+1)%len(charsetOrder)]
		}
	}
	return charsetOrder[0]
}

// Valid reports whether c names a known ramp.
func (c Charset) Valid() bool {
	_, ok := ramps[c]
	return ok
}

// LookupRamp returns the ramp for name.
func LookupRamp(name Charset) (Ramp, error) {
	s, ok := ramps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, string(name))
	}
	return Ramp(s), nil
}
