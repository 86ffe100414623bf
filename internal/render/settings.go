package render

import (
	"fmt"

	"github.com/olivier-w/asciicam/internal/ascii"
)

// Settings is an immutable per-frame rendering configuration.
// Update it with the With* methods, which return modified copies.
type Settings struct {
	FontSize   int
	Contrast   float64
	Brightness float64
	ColorMode  bool
	Invert     bool
	Charset    ascii.Charset
	// Resolution is the camera capture size as a percentage of the requested size.
	Resolution int
}

// DefaultSettings returns the startup settings.
func DefaultSettings() Settings {
	return Settings{
		FontSize:   10,
		Contrast:   1,
		Brightness: 0,
		Charset:    ascii.Standard,
		Resolution: 100,
	}
}

// Validate rejects settings the pipeline cannot render.
func (s Settings) Validate() error {
	if s.FontSize <= 0 {
		return fmt.Errorf("font size %d: %w", s.FontSize, ErrInvalidDimensions)
	}
	if !s.Charset.Valid() {
		return fmt.Errorf("%w: %q", ascii.ErrUnknownCharset, string(s.Charset))
	}
	return nil
}

func (s Settings) WithFontSize(n int) Settings {
	if n < minFontSize {
		n = minFontSize
	}
	if n > maxFontSize {
		n = maxFontSize
	}
	s.FontSize = n
	return s
}

func (s Settings) WithContrast(c float64) Settings {
	if c < 0 {
		c = 0
	}
	s.Contrast = c
	return s
}

func (s Settings) WithBrightness(b float64) Settings {
	s.Brightness = b
	return s
}

func (s Settings) WithColorMode(on bool) Settings {
	s.ColorMode = on
	return s
}

func (s Settings) WithInvert(on bool) Settings {
	s.Invert = on
	return s
}

func (s Settings) WithCharset(c ascii.Charset) Settings {
	s.Charset = c
	return s
}

func (s Settings) WithResolution(pct int) Settings {
	if pct < 10 {
		pct = 10
	}
	if pct > 100 {
		pct = 100
	}
	s.Resolution = pct
	return s
}

const (
	minFontSize = 4
	maxFontSize = 64
)
