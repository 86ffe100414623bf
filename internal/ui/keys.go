package ui

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/asciicam/internal/render"
)

// Slider ranges of the settings panel.
const (
	minFont       = 6
	maxFont       = 30
	minContrast   = 0.5
	maxContrast   = 3.0
	contrastStep  = 0.1
	maxBrightness = 100
	brightStep    = 5
)

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(mode CaptureMode, recording bool) string {
	s := "+/- size  ←/→ contrast  ↑/↓ brightness  c color  i invert  tab charset"
	s += "  f flip  m mode"
	switch {
	case recording:
		s += "  space stop"
	case mode == ModeVideo:
		s += "  space record"
	default:
		s += "  space capture"
	}
	s += "  t text  q quit"
	return s
}

// adjust applies a settings key to s. It reports whether key changed anything.
func adjust(s render.Settings, key string) (render.Settings, bool) {
	next := s
	switch key {
	case "+", "=":
		next = s.WithFontSize(min(s.FontSize+1, maxFont))
	case "-", "_":
		next = s.WithFontSize(max(s.FontSize-1, minFont))
	case "right", "l":
		next = s.WithContrast(stepContrast(s.Contrast, contrastStep))
	case "left", "h":
		next = s.WithContrast(stepContrast(s.Contrast, -contrastStep))
	case "up", "k":
		next = s.WithBrightness(math.Min(s.Brightness+brightStep, maxBrightness))
	case "down", "j":
		next = s.WithBrightness(math.Max(s.Brightness-brightStep, -maxBrightness))
	case "c":
		next = s.WithColorMode(!s.ColorMode)
	case "i":
		next = s.WithInvert(!s.Invert)
	case "tab":
		next = s.WithCharset(s.Charset.Next())
	default:
		return s, false
	}
	return next, next != s
}

func stepContrast(c, step float64) float64 {
	c = math.Round((c+step)*10) / 10
	return math.Max(minContrast, math.Min(maxContrast, c))
}
