package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/olivier-w/asciicam/internal/render"
	"github.com/olivier-w/asciicam/internal/util"
)

func renderStats(fps float64, renderTime time.Duration, grid render.Grid, viewW, viewH int) string {
	return fmt.Sprintf("FPS: %s  Render: %s  RES: %dx%d  GRID: %dx%d",
		util.FormatFPS(fps), util.FormatMillis(renderTime), viewW, viewH, grid.Cols, grid.Rows)
}

func renderSettings(s render.Settings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "size %dpx  contrast %.1f  brightness %s  %s",
		s.FontSize, s.Contrast, util.FormatSigned(s.Brightness), s.Charset)
	if s.ColorMode {
		b.WriteString("  color")
	}
	if s.Invert {
		b.WriteString("  invert")
	}
	return b.String()
}

func renderRecording(elapsed time.Duration) string {
	return "● REC " + util.FormatDuration(elapsed)
}

// padLines pads s with blank lines up to n lines so the footer stays put.
func padLines(s string, n int) string {
	have := 0
	if s != "" {
		have = strings.Count(s, "\n") + 1
	}
	if have >= n {
		return s
	}
	if s == "" {
		return strings.Repeat("\n", n-1)
	}
	return s + strings.Repeat("\n", n-have)
}
