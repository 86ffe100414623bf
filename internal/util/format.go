package util

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatFPS formats a frame rate with no decimals, or "--" before the first reading.
func FormatFPS(fps float64) string {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return "--"
	}
	return fmt.Sprintf("%.0f", fps)
}

// FormatMillis formats d in milliseconds with one decimal.
func FormatMillis(d time.Duration) string {
	return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
}

// FormatSigned formats v with an explicit sign.
func FormatSigned(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%g", v)
	}
	return fmt.Sprintf("%g", v)
}
