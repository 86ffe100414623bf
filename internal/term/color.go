package term

import (
	"fmt"
	"image/color"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Mode describes how colors are written to the terminal.
type Mode uint8

const (
	ModeNone    Mode = iota // NO_COLOR or dumb terminal
	ModeANSI16              // basic 16-color
	ModeANSI256             // 256-color
	ModeTrue                // 24-bit truecolor
)

func (m Mode) String() string {
	switch m {
	case ModeANSI16:
		return "16"
	case ModeANSI256:
		return "256"
	case ModeTrue:
		return "truecolor"
	default:
		return "none"
	}
}

// ParseMode maps a config value to a Mode. "auto" and "" detect from the environment.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Detect(), nil
	case "none", "off":
		return ModeNone, nil
	case "16":
		return ModeANSI16, nil
	case "256":
		return ModeANSI256, nil
	case "true", "truecolor", "24bit":
		return ModeTrue, nil
	}
	return ModeNone, fmt.Errorf("unknown color mode %q", s)
}

var (
	detectOnce sync.Once
	detected   Mode
)

// Detect checks terminal capabilities once.
func Detect() Mode {
	detectOnce.Do(func() {
		detected = detectMode(os.LookupEnv, runtime.GOOS)
	})
	return detected
}

func detectMode(lookup func(string) (string, bool), goos string) Mode {
	if _, ok := lookup("NO_COLOR"); ok {
		return ModeNone
	}
	termEnv, _ := lookup("TERM")
	ct, _ := lookup("COLORTERM")
	termEnv = strings.ToLower(termEnv)
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "truecolor"), strings.Contains(ct, "24bit"):
		return ModeTrue
	case strings.Contains(termEnv, "256color"):
		return ModeANSI256
	case termEnv == "dumb":
		return ModeNone
	case termEnv == "" && goos == "windows":
		return ModeANSI16
	case termEnv == "":
		return ModeNone
	default:
		return ModeANSI16
	}
}

const reset = "\x1b[0m"

// fgSeq returns the foreground escape for c, or "" when colors are off.
func fgSeq(mode Mode, c color.RGBA) string {
	switch mode {
	case ModeTrue:
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B)
	case ModeANSI256:
		return fmt.Sprintf("\x1b[38;5;%dm", cube256(c))
	case ModeANSI16:
		i := nearest16(c)
		if i < 8 {
			return fmt.Sprintf("\x1b[%dm", 30+i)
		}
		return fmt.Sprintf("\x1b[%dm", 90+i-8)
	default:
		return ""
	}
}

// bgSeq returns the background escape for c, or "" when colors are off.
func bgSeq(mode Mode, c color.RGBA) string {
	switch mode {
	case ModeTrue:
		return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", c.R, c.G, c.B)
	case ModeANSI256:
		return fmt.Sprintf("\x1b[48;5;%dm", cube256(c))
	case ModeANSI16:
		i := nearest16(c)
		if i < 8 {
			return fmt.Sprintf("\x1b[%dm", 40+i)
		}
		return fmt.Sprintf("\x1b[%dm", 100+i-8)
	default:
		return ""
	}
}

// cube256 maps c into the 6x6x6 color cube of the 256-color palette.
func cube256(c color.RGBA) int {
	ri := int(c.R) * 5 / 255
	gi := int(c.G) * 5 / 255
	bi := int(c.B) * 5 / 255
	return 16 + 36*ri + 6*gi + bi
}

// nearest16 returns the index of the closest ANSI 16 palette entry.
func nearest16(c color.RGBA) int {
	best := 0
	bestDist := 1<<31 - 1
	for i, p := range ansi16Palette {
		dr := int(c.R) - int(p[0])
		dg := int(c.G) - int(p[1])
		db := int(c.B) - int(p[2])
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

var ansi16Palette = [16][3]uint8{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}
