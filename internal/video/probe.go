package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Probe holds video stream metadata from ffprobe.
type Probe struct {
	Width    int
	Height   int
	FPS      float64
	HasVideo bool
}

type ffprobeResult struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"` // e.g. "30/1" or "24000/1001"
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
}

// ProbeInput uses ffprobe to read the first video stream of a file or URL.
func ProbeInput(ctx context.Context, input string) (Probe, error) {
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return Probe{}, fmt.Errorf("ffprobe not found: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "v:0",
		input,
	)
	output, err := cmd.Output()
	if err != nil {
		return Probe{}, fmt.Errorf("ffprobe %s: %w", input, err)
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (Probe, error) {
	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return Probe{}, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	for _, s := range result.Streams {
		if s.CodecType != "video" {
			continue
		}
		fps := parseFraction(s.AvgFrameRate)
		if fps <= 0 {
			fps = parseFraction(s.RFrameRate)
		}
		if fps <= 0 {
			fps = 30
		}
		return Probe{Width: s.Width, Height: s.Height, FPS: fps, HasVideo: true}, nil
	}
	return Probe{}, nil
}

// parseFraction parses "num/den" or a plain number.
func parseFraction(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
