package video

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
)

const encodersOutput = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (codec h264)
 V....D mpeg4                MPEG-4 part 2
 A....D aac                  AAC (Advanced Audio Coding)
 V....D libvpx               libvpx VP8 (codec vp8)
`

func TestParseEncoders(t *testing.T) {
	got := parseEncoders(strings.NewReader(encodersOutput))
	for _, name := range []string{"libx264", "mpeg4", "libvpx"} {
		if !got[name] {
			t.Fatalf("parseEncoders missing %s: %v", name, got)
		}
	}
	if got["aac"] {
		t.Fatal("audio encoders should be skipped")
	}
	if got["="] || got["Video"] {
		t.Fatalf("legend lines should be skipped: %v", got)
	}
}

func TestPickEncoderFallback(t *testing.T) {
	tests := []struct {
		path      string
		available map[string]bool
		want      string
	}{
		{"out.webm", map[string]bool{"libvpx-vp9": true, "libvpx": true}, "libvpx-vp9"},
		{"out.webm", map[string]bool{"libvpx": true}, "libvpx"},
		{"out.MP4", map[string]bool{"libx264": true, "mpeg4": true}, "libx264"},
		{"out.mp4", map[string]bool{"h264_videotoolbox": true, "mpeg4": true}, "h264_videotoolbox"},
		{"out.mp4", map[string]bool{"mpeg4": true}, "mpeg4"},
		{"out.avi", map[string]bool{"mpeg4": true}, "mpeg4"},
	}
	for _, tt := range tests {
		got, err := pickEncoder(tt.path, tt.available)
		if err != nil {
			t.Fatalf("pickEncoder(%s) error = %v", tt.path, err)
		}
		if got != tt.want {
			t.Fatalf("pickEncoder(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestPickEncoderNone(t *testing.T) {
	_, err := pickEncoder("out.webm", map[string]bool{"libx264": true})
	if !errors.Is(err, ErrNoEncoder) {
		t.Fatalf("error = %v, want ErrNoEncoder", err)
	}
}

func TestEncodeArgs(t *testing.T) {
	args := encodeArgs("libx264", 641, 479, 30, "/tmp/out.mp4")
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-f rawvideo -pixel_format rgba -video_size 641x479 -framerate 30 -i pipe:0",
		"pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-c:v libx264 -preset ultrafast",
		"-pix_fmt yuv420p /tmp/out.mp4",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("encodeArgs = %q, missing %q", joined, want)
		}
	}
}

func TestFitFrameSameSize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	src.SetRGBA(3, 1, color.RGBA{0, 255, 0, 255})
	dst := image.NewRGBA(image.Rect(0, 0, 4, 2))
	fitFrame(dst, src)
	if got := dst.RGBAAt(3, 1); got.G != 255 {
		t.Fatalf("dst(3,1) = %v, want green", got)
	}
}

func TestFitFrameRescales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fitFrame(dst, src)
	if got := dst.RGBAAt(3, 3); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("dst(3,3) = %v, want white", got)
	}

	empty := image.NewRGBA(image.Rectangle{})
	fitFrame(dst, empty)
	if got := dst.RGBAAt(0, 0); got.R != 255 {
		t.Fatal("an empty source should leave dst untouched")
	}
}

type fakeSurface struct{ img *image.RGBA }

func (f fakeSurface) ReadSurface(fn func(*image.RGBA)) { fn(f.img) }

func TestStartRecordingEmptySurface(t *testing.T) {
	_, err := StartRecording(t.Context(), fakeSurface{image.NewRGBA(image.Rectangle{})}, "out.mp4", 30, discardLogger())
	if !errors.Is(err, ErrEmptySurface) {
		t.Fatalf("error = %v, want ErrEmptySurface", err)
	}
}

func TestParseProbe(t *testing.T) {
	out := []byte(`{"streams":[{"codec_type":"video","width":1280,"height":720,"r_frame_rate":"30/1","avg_frame_rate":"24000/1001"}]}`)
	p, err := parseProbe(out)
	if err != nil {
		t.Fatal(err)
	}
	if !p.HasVideo || p.Width != 1280 || p.Height != 720 {
		t.Fatalf("parseProbe = %+v", p)
	}
	if p.FPS < 23.97 || p.FPS > 23.98 {
		t.Fatalf("FPS = %v, want ~23.976", p.FPS)
	}

	p, err = parseProbe([]byte(`{"streams":[{"codec_type":"video","width":2,"height":2,"r_frame_rate":"0/0","avg_frame_rate":"0/0"}]}`))
	if err != nil || p.FPS != 30 {
		t.Fatalf("parseProbe zero rate = %+v, %v; want fps 30", p, err)
	}

	p, err = parseProbe([]byte(`{"streams":[]}`))
	if err != nil || p.HasVideo {
		t.Fatalf("parseProbe no streams = %+v, %v", p, err)
	}

	if _, err := parseProbe([]byte("nope")); err == nil {
		t.Fatal("parseProbe(garbage) should fail")
	}
}

func TestParseFraction(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"25", 25},
		{"1/0", 0},
		{"x/1", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseFraction(tt.in); got != tt.want {
			t.Fatalf("parseFraction(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
