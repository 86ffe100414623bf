package media

import (
	"path/filepath"
	"strings"
)

// Kind classifies a capture input.
type Kind uint8

const (
	KindDevice Kind = iota // platform camera or a device path
	KindImage              // still image served as a frame source
	KindVideo              // video file decoded by ffmpeg
	KindURL                // network stream decoded by ffmpeg
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindURL:
		return "url"
	default:
		return "device"
	}
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".webp": true,
}

var videoExts = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".mov":  true,
	".webm": true,
	".avi":  true,
	".m4v":  true,
}

// IsImageExt reports whether ext is a decodable still image format.
func IsImageExt(ext string) bool {
	return imageExts[strings.ToLower(ext)]
}

// IsVideoExt reports whether ext is a known video container.
func IsVideoExt(ext string) bool {
	return videoExts[strings.ToLower(ext)]
}

// Classify decides how input should be opened. An empty input is the
// default camera.
func Classify(input string) Kind {
	switch {
	case input == "":
		return KindDevice
	case strings.Contains(input, "://"):
		return KindURL
	}
	ext := filepath.Ext(input)
	switch {
	case IsImageExt(ext):
		return KindImage
	case IsVideoExt(ext):
		return KindVideo
	}
	return KindDevice
}

// SupportedExtsList returns a human-readable list of file formats.
func SupportedExtsList() string {
	return "images: .png, .jpg, .jpeg, .bmp, .webp; video: .mp4, .mkv, .mov, .webm, .avi, .m4v"
}
