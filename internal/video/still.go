package video

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Still serves one decoded image as a frame source.
type Still struct {
	img image.Image
}

// NewStill wraps img.
func NewStill(img image.Image) *Still {
	return &Still{img: img}
}

// OpenStill decodes a PNG, JPEG, BMP or WebP file.
func OpenStill(path string) (*Still, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decoding %s: empty %s image", path, format)
	}
	return &Still{img: img}, nil
}

// ViewFrame always has a frame.
func (s *Still) ViewFrame(fn func(frame image.Image)) bool {
	fn(s.img)
	return true
}

// Size returns the image size.
func (s *Still) Size() (width, height int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}
