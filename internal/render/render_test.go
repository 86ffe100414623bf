package render

import (
	"image"
	"image/color"
	"sync"
)

// staticSource serves one fixed frame once ready is set.
type staticSource struct {
	mu    sync.Mutex
	img   image.Image
	ready bool
}

func newStaticSource(img image.Image) *staticSource {
	return &staticSource{img: img, ready: true}
}

func (s *staticSource) ViewFrame(fn func(image.Image)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return false
	}
	fn(s.img)
	return true
}

func (s *staticSource) setReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

func flatFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// gradientFrame varies red across x and green across y.
func gradientFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 60,
				A: 0xff,
			})
		}
	}
	return img
}

var midGray = color.RGBA{R: 128, G: 128, B: 128, A: 0xff}
