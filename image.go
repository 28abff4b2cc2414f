package doom

import (
	"fmt"
	"image"
)

// ScreenImage converts the screen buffer of a state into
// an image.
func ScreenImage(s *State, cfg *Config) (image.Image, error) {
	if s == nil || s.Screen == nil {
		return nil, ErrNoState
	}
	return BufferImage(s.Screen, cfg.ScreenWidth, cfg.ScreenHeight,
		cfg.ScreenChannels())
}

// BufferImage converts a row-major (height, width,
// channels) buffer into an image.
//
// One channel gives a gray image; three channels are read
// as RGB.
func BufferImage(buf []uint8, width, height, channels int) (image.Image, error) {
	if len(buf) != width*height*channels {
		return nil, fmt.Errorf("%w: %d bytes for %dx%dx%d", ErrShapeMismatch,
			len(buf), width, height, channels)
	}
	switch channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, width, height))
		copy(img.Pix, buf)
		return img, nil
	case 3:
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for i := 0; i < width*height; i++ {
			copy(img.Pix[i*4:i*4+3], buf[i*3:i*3+3])
			img.Pix[i*4+3] = 0xff
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedRGB, channels)
}

// ImageBuffer is the inverse of BufferImage, writing
// channels values per pixel.
func ImageBuffer(img image.Image, channels int) []uint8 {
	b := img.Bounds()
	res := make([]uint8, 0, b.Dx()*b.Dy()*channels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if channels == 1 {
				// Gray images report r == g == b.
				res = append(res, uint8(r>>8))
			} else {
				res = append(res, uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			}
		}
	}
	return res
}
