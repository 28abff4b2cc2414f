package doom

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ResizeFrame scales a (height, width, channels) frame to
// (outHeight, outWidth, channels).
//
// When shrinking, each output pixel averages the input
// pixels it covers, which keeps thin features visible.
// Frames with 1 or 3 channels are supported.
func ResizeFrame(frame []uint8, height, width, channels, outHeight,
	outWidth int) ([]uint8, error) {
	if outHeight <= 0 || outWidth <= 0 {
		return nil, fmt.Errorf("invalid output size %dx%d", outWidth, outHeight)
	}
	src, err := BufferImage(frame, width, height, channels)
	if err != nil {
		return nil, err
	}
	if height == outHeight && width == outWidth {
		return append([]uint8(nil), frame...), nil
	}

	bounds := image.Rect(0, 0, outWidth, outHeight)
	if channels == 1 {
		dst := image.NewGray(bounds)
		draw.BiLinear.Scale(dst, bounds, src, src.Bounds(), draw.Src, nil)
		return dst.Pix, nil
	}

	dst := image.NewRGBA(bounds)
	draw.BiLinear.Scale(dst, bounds, src, src.Bounds(), draw.Src, nil)
	res := make([]uint8, outWidth*outHeight*3)
	for i := 0; i < outWidth*outHeight; i++ {
		copy(res[i*3:i*3+3], dst.Pix[i*4:i*4+3])
	}
	return res, nil
}
