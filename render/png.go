package render

import (
	"image"
	"image/png"
	"os"

	"github.com/unixpickle/essentials"
)

// SavePNG writes an image to a PNG file.
func SavePNG(path string, img image.Image) (err error) {
	defer essentials.AddCtxTo("save "+path, &err)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadPNG reads a PNG file.
func LoadPNG(path string) (img image.Image, err error) {
	defer essentials.AddCtxTo("load "+path, &err)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
