// Package render draws engine frames for people.
package render

import (
	"image"
	"image/color"
	"math/rand"
	"sync"

	doom "github.com/aleskucera/DOOM"
	"golang.org/x/image/draw"
)

// Offset is the margin around and between panes.
const Offset = 25

// labelSeed fixes the label colors across runs.
const labelSeed = 3

var (
	paletteOnce sync.Once
	palette     [256]color.RGBA
)

// WindowSize returns the size of the composed image for
// frames of the given size.
func WindowSize(width, height int) (int, int) {
	return 2*width + 3*Offset, 2*height + 3*Offset
}

// Compose lays out the buffers of a state in a 2x2 grid:
//
//	screen  | depth
//	--------+--------
//	labels  | automap
//
// Buffers which are not enabled are drawn as black panes.
func Compose(state *doom.State, cfg *doom.Config) (*image.RGBA, error) {
	if state == nil {
		return nil, doom.ErrNoState
	}
	w, h := cfg.ScreenWidth, cfg.ScreenHeight
	res, origins := blankGrid(w, h)

	channels := cfg.ScreenChannels()
	panes := []struct {
		buffer []uint8
		render func([]uint8) (image.Image, error)
	}{
		{state.Screen, func(b []uint8) (image.Image, error) {
			return doom.BufferImage(b, w, h, channels)
		}},
		{state.Depth, func(b []uint8) (image.Image, error) {
			return doom.BufferImage(b, w, h, 1)
		}},
		{state.Labels, func(b []uint8) (image.Image, error) {
			return ColorizeLabels(b, w, h)
		}},
		{state.Automap, func(b []uint8) (image.Image, error) {
			return doom.BufferImage(b, w, h, channels)
		}},
	}
	for i, pane := range panes {
		if pane.buffer == nil {
			continue
		}
		img, err := pane.render(pane.buffer)
		if err != nil {
			return nil, err
		}
		r := image.Rectangle{Min: origins[i], Max: origins[i].Add(image.Pt(w, h))}
		draw.Draw(res, r, img, image.Point{}, draw.Src)
	}
	return res, nil
}

// Tile draws the same image into all four panes.
func Tile(img image.Image) *image.RGBA {
	b := img.Bounds()
	res, origins := blankGrid(b.Dx(), b.Dy())
	for _, o := range origins {
		draw.Draw(res, image.Rectangle{Min: o, Max: o.Add(b.Size())}, img, b.Min, draw.Src)
	}
	return res
}

func blankGrid(w, h int) (*image.RGBA, [4]image.Point) {
	winW, winH := WindowSize(w, h)
	splitX, splitY := (winW+Offset)/2, (winH+Offset)/2
	res := image.NewRGBA(image.Rect(0, 0, winW, winH))
	draw.Draw(res, res.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return res, [4]image.Point{
		image.Pt(Offset, Offset),
		image.Pt(splitX, Offset),
		image.Pt(Offset, splitY),
		image.Pt(splitX, splitY),
	}
}

// LabelPalette returns the colors used for label values.
func LabelPalette() [256]color.RGBA {
	paletteOnce.Do(func() {
		gen := rand.New(rand.NewSource(labelSeed))
		for i := range palette {
			palette[i] = color.RGBA{
				R: uint8(gen.Float64() * 255),
				G: uint8(gen.Float64() * 255),
				B: uint8(gen.Float64() * 255),
				A: 0xff,
			}
		}
	})
	return palette
}

// ColorizeLabels maps each value of a labels buffer to
// its palette color.
func ColorizeLabels(labels []uint8, width, height int) (*image.RGBA, error) {
	gray, err := doom.BufferImage(labels, width, height, 1)
	if err != nil {
		return nil, err
	}
	colors := LabelPalette()
	res := image.NewRGBA(gray.Bounds())
	for i, x := range gray.(*image.Gray).Pix {
		c := colors[x]
		copy(res.Pix[i*4:i*4+4], []uint8{c.R, c.G, c.B, c.A})
	}
	return res, nil
}
