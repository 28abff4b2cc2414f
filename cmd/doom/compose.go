package main

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/aleskucera/DOOM/render"
)

var flagOutput string

var composeCmd = &cobra.Command{
	Use:   "compose <png>",
	Short: "Tile an image into the four-pane layout",
	Long: `Draw an image into all four panes of the layout used for engine
buffers, then show the result in a window or save it with --output.

Examples:
  doom compose test.png
  doom compose test.png --output grid.png`,
	Args: cobra.ExactArgs(1),
	Run:  runCompose,
}

func init() {
	composeCmd.Flags().StringVar(&flagOutput, "output", "", "Save to this PNG instead of showing a window")
}

func runCompose(cmd *cobra.Command, args []string) {
	img, err := render.LoadPNG(args[0])
	must(err)
	grid := render.Tile(img)
	if flagOutput != "" {
		must(render.SavePNG(flagOutput, grid))
		logger.Info("saved", "path", flagOutput, "size", grid.Bounds().Size())
		return
	}
	must(showImage("Composed panes", grid))
}

// imageViewer shows one still image until its window is
// closed.
type imageViewer struct {
	img   *image.RGBA
	image *ebiten.Image
}

func showImage(title string, img *image.RGBA) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(img.Bounds().Dx(), img.Bounds().Dy())
	return ebiten.RunGame(&imageViewer{img: img})
}

func (v *imageViewer) Update() error {
	return nil
}

func (v *imageViewer) Draw(screen *ebiten.Image) {
	if v.image == nil {
		v.image = ebiten.NewImageFromImage(v.img)
	}
	screen.DrawImage(v.image, nil)
}

func (v *imageViewer) Layout(_, _ int) (int, int) {
	return v.img.Bounds().Dx(), v.img.Bounds().Dy()
}
