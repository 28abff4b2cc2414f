package render

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/doomtest"
)

func testState(cfg *doom.Config) *doom.State {
	pixels := cfg.ScreenWidth * cfg.ScreenHeight
	fill := func(n int, x uint8) []uint8 {
		res := make([]uint8, n)
		for i := range res {
			res[i] = x
		}
		return res
	}
	return &doom.State{
		Screen: fill(pixels*cfg.ScreenChannels(), 10),
		Depth:  fill(pixels, 20),
		Labels: fill(pixels, 30),
	}
}

func TestCompose(t *testing.T) {
	cfg := doomtest.Config(1)
	state := testState(cfg)
	img, err := Compose(state, cfg)
	if err != nil {
		t.Fatal(err)
	}
	winW, winH := WindowSize(8, 6)
	if winW != 16+75 || winH != 12+75 {
		t.Fatalf("unexpected window size %dx%d", winW, winH)
	}
	if img.Bounds() != image.Rect(0, 0, winW, winH) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	splitX, splitY := (winW+Offset)/2, (winH+Offset)/2
	labelColor := LabelPalette()[30]
	expected := map[image.Point]color.RGBA{
		{0, 0}:                                 {0, 0, 0, 0xff},
		{Offset, Offset}:                       {10, 10, 10, 0xff},
		{Offset + 7, Offset + 5}:               {10, 10, 10, 0xff},
		{Offset + 8, Offset}:                   {0, 0, 0, 0xff},
		{splitX, Offset}:                       {20, 20, 20, 0xff},
		{Offset, splitY}:                       labelColor,
		{splitX + 7, splitY + 5}:               {0, 0, 0, 0xff},
		{splitX + 3, Offset + 2}:               {20, 20, 20, 0xff},
		{winW - Offset, winH - Offset}:         {0, 0, 0, 0xff},
		{winW - Offset - 1, winH - Offset - 1}: {0, 0, 0, 0xff},
	}
	for p, c := range expected {
		if actual := img.RGBAAt(p.X, p.Y); actual != c {
			t.Errorf("pixel %v: expected %v but got %v", p, c, actual)
		}
	}

	if _, err := Compose(nil, cfg); err == nil {
		t.Error("expected error for nil state")
	}
	state.Depth = state.Depth[1:]
	if _, err := Compose(state, cfg); err == nil {
		t.Error("expected error for short depth buffer")
	}
}

func TestComposeGray(t *testing.T) {
	cfg := doomtest.Config(1)
	cfg.ScreenFormat = doom.GRAY8
	cfg.AutomapBuffer = true
	state := testState(cfg)
	state.Automap = make([]uint8, 8*6)
	for i := range state.Automap {
		state.Automap[i] = 40
	}
	img, err := Compose(state, cfg)
	if err != nil {
		t.Fatal(err)
	}
	winW, winH := WindowSize(8, 6)
	splitX, splitY := (winW+Offset)/2, (winH+Offset)/2
	if c := img.RGBAAt(Offset+1, Offset+1); c != (color.RGBA{10, 10, 10, 0xff}) {
		t.Errorf("unexpected screen color %v", c)
	}
	if c := img.RGBAAt(splitX+1, splitY+1); c != (color.RGBA{40, 40, 40, 0xff}) {
		t.Errorf("unexpected automap color %v", c)
	}
}

func TestLabelPalette(t *testing.T) {
	p1 := LabelPalette()
	p2 := LabelPalette()
	if p1 != p2 {
		t.Fatal("palette should be fixed")
	}
	distinct := map[color.RGBA]bool{}
	for _, c := range p1 {
		if c.A != 0xff {
			t.Fatal("palette colors should be opaque")
		}
		distinct[c] = true
	}
	if len(distinct) < 250 {
		t.Errorf("only %d distinct colors", len(distinct))
	}

	img, err := ColorizeLabels([]uint8{0, 1, 255, 1}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if img.RGBAAt(1, 0) != p1[1] || img.RGBAAt(0, 1) != p1[255] {
		t.Error("unexpected label colors")
	}
}

func TestSavePNG(t *testing.T) {
	cfg := doomtest.Config(1)
	img, err := Compose(testState(cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := SavePNG(path, img); err != nil {
		t.Fatal(err)
	}
	decoded, err := LoadPNG(path)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("expected bounds %v but got %v", img.Bounds(), decoded.Bounds())
	}
	if _, err := LoadPNG(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTile(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for i := range src.Pix {
		src.Pix[i] = 0x80
	}
	img := Tile(src)
	winW, winH := WindowSize(4, 3)
	if img.Bounds() != image.Rect(0, 0, winW, winH) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	splitX, splitY := (winW+Offset)/2, (winH+Offset)/2
	gray := color.RGBA{0x80, 0x80, 0x80, 0x80}
	for _, p := range []image.Point{{Offset, Offset}, {splitX + 3, Offset + 2},
		{Offset, splitY}, {splitX, splitY + 2}} {
		if c := img.RGBAAt(p.X, p.Y); c != gray {
			t.Errorf("pixel %v: expected %v but got %v", p, gray, c)
		}
	}
	if c := img.RGBAAt(Offset+4, Offset); c != (color.RGBA{0, 0, 0, 0xff}) {
		t.Errorf("margin should be black, got %v", c)
	}
}

func TestWindowShow(t *testing.T) {
	cfg := doomtest.Config(1)
	w := NewWindow("test", 8, 6, 50)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := w.Show(testState(cfg), cfg); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Errorf("frames were not throttled (%v)", elapsed)
	}
	w.Close()
	if err := w.Show(testState(cfg), cfg); err != ErrWindowClosed {
		t.Errorf("expected ErrWindowClosed but got %v", err)
	}
	select {
	case <-w.Done():
	default:
		t.Error("window should be done")
	}
}

func TestWindowSetFPS(t *testing.T) {
	w := NewWindow("test", 8, 6, 0)
	var setter doom.FPSSetter = w
	setter.SetFPS(20)

	cfg := doomtest.Config(1)
	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := w.Show(testState(cfg), cfg); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 45*time.Millisecond {
		t.Errorf("frames were not throttled (%v)", elapsed)
	}
}

func TestKeyAgent(t *testing.T) {
	w := NewWindow("test", 8, 6, 0)
	agent := &KeyAgent{Window: w, Noop: 6}
	if a := agent.Act(nil); a != 6 {
		t.Errorf("expected noop but got %d", a)
	}
	w.pressed = []rune{'x', 'd'}
	if a := agent.Act(nil); a != doom.DefaultKeyMap['d'] {
		t.Errorf("expected %d but got %d", doom.DefaultKeyMap['d'], a)
	}
}
