package render

import (
	"errors"
	"image"
	"strings"
	"sync"
	"time"

	doom "github.com/aleskucera/DOOM"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ErrWindowClosed is returned by Show once the window is
// gone.
var ErrWindowClosed = errors.New("window closed")

// Window shows composed frames in a desktop window.
//
// Show may be called from any goroutine, but Run must be
// called on the main goroutine, as ebiten requires.
type Window struct {
	title  string
	width  int
	height int

	// FPS limits how often Show returns.
	// Zero means no limit.
	FPS int

	lock     sync.Mutex
	frame    *image.RGBA
	dirty    bool
	pressed  []rune
	lastShow time.Time

	closeOnce sync.Once
	closed    chan struct{}
	image     *ebiten.Image
	keyBuf    []ebiten.Key
}

// NewWindow creates a window for frames of the given
// engine resolution.
func NewWindow(title string, screenWidth, screenHeight, fps int) *Window {
	w, h := WindowSize(screenWidth, screenHeight)
	return &Window{
		title:  title,
		width:  w,
		height: h,
		FPS:    fps,
		closed: make(chan struct{}),
	}
}

// Show composes a state and queues it for drawing.
func (w *Window) Show(state *doom.State, cfg *doom.Config) error {
	select {
	case <-w.closed:
		return ErrWindowClosed
	default:
	}
	frame, err := Compose(state, cfg)
	if err != nil {
		return err
	}

	w.lock.Lock()
	w.frame = frame
	w.dirty = true
	var wait time.Duration
	if w.FPS > 0 {
		wait = time.Second/time.Duration(w.FPS) - time.Since(w.lastShow)
	}
	w.lock.Unlock()

	if wait > 0 {
		select {
		case <-w.closed:
			return ErrWindowClosed
		case <-time.After(wait):
		}
	}

	w.lock.Lock()
	w.lastShow = time.Now()
	w.lock.Unlock()
	return nil
}

// SetFPS changes the frame rate limit.
// It implements doom.FPSSetter.
func (w *Window) SetFPS(fps int) {
	w.lock.Lock()
	w.FPS = fps
	w.lock.Unlock()
}

// Pressed returns the letter keys held down during the
// last window update, in lower case.
func (w *Window) Pressed() []rune {
	w.lock.Lock()
	defer w.lock.Unlock()
	return append([]rune(nil), w.pressed...)
}

// Run opens the window and blocks until it is closed,
// either by the user or by Close.
func (w *Window) Run() error {
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowSize(w.width, w.height)
	defer w.Close()
	return ebiten.RunGame(w)
}

// Done is closed once the window closes.
func (w *Window) Done() <-chan struct{} {
	return w.closed
}

// Close closes the window.
func (w *Window) Close() error {
	w.closeOnce.Do(func() {
		close(w.closed)
	})
	return nil
}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	select {
	case <-w.closed:
		return ebiten.Termination
	default:
	}
	w.keyBuf = inpututil.AppendPressedKeys(w.keyBuf[:0])
	var letters []rune
	for _, k := range w.keyBuf {
		name := strings.ToLower(k.String())
		if len(name) == 1 && name[0] >= 'a' && name[0] <= 'z' {
			letters = append(letters, rune(name[0]))
		}
	}
	w.lock.Lock()
	w.pressed = letters
	w.lock.Unlock()
	return nil
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	w.lock.Lock()
	if w.dirty {
		if w.image == nil {
			w.image = ebiten.NewImage(w.width, w.height)
		}
		w.image.WritePixels(w.frame.Pix)
		w.dirty = false
	}
	w.lock.Unlock()
	if w.image != nil {
		screen.DrawImage(w.image, nil)
	}
}

// Layout implements ebiten.Game.
func (w *Window) Layout(_, _ int) (int, int) {
	return w.width, w.height
}
