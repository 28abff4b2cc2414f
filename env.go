package doom

import (
	"errors"
	"fmt"
	"image"

	"github.com/charmbracelet/log"
	"github.com/unixpickle/essentials"
)

var (
	ErrNotReset       = errors.New("call Reset before Step")
	ErrInvalidAction  = errors.New("action out of range")
	ErrShapeMismatch  = errors.New("buffer does not match observation space")
	ErrNoState        = errors.New("no state to render")
	ErrNoDisplay      = errors.New("human render mode requires a display")
	ErrUnsupportedRGB = errors.New("unsupported screen format for images")
	ErrUnsupported    = errors.New("game does not support this")
)

// RenderMode selects what Render does.
type RenderMode int

const (
	RenderNone RenderMode = iota
	RenderHuman
	RenderRGBArray
)

// ParseRenderMode parses "human", "rgb_array", or "".
func ParseRenderMode(s string) (RenderMode, error) {
	switch s {
	case "", "none":
		return RenderNone, nil
	case "human":
		return RenderHuman, nil
	case "rgb_array":
		return RenderRGBArray, nil
	}
	return RenderNone, fmt.Errorf("unknown render mode: %s", s)
}

// A Display shows frames to a person.
type Display interface {
	Show(state *State, cfg *Config) error
	Close() error
}

// An FPSSetter is a Display which limits its frame rate.
type FPSSetter interface {
	SetFPS(fps int)
}

// An Option configures an Env.
type Option func(e *Env)

// WithRenderMode sets the render mode.
func WithRenderMode(mode RenderMode) Option {
	return func(e *Env) {
		e.renderMode = mode
	}
}

// WithDisplay sets the display used in human mode.
func WithDisplay(d Display) Option {
	return func(e *Env) {
		e.display = d
	}
}

// WithRenderFPS limits the frame rate of the display in
// human mode. The display must implement FPSSetter.
func WithRenderFPS(fps int) Option {
	return func(e *Env) {
		e.renderFPS = fps
	}
}

// WithFrameSkip sets the number of tics per action.
func WithFrameSkip(tics int) Option {
	return func(e *Env) {
		e.frameSkip = tics
	}
}

// WithLogger sets the logger for warnings.
func WithLogger(l *log.Logger) Option {
	return func(e *Env) {
		e.logger = l
	}
}

// Env exposes a Game as an environment with dictionary
// observations and discrete actions.
//
// The window of the engine is always hidden; use Render
// to see the game.
//
// Observations contain:
//
//	"screen"         (H, W, C), always present
//	"depth"          (H, W, 1), if enabled by the config
//	"labels"         (H, W, 1), if enabled by the config
//	"automap"        (H, W, C), if enabled by the config
//	"game_variables" (N,), if the config lists any
//
// C is 1 for GRAY8 and 3 otherwise.
type Env struct {
	game   Game
	cfg    *Config
	logger *log.Logger

	renderMode RenderMode
	display    Display
	renderFPS  int
	frameSkip  int

	obsSpace    *DictSpace
	actionSpace Discrete

	state *State
	reset bool
}

// NewEnv creates an Env and initializes the game.
func NewEnv(game Game, cfg *Config, opts ...Option) (env *Env, err error) {
	defer essentials.AddCtxTo("create env", &err)

	e := &Env{
		game:      game,
		cfg:       cfg.Clone(),
		logger:    log.Default(),
		frameSkip: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.renderMode == RenderHuman && e.display == nil {
		return nil, ErrNoDisplay
	}
	if e.renderFPS < 0 {
		return nil, fmt.Errorf("invalid render FPS: %d", e.renderFPS)
	}
	if e.renderFPS > 0 && e.display != nil {
		if s, ok := e.display.(FPSSetter); ok {
			s.SetFPS(e.renderFPS)
		} else {
			e.logger.Warn("display cannot limit its frame rate", "fps", e.renderFPS)
		}
	}
	if e.frameSkip < 1 {
		return nil, fmt.Errorf("invalid frame skip: %d", e.frameSkip)
	}

	e.cfg.WindowVisible = false
	if f := e.cfg.ScreenFormat; f != RGB24 && f != GRAY8 {
		e.logger.Warn("only RGB24 and GRAY8 are supported, forcing RGB24",
			"format", f)
		e.cfg.ScreenFormat = RGB24
	}
	if len(e.cfg.Buttons) == 0 {
		return nil, errors.New("config has no available buttons")
	}

	e.obsSpace = observationSpace(e.cfg)
	e.actionSpace = Discrete{N: len(e.cfg.Buttons)}

	if err := game.Init(e.cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// Config returns the settings the game was started with.
func (e *Env) Config() *Config {
	return e.cfg
}

// ObservationSpace returns the space of observations.
func (e *Env) ObservationSpace() *DictSpace {
	return e.obsSpace
}

// ActionSpace returns the space of actions.
func (e *Env) ActionSpace() Discrete {
	return e.actionSpace
}

// FrameSkip returns the number of tics per action.
func (e *Env) FrameSkip() int {
	return e.frameSkip
}

// SetFrameSkip changes the number of tics per action.
func (e *Env) SetFrameSkip(tics int) {
	if tics < 1 {
		tics = 1
	}
	e.frameSkip = tics
}

// Game returns the underlying game.
func (e *Env) Game() Game {
	return e.game
}

// State returns the most recent frame, which is nil
// after the episode ends.
func (e *Env) State() *State {
	return e.state
}

// Reset starts a new episode.
// If seed is non-nil, the game is seeded first.
func (e *Env) Reset(seed *int64) (obs Observation, err error) {
	defer essentials.AddCtxTo("reset env", &err)
	if seed != nil {
		e.game.SetSeed(*seed)
	}
	if err := e.game.NewEpisode(); err != nil {
		return nil, err
	}
	e.state = e.game.State()
	e.reset = true
	return e.collectObservations()
}

// Step presses the button for the action for FrameSkip
// tics.
//
// After a terminal step, Reset must be called again.
// Episodes never get truncated by the Env itself, so
// truncated is always false; see MaxStepsEnv.
func (e *Env) Step(action int) (obs Observation, reward float64, terminated,
	truncated bool, err error) {
	defer essentials.AddCtxTo("step env", &err)
	if !e.actionSpace.Contains(action) {
		return nil, 0, false, false, fmt.Errorf("%w: %d", ErrInvalidAction, action)
	}
	if !e.reset {
		return nil, 0, false, false, ErrNotReset
	}

	reward, err = e.game.MakeAction(e.actionSpace.OneHot(action), e.frameSkip)
	if err != nil {
		return nil, 0, false, false, err
	}
	e.state = e.game.State()
	terminated = e.game.IsEpisodeFinished()
	if terminated {
		e.reset = false
	}

	if e.renderMode == RenderHuman && e.state != nil {
		if _, err := e.Render(); err != nil {
			return nil, 0, false, false, err
		}
	}
	obs, err = e.collectObservations()
	return obs, reward, terminated, false, err
}

// RespawnIfDead respawns the player if the game supports
// respawning and the player is dead.
// It reports whether the player was respawned.
func (e *Env) RespawnIfDead() (bool, error) {
	r, ok := e.game.(Respawner)
	if !ok || !r.IsPlayerDead() {
		return false, nil
	}
	if err := r.RespawnPlayer(); err != nil {
		return false, essentials.AddCtx("respawn player", err)
	}
	e.state = e.game.State()
	return true, nil
}

// SendGameCommand runs a console command, such as "stop",
// in the game.
func (e *Env) SendGameCommand(cmd string) error {
	c, ok := e.game.(Commander)
	if !ok {
		return fmt.Errorf("send %q: %w", cmd, ErrUnsupported)
	}
	if err := c.SendGameCommand(cmd); err != nil {
		return essentials.AddCtx("send "+cmd, err)
	}
	return nil
}

// Render shows or returns the current frame.
//
// In RGBArray mode, it returns the screen buffer.
// In Human mode, it sends the frame to the display and
// returns the screen buffer as well.
func (e *Env) Render() (image.Image, error) {
	if e.state == nil {
		return nil, ErrNoState
	}
	switch e.renderMode {
	case RenderHuman:
		if err := e.display.Show(e.state, e.cfg); err != nil {
			return nil, essentials.AddCtx("render", err)
		}
		return ScreenImage(e.state, e.cfg)
	case RenderRGBArray:
		return ScreenImage(e.state, e.cfg)
	}
	return nil, nil
}

// Close releases the display and the game.
func (e *Env) Close() error {
	var displayErr error
	if e.display != nil {
		displayErr = e.display.Close()
	}
	if err := e.game.Close(); err != nil {
		return err
	}
	return displayErr
}

func (e *Env) collectObservations() (Observation, error) {
	if e.state == nil {
		// There is no state on terminal steps.
		return e.obsSpace.Zero(), nil
	}
	obs := Observation{}
	buffers := map[string][]uint8{
		KeyScreen:  e.state.Screen,
		KeyDepth:   e.state.Depth,
		KeyLabels:  e.state.Labels,
		KeyAutomap: e.state.Automap,
	}
	for key, buffer := range buffers {
		box, ok := e.obsSpace.Spaces[key]
		if !ok {
			continue
		}
		if len(buffer) != box.Size() {
			return nil, fmt.Errorf("%w: %s has %d values, expected %d",
				ErrShapeMismatch, key, len(buffer), box.Size())
		}
		obs[key] = &Array{
			Shape: append([]int(nil), box.Shape...),
			Uint8: append([]uint8(nil), buffer...),
		}
	}
	if box, ok := e.obsSpace.Spaces[KeyGameVariables]; ok {
		vars := e.state.GameVariables
		if len(vars) != box.Size() {
			return nil, fmt.Errorf("%w: %s has %d values, expected %d",
				ErrShapeMismatch, KeyGameVariables, len(vars), box.Size())
		}
		arr := box.Zero()
		for i, x := range vars {
			arr.Float32[i] = float32(x)
		}
		obs[KeyGameVariables] = arr
	}
	return obs, nil
}

func observationSpace(cfg *Config) *DictSpace {
	h, w := cfg.ScreenHeight, cfg.ScreenWidth
	channels := cfg.ScreenChannels()
	spaces := map[string]*Box{
		KeyScreen: NewImageBox(h, w, channels),
	}
	if cfg.DepthBuffer {
		spaces[KeyDepth] = NewImageBox(h, w, 1)
	}
	if cfg.LabelsBuffer {
		spaces[KeyLabels] = NewImageBox(h, w, 1)
	}
	if cfg.AutomapBuffer {
		spaces[KeyAutomap] = NewImageBox(h, w, channels)
	}
	if n := len(cfg.GameVariables); n > 0 {
		spaces[KeyGameVariables] = NewFloatBox(n)
	}
	return &DictSpace{Spaces: spaces}
}
