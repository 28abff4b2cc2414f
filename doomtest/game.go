// Package doomtest provides a scripted engine for tests.
package doomtest

import (
	"errors"
	"sync"

	doom "github.com/aleskucera/DOOM"
)

// Game is a fake doom.Game whose episodes last a fixed
// number of tics.
//
// The reward for an action is the index of the pressed
// button plus one, times the number of tics.
// Every buffer enabled in the config is filled with the
// low byte of the current tic.
type Game struct {
	// EpisodeLength is the number of tics per episode.
	EpisodeLength int

	// InitErr, if set, is returned by Init.
	InitErr error

	// DeathTic, if positive, kills the player once per
	// episode when the tic counter reaches it.
	DeathTic int

	mu       sync.Mutex
	cfg      *doom.Config
	tic      int
	episodes int
	seed     *int64
	closed   bool
	died     bool
	dead     bool

	Actions  [][]float64
	Seeds    []int64
	Respawns int
	Commands []string
}

// Init records the config.
func (g *Game) Init(cfg *doom.Config) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.InitErr != nil {
		return g.InitErr
	}
	if g.cfg != nil {
		return errors.New("doomtest: already initialized")
	}
	g.cfg = cfg
	return nil
}

// Config returns the config passed to Init.
func (g *Game) Config() *doom.Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

// NewEpisode restarts the tic counter.
func (g *Game) NewEpisode() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cfg == nil {
		return errors.New("doomtest: not initialized")
	}
	if g.seed != nil {
		g.Seeds = append(g.Seeds, *g.seed)
		g.seed = nil
	}
	g.tic = 0
	g.episodes++
	g.died = false
	g.dead = false
	return nil
}

// Episodes returns the number of started episodes.
func (g *Game) Episodes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.episodes
}

// SetSeed records the seed for the next episode.
func (g *Game) SetSeed(seed int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seed = &seed
}

// State returns a frame filled with the tic number.
func (g *Game) State() *doom.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.finished() {
		return nil
	}
	cfg := g.cfg
	pixels := cfg.ScreenWidth * cfg.ScreenHeight
	fill := func(n int) []uint8 {
		res := make([]uint8, n)
		for i := range res {
			res[i] = uint8(g.tic)
		}
		return res
	}
	s := &doom.State{
		Number: g.tic,
		Tic:    g.tic,
		Screen: fill(pixels * cfg.ScreenChannels()),
	}
	if cfg.DepthBuffer {
		s.Depth = fill(pixels)
	}
	if cfg.LabelsBuffer {
		s.Labels = fill(pixels)
	}
	if cfg.AutomapBuffer {
		s.Automap = fill(pixels * cfg.ScreenChannels())
	}
	for i := range cfg.GameVariables {
		s.GameVariables = append(s.GameVariables, float64(i+g.tic))
	}
	return s
}

// MakeAction advances the tic counter.
func (g *Game) MakeAction(buttons []float64, tics int) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cfg == nil {
		return 0, errors.New("doomtest: not initialized")
	}
	if len(buttons) != len(g.cfg.Buttons) {
		return 0, errors.New("doomtest: wrong number of buttons")
	}
	if g.finished() {
		return 0, errors.New("doomtest: episode finished")
	}
	g.Actions = append(g.Actions, append([]float64(nil), buttons...))
	var pressed int
	for i, x := range buttons {
		if x != 0 {
			pressed = i
		}
	}
	if tics > g.EpisodeLength-g.tic {
		tics = g.EpisodeLength - g.tic
	}
	g.tic += tics
	if g.DeathTic > 0 && !g.died && g.tic >= g.DeathTic {
		g.died = true
		g.dead = true
	}
	return float64((pressed + 1) * tics), nil
}

// IsPlayerDead checks if the player died and was not
// respawned yet.
func (g *Game) IsPlayerDead() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dead
}

// RespawnPlayer brings a dead player back.
func (g *Game) RespawnPlayer() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dead {
		g.dead = false
		g.Respawns++
	}
	return nil
}

// SendGameCommand records the command.
// The "stop" command ends the episode.
func (g *Game) SendGameCommand(cmd string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cfg == nil {
		return errors.New("doomtest: not initialized")
	}
	g.Commands = append(g.Commands, cmd)
	if cmd == "stop" {
		g.tic = g.EpisodeLength
	}
	return nil
}

// IsEpisodeFinished checks if EpisodeLength tics passed.
func (g *Game) IsEpisodeFinished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finished()
}

// Close marks the game as closed.
func (g *Game) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

// Closed checks if Close was called.
func (g *Game) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

func (g *Game) finished() bool {
	return g.cfg == nil || g.episodes == 0 || g.tic >= g.EpisodeLength
}

// Config creates a small config for tests.
func Config(buttons int) *doom.Config {
	cfg := doom.DefaultConfig()
	cfg.ScreenWidth = 8
	cfg.ScreenHeight = 6
	cfg.ScreenFormat = doom.RGB24
	for i := 0; i < buttons; i++ {
		cfg.Buttons = append(cfg.Buttons, "BUTTON")
	}
	return cfg
}
