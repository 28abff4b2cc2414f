// Package gymdoom runs games on a gym-socket-api server.
//
// The server owns the engine; this package only sends
// actions and receives screen buffers. Servers expose
// nothing but the screen, so depth, labels, automap and
// game variables are not available.
package gymdoom

import (
	"errors"
	"fmt"
	"math"

	doom "github.com/aleskucera/DOOM"
	"github.com/charmbracelet/log"
	"github.com/unixpickle/essentials"
	gym "github.com/unixpickle/gym-socket-api/binding-go"
)

// DefaultHost is the usual address of a local server.
const DefaultHost = "localhost:5001"

var errSeedUnsupported = errors.New("remote cannot be seeded")

// Dialer creates Games on a gym-socket-api server.
type Dialer struct {
	Host string

	// EnvName is the name of the remote environment.
	// If empty, the ID of the dialed spec is used.
	EnvName string

	// MonitorDir, if set, makes the server record
	// episode statistics into this directory.
	MonitorDir string

	Logger *log.Logger
}

// Dial creates a Game for a registered environment.
// It implements doom.GameDialer.
func (d *Dialer) Dial(spec *doom.Spec) (doom.Game, error) {
	name := d.EnvName
	if name == "" {
		name = spec.ID
	}
	host := d.Host
	if host == "" {
		host = DefaultHost
	}
	g := NewGame(func() (Remote, error) {
		env, err := gym.Make(host, name)
		if err != nil {
			return nil, err
		}
		if d.MonitorDir != "" {
			if err := env.Monitor(d.MonitorDir, false, false, false); err != nil {
				env.Close()
				return nil, err
			}
		}
		return &gymRemote{env: env}, nil
	})
	if d.Logger != nil {
		g.logger = d.Logger
	}
	return g, nil
}

// Game is a doom.Game played on a Remote.
type Game struct {
	connect func() (Remote, error)
	logger  *log.Logger

	remote Remote
	cfg    *doom.Config

	seed     *int64
	state    *doom.State
	finished bool
}

// NewGame creates a Game which connects to its Remote
// during Init.
func NewGame(connect func() (Remote, error)) *Game {
	return &Game{
		connect:  connect,
		logger:   log.Default(),
		finished: true,
	}
}

// Init checks that the config only needs the screen and
// connects to the remote.
func (g *Game) Init(cfg *doom.Config) (err error) {
	defer essentials.AddCtxTo("init remote game", &err)
	if g.remote != nil {
		return errors.New("already initialized")
	}
	switch {
	case cfg.DepthBuffer:
		return errors.New("depth buffer is not supported")
	case cfg.LabelsBuffer:
		return errors.New("labels buffer is not supported")
	case cfg.AutomapBuffer:
		return errors.New("automap buffer is not supported")
	case len(cfg.GameVariables) > 0:
		return errors.New("game variables are not supported")
	}
	remote, err := g.connect()
	if err != nil {
		return err
	}
	g.remote = remote
	g.cfg = cfg
	return nil
}

// NewEpisode resets the remote environment.
func (g *Game) NewEpisode() (err error) {
	defer essentials.AddCtxTo("new episode", &err)
	if g.remote == nil {
		return errors.New("not initialized")
	}
	if g.seed != nil {
		seed := *g.seed
		g.seed = nil
		if s, ok := g.remote.(Seeder); ok {
			if err := s.Seed(seed); err == errSeedUnsupported {
				g.logger.Warn("remote ignores seeds", "seed", seed)
			} else if err != nil {
				return err
			}
		} else {
			g.logger.Warn("remote ignores seeds", "seed", seed)
		}
	}
	obs, err := g.remote.Reset()
	if err != nil {
		return err
	}
	g.finished = false
	return g.setScreen(obs, 0)
}

// SetSeed seeds the next episode, if the remote allows.
func (g *Game) SetSeed(seed int64) {
	g.seed = &seed
}

// State returns the latest frame.
func (g *Game) State() *doom.State {
	if g.finished {
		return nil
	}
	return g.state
}

// MakeAction takes the action of the most pressed button once
// per tic.
func (g *Game) MakeAction(buttons []float64, tics int) (reward float64, err error) {
	defer essentials.AddCtxTo("make action", &err)
	if g.remote == nil {
		return 0, errors.New("not initialized")
	}
	if g.finished {
		return 0, errors.New("episode is finished")
	}
	if len(buttons) != len(g.cfg.Buttons) {
		return 0, fmt.Errorf("expected %d buttons but got %d", len(g.cfg.Buttons),
			len(buttons))
	}
	action := pressedButton(buttons)
	for i := 0; i < tics; i++ {
		obs, rew, done, err := g.remote.Step(action)
		if err != nil {
			return reward, err
		}
		reward += rew
		if done {
			g.finished = true
			return reward, nil
		}
		if err := g.setScreen(obs, g.state.Tic+1); err != nil {
			return reward, err
		}
	}
	return reward, nil
}

// IsEpisodeFinished checks if the remote reported the end
// of the episode.
func (g *Game) IsEpisodeFinished() bool {
	return g.finished
}

// Close closes the remote.
func (g *Game) Close() error {
	if g.remote == nil {
		return nil
	}
	return g.remote.Close()
}

func (g *Game) setScreen(obs []float64, tic int) error {
	size := g.cfg.ScreenWidth * g.cfg.ScreenHeight * g.cfg.ScreenChannels()
	if len(obs) != size {
		return fmt.Errorf("%w: screen has %d values, expected %d",
			doom.ErrShapeMismatch, len(obs), size)
	}
	screen := make([]uint8, size)
	for i, x := range obs {
		screen[i] = uint8(math.Max(0, math.Min(255, essentials.Round(x))))
	}
	g.state = &doom.State{Number: tic, Tic: tic, Screen: screen}
	return nil
}

// pressedButton returns the index of the button pressed
// hardest.
func pressedButton(buttons []float64) int {
	return essentials.MaxIndex(buttons)
}
