package gymdoom

import (
	"github.com/unixpickle/essentials"
	gym "github.com/unixpickle/gym-socket-api/binding-go"
)

// Remote is a connection to one remote environment with
// a flat observation and a discrete action space.
type Remote interface {
	Reset() (obs []float64, err error)
	Step(action int) (obs []float64, reward float64, done bool, err error)
	Close() error
}

// A Seeder is a Remote that can seed its environment.
type Seeder interface {
	Seed(seed int64) error
}

type gymRemote struct {
	env gym.Env
}

func (g *gymRemote) Reset() (obs []float64, err error) {
	defer essentials.AddCtxTo("reset remote", &err)
	raw, err := g.env.Reset()
	if err != nil {
		return nil, err
	}
	err = raw.Unmarshal(&obs)
	return
}

func (g *gymRemote) Step(action int) (obs []float64, reward float64, done bool,
	err error) {
	defer essentials.AddCtxTo("step remote", &err)
	raw, reward, done, _, err := g.env.Step(action)
	if err != nil {
		return nil, 0, false, err
	}
	err = raw.Unmarshal(&obs)
	return
}

func (g *gymRemote) Seed(seed int64) error {
	if s, ok := g.env.(Seeder); ok {
		return s.Seed(seed)
	}
	return errSeedUnsupported
}

func (g *gymRemote) Close() error {
	return g.env.Close()
}
