package doom

import (
	"io"

	"github.com/unixpickle/anyrl"
	"github.com/unixpickle/essentials"
)

// RLEnv is an anyrl.Env which holds resources that need
// to be released.
type RLEnv interface {
	anyrl.Env
	io.Closer
}

// CloseEnvs closes every environment in the list.
func CloseEnvs(envs []RLEnv) {
	for _, e := range envs {
		e.Close()
	}
}

// AnyEnv adapts an Env to anyrl.
//
// Observations are the screen buffer, flattened.
// Actions are one-hot vectors (or any vector whose
// largest component selects the action).
type AnyEnv struct {
	Env *Env

	// Seed, if non-nil, is passed to every Reset.
	Seed *int64
}

// ObservationSize returns the length of observation
// vectors.
func (a *AnyEnv) ObservationSize() int {
	return a.Env.ObservationSpace().Spaces[KeyScreen].Size()
}

// Reset starts a new episode.
func (a *AnyEnv) Reset() (observation []float64, err error) {
	obs, err := a.Env.Reset(a.Seed)
	if err != nil {
		return nil, err
	}
	return obs[KeyScreen].Float64(), nil
}

// Step takes the action with the highest value.
func (a *AnyEnv) Step(action []float64) (observation []float64, reward float64,
	done bool, err error) {
	defer essentials.AddCtxTo("step anyrl env", &err)
	obs, reward, terminated, truncated, err := a.Env.Step(maxIndex(action))
	if err != nil {
		return nil, 0, false, err
	}
	return obs[KeyScreen].Float64(), reward, terminated || truncated, nil
}

// Close closes the Env.
func (a *AnyEnv) Close() error {
	return a.Env.Close()
}

func maxIndex(v []float64) int {
	if len(v) == 0 {
		return -1
	}
	var idx int
	for i, x := range v {
		if x > v[idx] {
			idx = i
		}
	}
	return idx
}
