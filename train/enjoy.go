package train

import (
	"context"

	doom "github.com/aleskucera/DOOM"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// Enjoy lets a trained agent play for the given number of
// steps in each env, calling render after every step.
//
// Finished episodes are restarted. The total rewards of
// the episodes which finished are returned.
func Enjoy(ctx context.Context, c anyvec.Creator, agent *Agent, envs []doom.RLEnv,
	steps int, render func() error) (totals []float64, err error) {
	defer essentials.AddCtxTo("enjoy", &err)

	wrapped := make([]doom.RLEnv, len(envs))
	obs := make([][]float64, len(envs))
	running := make([]float64, len(envs))
	for i, env := range envs {
		wrapped[i] = &doom.CallbackEnv{RLEnv: env, AfterStep: render}
		obs[i], err = wrapped[i].Reset()
		if err != nil {
			return nil, err
		}
	}

	for step := 0; step < steps; step++ {
		for i, env := range wrapped {
			if err := ctx.Err(); err != nil {
				return totals, err
			}
			o, rew, done, err := env.Step(agent.Act(c, obs[i]))
			if err != nil {
				return totals, err
			}
			running[i] += rew
			obs[i] = o
			if done {
				totals = append(totals, running[i])
				running[i] = 0
				if obs[i], err = env.Reset(); err != nil {
					return totals, err
				}
			}
		}
	}
	return totals, nil
}
