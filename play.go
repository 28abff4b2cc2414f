package doom

import (
	"context"
	"math/rand"
	"time"

	"github.com/unixpickle/essentials"
)

// An Agent picks actions from observations.
type Agent interface {
	Act(obs Observation) int
}

// RandomAgent picks uniformly random actions.
type RandomAgent struct {
	Space Discrete

	// Rand is used for sampling.
	// If nil, the global source is used.
	Rand *rand.Rand
}

// Act samples an action.
func (r *RandomAgent) Act(obs Observation) int {
	return r.Space.Sample(r.Rand)
}

// DefaultKeyMap maps keyboard keys to the actions of the
// multiplayer scenario, for manual play.
var DefaultKeyMap = map[rune]int{
	'w': 0,
	's': 1,
	'a': 2,
	'd': 3,
	'q': 4,
	'e': 5,
	'r': 6,
}

// PlayEpisodes runs an agent through whole episodes and
// returns the total reward of each one.
//
// If seed is non-nil, every episode is reset with it.
// A dead player is respawned when the game allows it.
// The delay is slept after every step, which makes the
// game watchable at human speed.
func PlayEpisodes(ctx context.Context, env *Env, agent Agent, episodes int,
	seed *int64, delay time.Duration) (totals []float64, err error) {
	defer essentials.AddCtxTo("play episodes", &err)
	for i := 0; i < episodes; i++ {
		obs, err := env.Reset(seed)
		if err != nil {
			return totals, err
		}
		var total float64
		for done := false; !done; {
			var rew float64
			var terminated, truncated bool
			obs, rew, terminated, truncated, err = env.Step(agent.Act(obs))
			if err != nil {
				return totals, err
			}
			total += rew
			done = terminated || truncated
			if !done {
				if _, err := env.RespawnIfDead(); err != nil {
					return totals, err
				}
			}
			if delay > 0 {
				select {
				case <-ctx.Done():
					return totals, ctx.Err()
				case <-time.After(delay):
				}
			} else if err := ctx.Err(); err != nil {
				return totals, err
			}
		}
		totals = append(totals, total)
	}
	return totals, nil
}
