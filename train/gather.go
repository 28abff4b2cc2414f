package train

import (
	"context"
	"errors"
	"sync"

	doom "github.com/aleskucera/DOOM"
	"github.com/unixpickle/anyrl"
	"github.com/unixpickle/anyvec"
)

// GatherRollouts runs whole episodes on every env in
// parallel until at least steps timesteps are recorded,
// then packs the episodes into one RolloutSet.
//
// Episodes in progress when the step count is reached are
// still finished and included.
func GatherRollouts(ctx context.Context, c anyvec.Creator, roller *anyrl.RNNRoller,
	envs []doom.RLEnv, steps int) (*anyrl.RolloutSet, error) {
	if len(envs) == 0 {
		return nil, errors.New("gather rollouts: no environments")
	}
	resChan := make(chan *anyrl.RolloutSet, len(envs))
	errChan := make(chan error, len(envs))
	requests := make(chan struct{}, len(envs))
	for range envs {
		requests <- struct{}{}
	}

	var wg sync.WaitGroup
	for _, env := range envs {
		wg.Add(1)
		go func(env anyrl.Env) {
			defer wg.Done()
			for range requests {
				rollout, err := roller.Rollout(env)
				if err != nil {
					errChan <- err
					return
				}
				resChan <- rollout
			}
		}(env)
	}
	go func() {
		wg.Wait()
		close(resChan)
	}()

	var res []*anyrl.RolloutSet
	var totalSteps int
	var closed bool
	for item := range resChan {
		res = append(res, item)
		totalSteps += item.NumSteps()
		if closed {
			continue
		}
		if totalSteps >= steps || ctx.Err() != nil || len(errChan) > 0 {
			close(requests)
			closed = true
		} else {
			requests <- struct{}{}
		}
	}

	select {
	case err := <-errChan:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return anyrl.PackRolloutSets(c, res), nil
}

// EpisodeRewards returns the total reward of each episode
// in a RolloutSet.
func EpisodeRewards(r *anyrl.RolloutSet) []float64 {
	var res []float64
	for _, seq := range r.Rewards {
		var total float64
		for _, x := range seq {
			total += x
		}
		res = append(res, total)
	}
	return res
}
