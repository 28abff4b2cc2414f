package train

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/results"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/essentials"
	"golang.org/x/sync/errgroup"
)

// BestModelName is the file name of the best agent in an
// Evaluator's BestModelDir.
const BestModelName = "best_model"

// Evaluation is the result of Evaluator.Evaluate.
type Evaluation struct {
	Steps      int
	Episodes   int
	MeanReward float64
	StdReward  float64

	// Best is set if the evaluation beat every previous
	// one.
	Best bool
}

// Evaluator periodically measures an agent on separate
// environments and keeps the best version of it.
//
// Actions are picked greedily during evaluation.
type Evaluator struct {
	Agent   *Agent
	Envs    []doom.RLEnv
	Creator anyvec.Creator

	// EvalFreq is the number of training timesteps
	// between evaluations.
	EvalFreq int

	// Episodes is the number of episodes per evaluation.
	Episodes int

	// BestModelDir, if set, is where the best agent is
	// saved.
	BestModelDir string

	// Store, if set, records every evaluation under the
	// names Run and Env.
	Store *results.Store
	Run   string
	Env   string

	Logger Logger

	lastEval int
	best     *float64
}

// Callback evaluates the agent once every EvalFreq steps.
// It can be passed to Trainer.Run.
func (e *Evaluator) Callback(ctx context.Context, stats *BatchStats) error {
	if e.EvalFreq <= 0 || stats.TotalSteps-e.lastEval < e.EvalFreq {
		return nil
	}
	e.lastEval = stats.TotalSteps
	eval, err := e.Evaluate(ctx)
	if err != nil {
		return err
	}
	eval.Steps = stats.TotalSteps
	return e.record(eval)
}

// Evaluate runs the evaluation episodes.
func (e *Evaluator) Evaluate(ctx context.Context) (eval *Evaluation, err error) {
	defer essentials.AddCtxTo("evaluate", &err)
	if len(e.Envs) == 0 {
		return nil, errors.New("no environments")
	}
	c := e.Creator
	if c == nil {
		c = anyvec32.CurrentCreator()
	}

	var lock sync.Mutex
	var totals []float64
	g, ctx := errgroup.WithContext(ctx)
	for i, env := range e.Envs {
		episodes := e.Episodes / len(e.Envs)
		if i < e.Episodes%len(e.Envs) {
			episodes++
		}
		env := env
		g.Go(func() error {
			for j := 0; j < episodes; j++ {
				total, err := RunEpisode(ctx, c, e.Agent, env)
				if err != nil {
					return err
				}
				lock.Lock()
				totals = append(totals, total)
				lock.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	eval = &Evaluation{Episodes: len(totals)}
	eval.MeanReward, eval.StdReward = MeanStd(totals)
	return eval, nil
}

func (e *Evaluator) record(eval *Evaluation) error {
	if e.best == nil || eval.MeanReward > *e.best {
		eval.Best = true
		mean := eval.MeanReward
		e.best = &mean
		if e.BestModelDir != "" {
			if err := os.MkdirAll(e.BestModelDir, 0o755); err != nil {
				return err
			}
			if err := e.Agent.Save(filepath.Join(e.BestModelDir, BestModelName)); err != nil {
				return err
			}
		}
	}
	if e.Store != nil {
		err := e.Store.SaveEval(&results.Eval{
			Run:        e.Run,
			Env:        e.Env,
			Steps:      eval.Steps,
			Episodes:   eval.Episodes,
			MeanReward: eval.MeanReward,
			StdReward:  eval.StdReward,
		})
		if err != nil {
			return err
		}
	}
	if e.Logger != nil {
		e.Logger.LogEval(eval)
	}
	return nil
}

// RunEpisode plays one episode greedily and returns the
// total reward.
func RunEpisode(ctx context.Context, c anyvec.Creator, agent *Agent,
	env doom.RLEnv) (float64, error) {
	obs, err := env.Reset()
	if err != nil {
		return 0, err
	}
	var total float64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		var rew float64
		var done bool
		obs, rew, done, err = env.Step(agent.Act(c, obs))
		if err != nil {
			return total, err
		}
		total += rew
		if done {
			return total, nil
		}
	}
}
