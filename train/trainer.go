package train

import (
	"context"
	"errors"

	doom "github.com/aleskucera/DOOM"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyrl"
	"github.com/unixpickle/anyrl/anypg"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/lazyseq"
)

// Defaults for Trainer fields.
const (
	DefaultEpochs   = 10
	DefaultStepSize = 1e-4
	DefaultDiscount = 0.99
	DefaultLambda   = 0.95
)

// BatchStats summarizes one batch of training.
type BatchStats struct {
	Batch int

	// Steps is the number of timesteps in the batch.
	Steps int

	// TotalSteps counts timesteps in this and every
	// previous batch.
	TotalSteps int

	Episodes   int
	MeanReward float64
	StdReward  float64
}

// A Callback is called after every batch.
// Returning an error stops training.
type Callback func(ctx context.Context, stats *BatchStats) error

// Trainer trains an Agent with PPO.
type Trainer struct {
	Agent *Agent
	Envs  []doom.RLEnv

	// Creator is used for vectors.
	// If nil, anyvec32 is used.
	Creator anyvec.Creator

	// StepsPerBatch is the minimum number of timesteps
	// gathered for each batch.
	StepsPerBatch int

	// Epochs is the number of PPO steps per batch.
	// If 0, DefaultEpochs is used.
	Epochs int

	// StepSize is the learning rate.
	// If 0, DefaultStepSize is used.
	StepSize float64

	// PPO settings.
	// Zero values select the defaults.
	Discount float64
	Lambda   float64
	Epsilon  float64

	// EntropyReg is the coefficient of the entropy
	// bonus, or 0 for none.
	EntropyReg float64

	Logger Logger
}

// Run trains until totalSteps timesteps are gathered or
// the context is done.
//
// Batches are never interrupted, so the agent is in a
// consistent state when Run returns.
func (t *Trainer) Run(ctx context.Context, totalSteps int,
	callbacks ...Callback) (err error) {
	defer essentials.AddCtxTo("train", &err)
	if t.StepsPerBatch <= 0 {
		return errors.New("steps per batch must be positive")
	}

	c := t.creator()
	actionSpace := anyrl.Softmax{}
	roller := t.Agent.roller(c)
	ppo := &anypg.PPO{
		Params:      t.Agent.Parameters(),
		Base:        applyNet(t.Agent.Base),
		Actor:       applyNet(t.Agent.Actor),
		Critic:      applyNet(t.Agent.Critic),
		ActionSpace: actionSpace,
		Discount:    valueOr(t.Discount, DefaultDiscount),
		Lambda:      valueOr(t.Lambda, DefaultLambda),
		Epsilon:     t.Epsilon,
	}
	if t.EntropyReg != 0 {
		ppo.Regularizer = &anypg.EntropyReg{
			Entropyer: actionSpace,
			Coeff:     t.EntropyReg,
		}
	}

	var transformer anysgd.Adam
	stepSize := valueOr(t.StepSize, DefaultStepSize)
	epochs := t.Epochs
	if epochs == 0 {
		epochs = DefaultEpochs
	}

	var steps int
	for batch := 0; steps < totalSteps; batch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := GatherRollouts(ctx, c, roller, t.Envs, t.StepsPerBatch)
		if err != nil {
			return err
		}

		stats := &BatchStats{
			Batch:    batch,
			Steps:    r.NumSteps(),
			Episodes: len(r.Rewards),
		}
		steps += stats.Steps
		stats.TotalSteps = steps
		stats.MeanReward, stats.StdReward = MeanStd(EpisodeRewards(r))
		if t.Logger != nil {
			t.Logger.LogBatch(stats)
		}

		for i := 0; i < epochs; i++ {
			grad := ppo.Run(r)
			g := transformer.Transform(grad)
			g.Scale(c.MakeNumeric(stepSize))
			g.AddToVars()
		}

		for _, cb := range callbacks {
			if err := cb(ctx, stats); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Trainer) creator() anyvec.Creator {
	if t.Creator != nil {
		return t.Creator
	}
	return anyvec32.CurrentCreator()
}

func applyNet(net anynet.Net) func(lazyseq.Rereader) lazyseq.Rereader {
	return func(in lazyseq.Rereader) lazyseq.Rereader {
		return lazyseq.Map(in, net.Apply)
	}
}

func valueOr(x, def float64) float64 {
	if x == 0 {
		return def
	}
	return x
}
