// Package train trains and runs policies for doom
// environments.
package train

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyconv"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyrl"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// BaseOutSize is the size of the feature vector produced
// by the base of default agents.
const BaseOutSize = 256

// Agent is a feed-forward actor-critic.
//
// Observations are fed into Base.
// The output of Base is fed into Actor and Critic.
// The Actor produces softmax parameters for the action.
type Agent struct {
	Base, Actor, Critic anynet.Net
}

// NewAgent creates an agent with a convolutional base for
// frames of the given shape.
func NewAgent(c anyvec.Creator, height, width, channels,
	actions int) (*Agent, error) {
	markup := fmt.Sprintf(`
		Input(w=%d, h=%d, d=%d)
		Linear(scale=0.003921568627)
		Conv(w=8, h=8, n=32, sx=4, sy=4)
		ReLU
		Conv(w=4, h=4, n=64, sx=2, sy=2)
		ReLU
		FC(out=%d)
		ReLU
	`, width, height, channels, BaseOutSize)
	return NewAgentMarkup(c, markup, BaseOutSize, actions)
}

// NewAgentMarkup creates an agent whose base is described
// by anyconv markup and outputs baseOut values.
//
// The actor starts out with zero weights, giving uniform
// action probabilities.
func NewAgentMarkup(c anyvec.Creator, markup string, baseOut,
	actions int) (agent *Agent, err error) {
	defer essentials.AddCtxTo("create agent", &err)
	base, err := anyconv.FromMarkup(c, markup)
	if err != nil {
		return nil, err
	}
	net, ok := base.(anynet.Net)
	if !ok {
		return nil, fmt.Errorf("unexpected base type: %T", base)
	}
	return &Agent{
		Base:   net,
		Actor:  anynet.Net{anynet.NewFCZero(c, baseOut, actions)},
		Critic: anynet.Net{anynet.NewFCZero(c, baseOut, 1)},
	}, nil
}

// LoadAgent loads an agent saved with Save.
func LoadAgent(path string) (agent *Agent, err error) {
	defer essentials.AddCtxTo("load agent", &err)
	agent = &Agent{}
	if err := serializer.LoadAny(path, &agent.Base, &agent.Actor,
		&agent.Critic); err != nil {
		return nil, err
	}
	return agent, nil
}

// Save saves the agent to a file.
func (a *Agent) Save(path string) (err error) {
	defer essentials.AddCtxTo("save agent", &err)
	return serializer.SaveAny(path, a.Base, a.Actor, a.Critic)
}

// Copy produces a deep copy of the agent.
func (a *Agent) Copy() (*Agent, error) {
	res := &Agent{}
	srcNets := []anynet.Net{a.Base, a.Actor, a.Critic}
	dstNets := []*anynet.Net{&res.Base, &res.Actor, &res.Critic}
	for i, src := range srcNets {
		copied, err := serializer.Copy(src)
		if err != nil {
			name := []string{"base", "actor", "critic"}
			return nil, essentials.AddCtx("copy agent "+name[i], err)
		}
		*dstNets[i] = copied.(anynet.Net)
	}
	return res, nil
}

// Parameters returns every trainable parameter.
func (a *Agent) Parameters() []*anydiff.Var {
	return anynet.AllParameters(a.Base, a.Actor, a.Critic)
}

// Policy returns the block used to sample actions.
func (a *Agent) Policy() anyrnn.Block {
	return &anyrnn.LayerBlock{Layer: anynet.Net{a.Base, a.Actor}}
}

func (a *Agent) roller(c anyvec.Creator) *anyrl.RNNRoller {
	return &anyrl.RNNRoller{
		Block:       a.Policy(),
		ActionSpace: anyrl.Softmax{},
		Creator:     c,
	}
}

// ActionParams applies the actor to one observation.
func (a *Agent) ActionParams(c anyvec.Creator, obs []float64) []float64 {
	in := anydiff.NewConst(anyvec.Make(c, obs))
	out := anynet.Net{a.Base, a.Actor}.Apply(in, 1)
	return c.Float64Slice(out.Output().Data())
}

// Value applies the critic to one observation.
func (a *Agent) Value(c anyvec.Creator, obs []float64) float64 {
	in := anydiff.NewConst(anyvec.Make(c, obs))
	out := anynet.Net{a.Base, a.Critic}.Apply(in, 1)
	return c.Float64Slice(out.Output().Data())[0]
}

// Act picks the most likely action for an observation
// and returns it as a one-hot vector.
func (a *Agent) Act(c anyvec.Creator, obs []float64) []float64 {
	params := a.ActionParams(c, obs)
	res := make([]float64, len(params))
	res[essentials.MaxIndex(params)] = 1
	return res
}
