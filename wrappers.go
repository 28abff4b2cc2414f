package doom

import "github.com/unixpickle/essentials"

// ResizeEnv wraps an RLEnv whose observations are frames
// and scales the frames down.
type ResizeEnv struct {
	RLEnv

	// Input frame dimensions.
	Height, Width, Channels int

	// Output frame dimensions.
	OutHeight, OutWidth int
}

// NewResizeEnv wraps an AnyEnv, taking the input frame
// dimensions from its observation space.
//
// If frameSkip is positive, it becomes the number of tics
// per action of the wrapped Env.
func NewResizeEnv(e *AnyEnv, outHeight, outWidth, frameSkip int) *ResizeEnv {
	if frameSkip > 0 {
		e.Env.SetFrameSkip(frameSkip)
	}
	shape := e.Env.ObservationSpace().Spaces[KeyScreen].Shape
	return &ResizeEnv{
		RLEnv:     e,
		Height:    shape[0],
		Width:     shape[1],
		Channels:  shape[2],
		OutHeight: outHeight,
		OutWidth:  outWidth,
	}
}

// ObservationSize returns the length of the resized
// observations.
func (r *ResizeEnv) ObservationSize() int {
	return r.OutHeight * r.OutWidth * r.Channels
}

// Reset resets the environment.
func (r *ResizeEnv) Reset() (observation []float64, err error) {
	observation, err = r.RLEnv.Reset()
	if err != nil {
		return
	}
	return r.resize(observation)
}

// Step takes a step in the environment.
func (r *ResizeEnv) Step(action []float64) (observation []float64, reward float64,
	done bool, err error) {
	observation, reward, done, err = r.RLEnv.Step(action)
	if err != nil {
		return
	}
	observation, err = r.resize(observation)
	return
}

func (r *ResizeEnv) resize(obs []float64) (res []float64, err error) {
	defer essentials.AddCtxTo("resize observation", &err)
	frame := make([]uint8, len(obs))
	for i, x := range obs {
		frame[i] = uint8(essentials.Round(x))
	}
	out, err := ResizeFrame(frame, r.Height, r.Width, r.Channels, r.OutHeight,
		r.OutWidth)
	if err != nil {
		return nil, err
	}
	res = make([]float64, len(out))
	for i, x := range out {
		res[i] = float64(x)
	}
	return res, nil
}

// RewardScaleEnv multiplies every reward by a constant.
type RewardScaleEnv struct {
	RLEnv
	Scale float64
}

// Step takes a step in the environment.
func (r *RewardScaleEnv) Step(action []float64) ([]float64, float64, bool, error) {
	obs, rew, done, err := r.RLEnv.Step(action)
	return obs, rew * r.Scale, done, err
}

// MaxStepsEnv wraps an RLEnv and ends episodes early if
// they run longer than MaxSteps timesteps.
type MaxStepsEnv struct {
	RLEnv
	MaxSteps int

	steps int
}

// Reset resets the environment.
func (m *MaxStepsEnv) Reset() ([]float64, error) {
	m.steps = 0
	return m.RLEnv.Reset()
}

// Step takes a step in the environment.
func (m *MaxStepsEnv) Step(action []float64) ([]float64, float64, bool, error) {
	obs, rew, done, err := m.RLEnv.Step(action)
	m.steps++
	if m.steps == m.MaxSteps {
		done = true
	}
	return obs, rew, done, err
}

// CallbackEnv calls a function after every step, for
// example to render the game.
type CallbackEnv struct {
	RLEnv
	AfterStep func() error
}

// Step takes a step in the environment.
func (c *CallbackEnv) Step(action []float64) ([]float64, float64, bool, error) {
	obs, rew, done, err := c.RLEnv.Step(action)
	if err != nil || c.AfterStep == nil {
		return obs, rew, done, err
	}
	return obs, rew, done, c.AfterStep()
}
