// Package experiment describes a training run: which
// scenario to learn, how to preprocess it, and the PPO
// and evaluation hyper-parameters.
package experiment

import (
	"errors"
	"fmt"
	"path/filepath"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/results"
)

// Experiment holds the settings for training and
// watching an agent.
type Experiment struct {
	// Env is a registered scenario ID.
	Env string `yaml:"env"`

	// Model names the directory the best model is saved
	// to, and the run in the results store.
	Model string `yaml:"model"`

	Image      Image      `yaml:"image"`
	Training   Training   `yaml:"training"`
	Evaluation Evaluation `yaml:"evaluation"`
	Enjoy      Enjoy      `yaml:"enjoy"`

	GymHost   string `yaml:"gym_host"`
	ResultsDB string `yaml:"results_db"`
	LogDir    string `yaml:"log_dir"`
}

// Image is the size observations are resized to.
type Image struct {
	Height int `yaml:"height"`
	Width  int `yaml:"width"`
}

// Training holds the PPO settings.
type Training struct {
	Timesteps    int     `yaml:"timesteps"`
	NSteps       int     `yaml:"n_steps"`
	NEnvs        int     `yaml:"n_envs"`
	FrameSkip    int     `yaml:"frame_skip"`
	LearningRate float64 `yaml:"learning_rate"`
	BatchSize    int     `yaml:"batch_size"`
	RewardScale  float64 `yaml:"reward_scale"`
}

// Evaluation controls the periodic evaluation run.
type Evaluation struct {
	Freq     int `yaml:"freq"`
	Episodes int `yaml:"episodes"`
}

// Enjoy controls how long a trained agent is watched.
type Enjoy struct {
	Steps int `yaml:"steps"`
}

// Default returns the corridor experiment.
func Default() Experiment {
	return Experiment{
		Env:   "ViZDoomCorridor-v0",
		Model: "ppo_vizdoom_corridor",
		Image: Image{Height: 60, Width: 80},
		Training: Training{
			Timesteps:    100000,
			NSteps:       128,
			NEnvs:        8,
			FrameSkip:    4,
			LearningRate: 1e-4,
			BatchSize:    128,
			RewardScale:  0.01,
		},
		Evaluation: Evaluation{Freq: 5000, Episodes: 10},
		Enjoy:      Enjoy{Steps: 1000},
		GymHost:    "localhost:5001",
		ResultsDB:  results.DefaultPath,
		LogDir:     "logs",
	}
}

// BestModelPath is where the evaluator keeps the best
// model of the run.
func (e *Experiment) BestModelPath() string {
	return filepath.Join(e.Model, "best_model")
}

// StepsPerBatch is the number of timesteps gathered
// before each PPO update.
func (e *Experiment) StepsPerBatch() int {
	return e.Training.NSteps * e.Training.NEnvs
}

// UpdatesPerBatch is the number of PPO steps taken on
// each batch: as many as ten epochs of BatchSize
// minibatches would take.
func (e *Experiment) UpdatesPerBatch() int {
	n := e.StepsPerBatch() / e.Training.BatchSize
	if n < 1 {
		n = 1
	}
	return 10 * n
}

// Validate checks that the settings make sense.
func (e *Experiment) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	_, registered := doom.Lookup(e.Env)
	check(registered, "unknown env %q", e.Env)
	check(e.Model != "", "model name is empty")
	check(e.Image.Height > 0 && e.Image.Width > 0, "bad image size %dx%d",
		e.Image.Width, e.Image.Height)
	t := e.Training
	check(t.Timesteps > 0, "timesteps must be positive")
	check(t.NSteps > 0, "n_steps must be positive")
	check(t.NEnvs > 0, "n_envs must be positive")
	check(t.FrameSkip > 0, "frame_skip must be positive")
	check(t.LearningRate > 0, "learning_rate must be positive")
	check(t.BatchSize > 0, "batch_size must be positive")
	check(t.RewardScale != 0, "reward_scale must be non-zero")
	check(e.Evaluation.Freq >= 0, "evaluation freq must not be negative")
	check(e.Evaluation.Episodes > 0, "evaluation episodes must be positive")
	check(e.Enjoy.Steps > 0, "enjoy steps must be positive")
	if len(errs) > 0 {
		return fmt.Errorf("invalid experiment: %w", errors.Join(errs...))
	}
	return nil
}
