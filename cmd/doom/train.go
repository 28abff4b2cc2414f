package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/unixpickle/anyvec/anyvec32"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/results"
	"github.com/aleskucera/DOOM/train"
)

var (
	flagResume  string
	flagSaveTo  string
	flagEntropy float64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a PPO agent",
	Long: `Train a PPO agent on the experiment's scenario.

The agent is evaluated on separate environments every evaluation.freq
timesteps. The best agent so far is saved to <model>/best_model and
every evaluation is recorded in the results database.

Press Ctrl+C to stop after the current batch.`,
	Args: cobra.NoArgs,
	Run:  runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&flagResume, "resume", "", "Continue training a saved agent")
	trainCmd.Flags().StringVar(&flagSaveTo, "save", "", "Save the final agent here (default: <model>/last_model)")
	trainCmd.Flags().Float64Var(&flagEntropy, "entropy", 0, "Entropy bonus coefficient")
}

func runTrain(cmd *cobra.Command, args []string) {
	exp, err := loadExperiment()
	must(err)

	ctx, cancel := interruptContext()
	defer cancel()

	logger.Info("creating environments", "env", exp.Env, "count", exp.Training.NEnvs,
		"host", exp.GymHost)
	trainEnvs, shape, err := makeEnvs(&exp, exp.Training.NEnvs, exp.LogDir)
	must(err)
	defer doom.CloseEnvs(trainEnvs)
	evalEnvs, _, err := makeEnvs(&exp, exp.Training.NEnvs, "")
	must(err)
	defer doom.CloseEnvs(evalEnvs)

	c := anyvec32.CurrentCreator()
	var agent *train.Agent
	if flagResume != "" {
		logger.Info("loading agent", "path", flagResume)
		agent, err = train.LoadAgent(flagResume)
	} else {
		logger.Info("creating agent")
		agent, err = train.NewAgent(c, exp.Image.Height, exp.Image.Width,
			shape.Channels, shape.Actions)
	}
	must(err)

	store, err := results.Open(exp.ResultsDB)
	if err != nil {
		logger.Warn("could not open results database", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	trainLog := &train.StandardLogger{Logger: logger, Batch: true, Eval: true}
	evaluator := &train.Evaluator{
		Agent:        agent,
		Envs:         evalEnvs,
		Creator:      c,
		EvalFreq:     exp.Evaluation.Freq,
		Episodes:     exp.Evaluation.Episodes,
		BestModelDir: exp.Model,
		Store:        store,
		Run:          exp.Model,
		Env:          exp.Env,
		Logger:       trainLog,
	}
	trainer := &train.Trainer{
		Agent:         agent,
		Envs:          trainEnvs,
		Creator:       c,
		StepsPerBatch: exp.StepsPerBatch(),
		Epochs:        exp.UpdatesPerBatch(),
		StepSize:      exp.Training.LearningRate,
		EntropyReg:    flagEntropy,
		Logger:        trainLog,
	}

	logger.Info("training", "timesteps", exp.Training.Timesteps,
		"steps_per_batch", trainer.StepsPerBatch)
	trainErr := trainer.Run(ctx, exp.Training.Timesteps, evaluator.Callback)

	savePath := flagSaveTo
	if savePath == "" {
		savePath = filepath.Join(exp.Model, "last_model")
	}
	logger.Info("saving agent", "path", savePath)
	must(os.MkdirAll(filepath.Dir(savePath), 0o755))
	must(agent.Save(savePath))

	if trainErr != nil && ctx.Err() == nil {
		must(trainErr)
	}
}
