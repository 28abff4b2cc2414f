package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unixpickle/anyvec/anyvec32"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/train"
)

var (
	flagModel      string
	flagEnjoyEnvs  int
	flagEnjoySteps int
	flagHeadless   bool
	flagFPS        int
)

var enjoyCmd = &cobra.Command{
	Use:   "enjoy",
	Short: "Watch a trained agent play",
	Long: `Load a trained agent and let it play greedily.

The first environment is shown in a window with the screen, depth,
labels and automap buffers side by side. Finished episodes restart
until the step budget runs out.`,
	Args: cobra.NoArgs,
	Run:  runEnjoy,
}

func init() {
	enjoyCmd.Flags().StringVar(&flagModel, "model", "", "Agent to load (default: <model>/best_model)")
	enjoyCmd.Flags().IntVar(&flagEnjoyEnvs, "envs", 1, "Number of environments")
	enjoyCmd.Flags().IntVar(&flagEnjoySteps, "steps", 0, "Steps per environment (default: from the experiment)")
	enjoyCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Do not open a window")
	enjoyCmd.Flags().IntVar(&flagFPS, "fps", doom.DefaultTicrate, "Frame rate limit of the window")
}

func runEnjoy(cmd *cobra.Command, args []string) {
	exp, err := loadExperiment()
	must(err)
	if flagEnjoyEnvs < 1 {
		must(fmt.Errorf("need at least one environment, got %d", flagEnjoyEnvs))
	}
	steps := flagEnjoySteps
	if steps == 0 {
		steps = exp.Enjoy.Steps
	}
	modelPath := flagModel
	if modelPath == "" {
		modelPath = exp.BestModelPath()
	}

	logger.Info("loading agent", "path", modelPath)
	agent, err := train.LoadAgent(modelPath)
	must(err)

	ctx, cancel := interruptContext()
	defer cancel()

	var envs []doom.RLEnv
	defer func() {
		doom.CloseEnvs(envs)
	}()
	play := func(ctx context.Context) error {
		totals, err := train.Enjoy(ctx, anyvec32.CurrentCreator(), agent, envs,
			steps, nil)
		for i, total := range totals {
			logger.Info("episode", "index", i, "reward", total)
		}
		if len(totals) > 0 {
			mean, std := train.MeanStd(totals)
			logger.Info("summary", "episodes", len(totals), "mean", mean, "stddev", std)
		}
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if flagHeadless {
		envs, _, err = makeEnvs(&exp, flagEnjoyEnvs, "")
		must(err)
		must(play(ctx))
		return
	}

	window, err := newWindow(exp.Env)
	must(err)
	shown, _, err := makeEnvs(&exp, 1, "", doom.WithRenderMode(doom.RenderHuman),
		doom.WithDisplay(window), doom.WithRenderFPS(flagFPS))
	must(err)
	rest, _, err := makeEnvs(&exp, flagEnjoyEnvs-1, "")
	if err != nil {
		doom.CloseEnvs(shown)
		must(err)
	}
	envs = append(shown, rest...)
	must(runWindow(ctx, window, play))
}
