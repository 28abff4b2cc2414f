package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/gymdoom"
	"github.com/aleskucera/DOOM/render"
)

var (
	flagPlayEnv  string
	flagEpisodes int
	flagSeed     int64
	flagDelay    time.Duration
	flagKeyboard bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play episodes with a random agent or the keyboard",
	Long: `Play whole episodes of a scenario in a window.

By default actions are sampled uniformly at random. With --keyboard,
the keys w, s, a, d, q, e and r pick actions 0 through 6.

Examples:
  doom play
  doom play --env ViZDoomBasic-v0 --episodes 3 --seed -1
  doom play --keyboard --delay 28ms`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayEnv, "env", "ViZDoomMulti-v0", "Scenario ID")
	playCmd.Flags().IntVar(&flagEpisodes, "episodes", 10, "Number of episodes")
	playCmd.Flags().Int64Var(&flagSeed, "seed", 42, "Seed for every episode (-1 = none)")
	playCmd.Flags().DurationVar(&flagDelay, "delay", 100*time.Millisecond, "Pause after every step")
	playCmd.Flags().BoolVar(&flagKeyboard, "keyboard", false, "Pick actions with the keyboard")
}

func runPlay(cmd *cobra.Command, args []string) {
	exp, err := loadExperiment()
	must(err)

	window, err := newWindow(flagPlayEnv)
	must(err)
	dialer := &gymdoom.Dialer{Host: exp.GymHost, Logger: logger}
	env, err := doom.Make(flagPlayEnv, dialer.Dial, doom.WithLogger(logger),
		doom.WithRenderMode(doom.RenderHuman), doom.WithDisplay(window))
	must(err)
	defer env.Close()

	var agent doom.Agent = &doom.RandomAgent{Space: env.ActionSpace()}
	if flagKeyboard {
		agent = &render.KeyAgent{Window: window}
	}
	var seed *int64
	if flagSeed >= 0 {
		seed = &flagSeed
	}

	ctx, cancel := interruptContext()
	defer cancel()
	must(runWindow(ctx, window, func(ctx context.Context) error {
		totals, err := doom.PlayEpisodes(ctx, env, agent, flagEpisodes, seed, flagDelay)
		for i, total := range totals {
			logger.Info("episode", "index", i, "reward", total)
		}
		if ctx.Err() != nil {
			return nil
		}
		return err
	}))
}
