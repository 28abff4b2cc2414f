// doom trains and runs agents for ViZDoom scenarios.
//
// Usage:
//
//	doom train              - Train a PPO agent
//	doom enjoy              - Watch the best trained agent play
//	doom play               - Play episodes with a random agent or the keyboard
//	doom host               - Host a multiplayer game
//	doom join               - Join a multiplayer game
//	doom record             - Record a deathmatch demo and replay it
//	doom compose <png>      - Tile an image into the four-pane layout
//	doom history [run]      - Show evaluation results
//
// Global flags:
//
//	--experiment <path>  - Experiment YAML (default: search order of experiment.Load)
//	--scenarios <dir>    - Scenario directory (default: $VIZDOOM_SCENARIOS or ./scenarios)
//	--gym-host <addr>    - gym-socket-api server address
//	--db <path>          - Results database
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/unixpickle/rip"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/experiment"
)

var (
	// Global flags
	flagExperiment string
	flagScenarios  string
	flagGymHost    string
	flagDBPath     string
	flagVerbose    bool
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "doom",
})

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "doom",
	Short: "Train and watch agents in ViZDoom scenarios",
	Long: `doom drives ViZDoom scenarios served over gym-socket-api.

It trains PPO agents on scenario frames, lets trained agents or people
play with a four-pane view of the engine buffers, and launches local
multiplayer and demo recording sessions of the engine.

Examples:
  doom train
  doom enjoy --envs 1
  doom play --env ViZDoomMulti-v0 --keyboard
  doom record --demo multi_rec1.lmp
  doom history ppo_vizdoom_corridor`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			logger.SetLevel(log.DebugLevel)
		}
		if flagScenarios != "" {
			doom.ScenarioDir = flagScenarios
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagExperiment, "experiment", "", "Path to experiment YAML")
	rootCmd.PersistentFlags().StringVar(&flagScenarios, "scenarios", "", "Scenario directory")
	rootCmd.PersistentFlags().StringVar(&flagGymHost, "gym-host", "", "gym-socket-api server address (overrides the experiment)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Results database (overrides the experiment)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug messages")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(enjoyCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadExperiment loads the experiment and applies the
// global overrides.
func loadExperiment() (experiment.Experiment, error) {
	exp, err := experiment.Load(flagExperiment)
	if err != nil {
		return exp, err
	}
	if flagGymHost != "" {
		exp.GymHost = flagGymHost
	}
	if flagDBPath != "" {
		exp.ResultsDB = flagDBPath
	}
	return exp, exp.Validate()
}

// interruptContext is cancelled on the first Ctrl+C.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	r := rip.NewRIP()
	go func() {
		select {
		case <-r.Chan():
			logger.Info("caught interrupt, stopping")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func must(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
