package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aleskucera/DOOM/results"
)

var flagLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run]",
	Short: "Show evaluation results",
	Long: `Show the evaluations recorded while training a run, oldest first,
followed by the best one. Without a run, list the recorded runs.

Examples:
  doom history
  doom history ppo_vizdoom_corridor --limit 5`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of evaluations to show")
}

func runHistory(cmd *cobra.Command, args []string) {
	exp, err := loadExperiment()
	must(err)
	store, err := results.Open(exp.ResultsDB)
	must(err)
	defer store.Close()

	if len(args) == 0 {
		runs, err := store.Runs()
		must(err)
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return
		}
		for _, run := range runs {
			fmt.Println(run)
		}
		return
	}

	run := args[0]
	evals, err := store.History(run, flagLimit)
	must(err)
	if len(evals) == 0 {
		fmt.Printf("No evaluations for %s.\n", run)
		return
	}

	fmt.Printf("Evaluations - %s\n", run)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tEPISODES\tMEAN\tSTDDEV\tENV\tDATE")
	for _, e := range evals {
		fmt.Fprintf(w, "%d\t%d\t%.3f\t%.3f\t%s\t%s\n", e.Steps, e.Episodes,
			e.MeanReward, e.StdReward, e.Env, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()

	best, err := store.Best(run)
	must(err)
	if best != nil {
		fmt.Printf("\nBest: %.3f ± %.3f at %d steps\n", best.MeanReward, best.StdReward,
			best.Steps)
	}
}
