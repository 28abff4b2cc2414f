package main

import (
	"github.com/spf13/cobra"

	"github.com/aleskucera/DOOM/launch"
)

var flagDemo string

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a short deathmatch and replay it",
	Long: `Record a two player deathmatch into a demo file, then replay the
demo from the view of the second player.

Examples:
  doom record
  doom record --demo multi_rec2.lmp`,
	Args: cobra.NoArgs,
	Run:  runRecord,
}

func init() {
	recordCmd.Flags().StringVar(&flagDemo, "demo", launch.DemoName(1), "Demo file")
}

func runRecord(cmd *cobra.Command, args []string) {
	engine, err := newEngine()
	must(err)

	ctx, cancel := interruptContext()
	defer cancel()
	if err := launch.RecordAndReplay(ctx, engine, flagDemo); err != nil && ctx.Err() == nil {
		must(err)
	}
}
