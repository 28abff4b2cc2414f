package main

import (
	"github.com/spf13/cobra"

	"github.com/aleskucera/DOOM/launch"
)

var (
	flagAddress  string
	flagJoinName string
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a multiplayer deathmatch",
	Long: `Start the engine as a player of a network game hosted elsewhere.

Examples:
  doom join
  doom join --address 192.168.1.20 --name Player3 --colorset 2`,
	Args: cobra.NoArgs,
	Run:  runJoin,
}

func init() {
	joinCmd.Flags().StringVar(&flagAddress, "address", "127.0.0.1", "Address of the host")
	joinCmd.Flags().StringVar(&flagJoinName, "name", "Player2", "Player name")
}

func runJoin(cmd *cobra.Command, args []string) {
	engine, err := newEngine()
	must(err)

	join := launch.DefaultJoin()
	join.Address = flagAddress
	join.Port = flagPort
	join.Name = flagJoinName
	join.Colorset = flagColorset

	ctx, cancel := interruptContext()
	defer cancel()
	if err := engine.Run(ctx, join); err != nil && ctx.Err() == nil {
		must(err)
	}
}
