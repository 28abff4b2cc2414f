package main

import (
	"fmt"

	"github.com/spf13/cobra"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/launch"
)

var (
	flagEngine    string
	flagLaunchEnv string
	flagPlayers   int
	flagPort      int
	flagTimeLimit float64
	flagName      string
	flagColorset  int
	flagLocal     int
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host a multiplayer deathmatch",
	Long: `Start the engine as the host of a network deathmatch.

With --local, that many players also join from this machine, each in
its own engine process. If any process fails, the others are stopped.

Examples:
  doom host --players 2 --local 1
  doom host --players 4 --timelimit 5`,
	Args: cobra.NoArgs,
	Run:  runHost,
}

func init() {
	for _, cmd := range []*cobra.Command{hostCmd, joinCmd, recordCmd} {
		cmd.Flags().StringVar(&flagEngine, "engine", launch.DefaultBinary, "Engine executable")
		cmd.Flags().StringVar(&flagLaunchEnv, "env", "ViZDoomMulti-v0", "Scenario ID")
	}
	for _, cmd := range []*cobra.Command{hostCmd, joinCmd} {
		cmd.Flags().IntVar(&flagPort, "port", launch.DefaultPort, "Network port")
		cmd.Flags().IntVar(&flagColorset, "colorset", 0, "Player color")
	}
	hostCmd.Flags().IntVar(&flagPlayers, "players", 2, "Number of players, including the host")
	hostCmd.Flags().Float64Var(&flagTimeLimit, "timelimit", 10, "Game length in minutes (0 = none)")
	hostCmd.Flags().StringVar(&flagName, "name", "Host", "Player name")
	hostCmd.Flags().IntVar(&flagLocal, "local", 0, "Number of players joining from this machine")
}

// newEngine creates an engine for the scenario of a
// launch command.
func newEngine() (*launch.Engine, error) {
	spec, ok := doom.Lookup(flagLaunchEnv)
	if !ok {
		return nil, fmt.Errorf("unknown environment: %s", flagLaunchEnv)
	}
	cfg, err := doom.LoadConfig(spec.ConfigPath())
	if err != nil {
		return nil, err
	}
	return &launch.Engine{Binary: flagEngine, Config: cfg, Logger: logger}, nil
}

func runHost(cmd *cobra.Command, args []string) {
	engine, err := newEngine()
	must(err)

	host := launch.DefaultHost()
	host.Players = flagPlayers
	host.Port = flagPort
	host.TimeLimit = flagTimeLimit
	host.Name = flagName
	host.Colorset = flagColorset

	session := launch.NewSession(engine)
	session.Host = host
	session.Joiners = nil
	for i := 0; i < flagLocal; i++ {
		join := launch.DefaultJoin()
		join.Port = flagPort
		join.Name = fmt.Sprintf("Player%d", i+2)
		join.Colorset = i + 1
		session.Joiners = append(session.Joiners, join)
	}

	ctx, cancel := interruptContext()
	defer cancel()
	if err := session.Run(ctx); err != nil && ctx.Err() == nil {
		must(err)
	}
}
