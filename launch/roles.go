package launch

import (
	"fmt"
	"strconv"
)

// DefaultPort is the port multiplayer games use.
const DefaultPort = 5029

// A Role adds command-line arguments which decide what an
// engine process does in a session.
type Role interface {
	Args() []string
}

// Roles combines several roles into one.
type Roles []Role

// Args concatenates the arguments of every role.
func (r Roles) Args() []string {
	var res []string
	for _, role := range r {
		res = append(res, role.Args()...)
	}
	return res
}

// A Rule is a server variable set by the host.
type Rule struct {
	Name  string
	Value string
}

// DefaultRules are the server rules for deathmatch
// sessions between agents.
var DefaultRules = []Rule{
	{"sv_forcerespawn", "1"},
	{"sv_noautoaim", "1"},
	{"sv_respawnprotect", "1"},
	{"sv_spawnfarthest", "1"},
	{"sv_nocrouch", "1"},
	{"viz_respawn_delay", "10"},
	{"viz_nocheat", "1"},
}

// Host makes the engine host a network game.
type Host struct {
	// Players is the number of players, including the
	// host, needed to start the game.
	Players int
	Port    int

	Deathmatch bool

	// TimeLimit is the game length in minutes.
	// Zero means no limit.
	TimeLimit float64

	// ConnectTimeout is how many seconds the host waits
	// for the other players.
	ConnectTimeout int

	Rules []Rule

	Name     string
	Colorset int
}

// DefaultHost returns the host settings for a two player
// deathmatch.
func DefaultHost() *Host {
	return &Host{
		Players:        2,
		Port:           DefaultPort,
		Deathmatch:     true,
		TimeLimit:      10,
		ConnectTimeout: 60,
		Rules:          DefaultRules,
		Name:           "Host",
	}
}

// Args returns the arguments for hosting.
func (h *Host) Args() []string {
	res := []string{"-host", strconv.Itoa(h.Players)}
	if h.Port != 0 {
		res = append(res, "-port", strconv.Itoa(h.Port))
	}
	if h.Deathmatch {
		res = append(res, "-deathmatch")
	}
	if h.ConnectTimeout > 0 {
		res = append(res, "+viz_connect_timeout", strconv.Itoa(h.ConnectTimeout))
	}
	if h.TimeLimit > 0 {
		res = append(res, "+timelimit", strconv.FormatFloat(h.TimeLimit, 'f', -1, 64))
	}
	for _, rule := range h.Rules {
		res = append(res, "+"+rule.Name, rule.Value)
	}
	return append(res, playerArgs(h.Name, h.Colorset)...)
}

// Join makes the engine join a hosted game.
type Join struct {
	Address string
	Port    int

	Name     string
	Colorset int
}

// DefaultJoin returns the settings for a second player on
// the local machine.
func DefaultJoin() *Join {
	return &Join{
		Address: "127.0.0.1",
		Port:    DefaultPort,
		Name:    "Player2",
	}
}

// Args returns the arguments for joining.
func (j *Join) Args() []string {
	res := []string{"-join", j.Address}
	if j.Port != 0 {
		res = append(res, "-port", strconv.Itoa(j.Port))
	}
	return append(res, playerArgs(j.Name, j.Colorset)...)
}

// Record makes the engine record a demo of the game.
type Record struct {
	Path string
}

// Args returns the arguments for recording.
func (r *Record) Args() []string {
	return []string{"-record", r.Path}
}

// Replay plays back a recorded demo.
type Replay struct {
	Path string

	// Player is the 1-based player whose view is shown.
	Player int
}

// Args returns the arguments for the replay.
//
// The engine needs a starting point for the demo's map,
// so replays host a single player deathmatch.
func (r *Replay) Args() []string {
	res := []string{"-host", "1", "-deathmatch", "-playdemo", r.Path}
	for i := 1; i < r.Player; i++ {
		// Each spynext moves the view to the next player.
		res = append(res, "+spynext")
	}
	return res
}

// DemoName returns the file name of an episode's demo.
func DemoName(episode int) string {
	return fmt.Sprintf("multi_rec%d.lmp", episode)
}

func playerArgs(name string, colorset int) []string {
	var res []string
	if name != "" {
		res = append(res, "+name", name)
	}
	return append(res, "+colorset", strconv.Itoa(colorset))
}
