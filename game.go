package doom

// DefaultTicrate is the number of engine tics per second
// when a config does not override it.
const DefaultTicrate = 35

// Game is a handle on one instance of the engine.
//
// Implementations talk to an engine running somewhere
// else (a child process, a remote server); the game
// simulation itself never runs in this module.
type Game interface {
	// Init starts the engine using the given settings.
	// It must be called once, before any other method.
	Init(cfg *Config) error

	// NewEpisode restarts the scenario.
	NewEpisode() error

	// SetSeed sets the seed used by the next episode.
	SetSeed(seed int64)

	// State returns the current frame, or nil if the
	// episode is finished.
	State() *State

	// MakeAction holds the buttons down for the given
	// number of tics and returns the summed reward.
	MakeAction(buttons []float64, tics int) (float64, error)

	// IsEpisodeFinished reports whether the episode ended,
	// either by the scenario's rules or by a timeout.
	IsEpisodeFinished() bool

	// Close shuts the engine down.
	Close() error
}

// A Respawner is a Game in which the player can die and
// come back, as in multiplayer deathmatches.
type Respawner interface {
	IsPlayerDead() bool
	RespawnPlayer() error
}

// A Commander is a Game which accepts console commands.
type Commander interface {
	SendGameCommand(cmd string) error
}

// State is a snapshot of one engine frame.
//
// Buffers are laid out row-major, (height, width,
// channels), one byte per value.
// Buffers that were not enabled in the config are nil.
type State struct {
	Number int
	Tic    int

	// GameVariables holds the values of the config's
	// available game variables, in config order.
	GameVariables []float64

	Screen  []uint8
	Depth   []uint8
	Labels  []uint8
	Automap []uint8

	// Objects describes the objects in the labels
	// buffer.
	Objects []Label
}

// Label describes one object visible in the labels
// buffer.
type Label struct {
	ObjectID   int
	ObjectName string
	Value      uint8

	X, Y          int
	Width, Height int
}
