package doom

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/unixpickle/essentials"
)

// ScenarioDir is where relative scenario configs are
// looked up.
//
// It defaults to $VIZDOOM_SCENARIOS, or "scenarios" if
// the variable is unset.
var ScenarioDir = defaultScenarioDir()

// Spec describes a registered environment.
type Spec struct {
	ID string

	// Config is the path of the .cfg file.
	// Relative paths are resolved against ScenarioDir.
	Config string
}

// ConfigPath returns the resolved path of the config.
func (s *Spec) ConfigPath() string {
	if filepath.IsAbs(s.Config) {
		return s.Config
	}
	return filepath.Join(ScenarioDir, s.Config)
}

// A GameDialer creates an uninitialized Game for an
// environment.
type GameDialer func(spec *Spec) (Game, error)

var registry = struct {
	sync.RWMutex
	specs map[string]*Spec
}{specs: map[string]*Spec{}}

func init() {
	Register(&Spec{ID: "ViZDoomMulti-v0", Config: "multi.cfg"})
	Register(&Spec{ID: "ViZDoomBasic-v0", Config: "basic.cfg"})
	Register(&Spec{ID: "ViZDoomCorridor-v0", Config: "deadly_corridor.cfg"})
}

// Register adds or replaces an environment.
func Register(spec *Spec) {
	registry.Lock()
	defer registry.Unlock()
	registry.specs[spec.ID] = spec
}

// Lookup finds a registered environment.
func Lookup(id string) (*Spec, bool) {
	registry.RLock()
	defer registry.RUnlock()
	spec, ok := registry.specs[id]
	return spec, ok
}

// Registered returns the sorted IDs of all environments.
func Registered() []string {
	registry.RLock()
	defer registry.RUnlock()
	var res []string
	for id := range registry.specs {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}

// Make creates an Env for a registered environment.
func Make(id string, dial GameDialer, opts ...Option) (env *Env, err error) {
	defer essentials.AddCtxTo("make "+id, &err)
	spec, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("unknown environment: %s", id)
	}
	cfg, err := LoadConfig(spec.ConfigPath())
	if err != nil {
		return nil, err
	}
	game, err := dial(spec)
	if err != nil {
		return nil, err
	}
	env, err = NewEnv(game, cfg, opts...)
	if err != nil {
		game.Close()
		return nil, err
	}
	return env, nil
}

func defaultScenarioDir() string {
	if dir := os.Getenv("VIZDOOM_SCENARIOS"); dir != "" {
		return dir
	}
	return "scenarios"
}
