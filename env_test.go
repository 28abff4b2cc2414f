package doom_test

import (
	"errors"
	"image"
	"reflect"
	"strings"
	"testing"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/doomtest"
)

func TestEnvSpaces(t *testing.T) {
	cfg := doomtest.Config(3)
	cfg.DepthBuffer = true
	cfg.LabelsBuffer = true
	cfg.AutomapBuffer = true
	cfg.GameVariables = []string{"HEALTH", "AMMO2"}

	env, err := doom.NewEnv(&doomtest.Game{EpisodeLength: 5}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer env.Close()

	space := env.ObservationSpace()
	expShapes := map[string][]int{
		doom.KeyScreen:        {6, 8, 3},
		doom.KeyDepth:         {6, 8, 1},
		doom.KeyLabels:        {6, 8, 1},
		doom.KeyAutomap:       {6, 8, 3},
		doom.KeyGameVariables: {2},
	}
	if len(space.Spaces) != len(expShapes) {
		t.Fatalf("expected %d spaces but got %d", len(expShapes), len(space.Spaces))
	}
	for key, shape := range expShapes {
		if actual := space.Spaces[key].Shape; !reflect.DeepEqual(actual, shape) {
			t.Errorf("%s: expected shape %v but got %v", key, shape, actual)
		}
	}
	if space.Spaces[doom.KeyGameVariables].Dtype != doom.Float32 {
		t.Error("game variables should be float32")
	}
	if env.ActionSpace().N != 3 {
		t.Errorf("expected 3 actions but got %d", env.ActionSpace().N)
	}

	obs, err := env.Reset(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !space.Contains(obs) {
		t.Error("observation does not match space")
	}
}

func TestEnvMinimalSpace(t *testing.T) {
	cfg := doomtest.Config(2)
	cfg.ScreenFormat = doom.GRAY8
	env, err := doom.NewEnv(&doomtest.Game{EpisodeLength: 5}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	keys := env.ObservationSpace().Keys()
	if !reflect.DeepEqual(keys, []string{doom.KeyScreen}) {
		t.Errorf("unexpected keys: %v", keys)
	}
	obs, err := env.Reset(nil)
	if err != nil {
		t.Fatal(err)
	}
	if shape := obs[doom.KeyScreen].Shape; !reflect.DeepEqual(shape, []int{6, 8, 1}) {
		t.Errorf("gray screen should have a channel axis, got %v", shape)
	}
}

func TestEnvForcesScreenFormat(t *testing.T) {
	cfg := doomtest.Config(2)
	cfg.ScreenFormat = doom.CRCGCB
	cfg.WindowVisible = true
	game := &doomtest.Game{EpisodeLength: 5}
	if _, err := doom.NewEnv(game, cfg); err != nil {
		t.Fatal(err)
	}
	if game.Config().ScreenFormat != doom.RGB24 {
		t.Errorf("expected RGB24 but got %v", game.Config().ScreenFormat)
	}
	if game.Config().WindowVisible {
		t.Error("window should be hidden")
	}
	if cfg.ScreenFormat != doom.CRCGCB {
		t.Error("caller's config should not be modified")
	}
}

func TestEnvStep(t *testing.T) {
	game := &doomtest.Game{EpisodeLength: 6}
	env, err := doom.NewEnv(game, doomtest.Config(3), doom.WithFrameSkip(2))
	if err != nil {
		t.Fatal(err)
	}

	if _, _, _, _, err := env.Step(0); !hasError(err, doom.ErrNotReset) {
		t.Errorf("expected ErrNotReset but got %v", err)
	}

	seed := int64(42)
	if _, err := env.Reset(&seed); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(game.Seeds, []int64{42}) {
		t.Errorf("unexpected seeds: %v", game.Seeds)
	}

	if _, _, _, _, err := env.Step(3); !hasError(err, doom.ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction but got %v", err)
	}

	var total float64
	var steps int
	for {
		obs, rew, terminated, truncated, err := env.Step(1)
		if err != nil {
			t.Fatal(err)
		}
		if truncated {
			t.Error("unexpected truncation")
		}
		total += rew
		steps++
		if terminated {
			// Terminal observations are all zero.
			for _, x := range obs[doom.KeyScreen].Uint8 {
				if x != 0 {
					t.Fatal("terminal observation should be zero")
				}
			}
			break
		} else if obs[doom.KeyScreen].Uint8[0] != uint8(steps*2) {
			t.Errorf("step %d: unexpected pixel %d", steps, obs[doom.KeyScreen].Uint8[0])
		}
	}
	if steps != 3 {
		t.Errorf("expected 3 steps but got %d", steps)
	}
	if total != 12 {
		t.Errorf("expected total reward 12 but got %f", total)
	}
	for _, buttons := range game.Actions {
		if !reflect.DeepEqual(buttons, []float64{0, 1, 0}) {
			t.Errorf("unexpected buttons: %v", buttons)
		}
	}
}

func TestEnvStepAfterEnd(t *testing.T) {
	game := &lenientGame{Game: doomtest.Game{EpisodeLength: 1}}
	env, err := doom.NewEnv(game, doomtest.Config(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(nil); err != nil {
		t.Fatal(err)
	}
	if _, _, terminated, _, err := env.Step(0); err != nil || !terminated {
		t.Fatalf("expected termination but got %v (%v)", terminated, err)
	}
	if _, _, _, _, err := env.Step(0); !hasError(err, doom.ErrNotReset) {
		t.Errorf("expected ErrNotReset but got %v", err)
	}
	if _, err := env.Reset(nil); err != nil {
		t.Fatal(err)
	}
	if _, _, _, _, err := env.Step(1); err != nil {
		t.Errorf("step after reset failed: %v", err)
	}
}

func TestEnvTerminalObservation(t *testing.T) {
	for _, format := range []doom.ScreenFormat{doom.RGB24, doom.GRAY8} {
		cfg := doomtest.Config(2)
		cfg.ScreenFormat = format
		cfg.DepthBuffer = true
		cfg.LabelsBuffer = true
		cfg.AutomapBuffer = true
		cfg.GameVariables = []string{"HEALTH", "AMMO2", "FRAGCOUNT"}
		env, err := doom.NewEnv(&doomtest.Game{EpisodeLength: 3}, cfg,
			doom.WithFrameSkip(3))
		if err != nil {
			t.Fatal(err)
		}
		space := env.ObservationSpace()
		channels := cfg.ScreenChannels()
		if shape := space.Spaces[doom.KeyAutomap].Shape; !reflect.DeepEqual(shape,
			[]int{6, 8, channels}) {
			t.Errorf("%v: unexpected automap shape %v", format, shape)
		}

		if _, err := env.Reset(nil); err != nil {
			t.Fatal(err)
		}
		obs, _, terminated, _, err := env.Step(0)
		if err != nil {
			t.Fatal(err)
		}
		if !terminated {
			t.Fatalf("%v: expected termination", format)
		}
		if len(obs) != len(space.Spaces) {
			t.Fatalf("%v: expected %d keys but got %d", format, len(space.Spaces), len(obs))
		}
		for key, box := range space.Spaces {
			arr, ok := obs[key]
			if !ok {
				t.Errorf("%v: missing %s", format, key)
				continue
			}
			if !reflect.DeepEqual(arr.Shape, box.Shape) {
				t.Errorf("%v %s: expected shape %v but got %v", format, key,
					box.Shape, arr.Shape)
			}
			if arr.Dtype() != box.Dtype || arr.Len() != box.Size() {
				t.Errorf("%v %s: got %d values of %v", format, key, arr.Len(), arr.Dtype())
			}
			for _, x := range arr.Float64() {
				if x != 0 {
					t.Errorf("%v %s: terminal observation should be zero", format, key)
					break
				}
			}
		}
	}
}

func TestEnvRespawn(t *testing.T) {
	game := &doomtest.Game{EpisodeLength: 10, DeathTic: 1}
	env, err := doom.NewEnv(game, doomtest.Config(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(nil); err != nil {
		t.Fatal(err)
	}
	if respawned, err := env.RespawnIfDead(); err != nil || respawned {
		t.Errorf("living player respawned: %v (%v)", respawned, err)
	}
	if _, _, _, _, err := env.Step(0); err != nil {
		t.Fatal(err)
	}
	if respawned, err := env.RespawnIfDead(); err != nil || !respawned {
		t.Errorf("dead player not respawned: %v (%v)", respawned, err)
	}
	if game.Respawns != 1 {
		t.Errorf("expected 1 respawn but got %d", game.Respawns)
	}

	plain, err := doom.NewEnv(&plainGame{Game: &doomtest.Game{EpisodeLength: 3,
		DeathTic: 1}}, doomtest.Config(2))
	if err != nil {
		t.Fatal(err)
	}
	if respawned, err := plain.RespawnIfDead(); err != nil || respawned {
		t.Errorf("game without respawning: %v (%v)", respawned, err)
	}
}

func TestEnvSendGameCommand(t *testing.T) {
	game := &doomtest.Game{EpisodeLength: 10}
	env, err := doom.NewEnv(game, doomtest.Config(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(nil); err != nil {
		t.Fatal(err)
	}
	if err := env.SendGameCommand("stop"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(game.Commands, []string{"stop"}) {
		t.Errorf("unexpected commands: %v", game.Commands)
	}
	if !game.IsEpisodeFinished() {
		t.Error("stop should end the episode")
	}

	plain, err := doom.NewEnv(&plainGame{Game: &doomtest.Game{}}, doomtest.Config(2))
	if err != nil {
		t.Fatal(err)
	}
	if err := plain.SendGameCommand("stop"); !errors.Is(err, doom.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported but got %v", err)
	}
}

func TestEnvShapeMismatch(t *testing.T) {
	cfg := doomtest.Config(2)
	cfg.GameVariables = []string{"HEALTH"}
	game := &shortGame{Game: doomtest.Game{EpisodeLength: 3}}
	env, err := doom.NewEnv(game, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(nil); !hasError(err, doom.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch but got %v", err)
	}
}

func TestEnvRender(t *testing.T) {
	display := &recordingDisplay{}
	game := &doomtest.Game{EpisodeLength: 3}
	env, err := doom.NewEnv(game, doomtest.Config(2),
		doom.WithRenderMode(doom.RenderHuman), doom.WithDisplay(display))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Render(); !hasError(err, doom.ErrNoState) {
		t.Errorf("expected ErrNoState but got %v", err)
	}
	if _, err := env.Reset(nil); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, _, _, _, err := env.Step(0); err != nil {
			t.Fatal(err)
		}
	}
	// The last step ends the episode, so it has no frame.
	if display.shown != 2 {
		t.Errorf("expected 2 frames but got %d", display.shown)
	}
	if err := env.Close(); err != nil {
		t.Fatal(err)
	}
	if !display.closed || !game.Closed() {
		t.Error("close should close the display and the game")
	}

	if _, err := doom.NewEnv(&doomtest.Game{}, doomtest.Config(2),
		doom.WithRenderMode(doom.RenderHuman)); !hasError(err, doom.ErrNoDisplay) {
		t.Errorf("expected ErrNoDisplay but got %v", err)
	}
}

func TestEnvRenderFPS(t *testing.T) {
	display := &recordingDisplay{}
	_, err := doom.NewEnv(&doomtest.Game{EpisodeLength: 3}, doomtest.Config(2),
		doom.WithRenderMode(doom.RenderHuman), doom.WithDisplay(display),
		doom.WithRenderFPS(doom.DefaultTicrate))
	if err != nil {
		t.Fatal(err)
	}
	if display.fps != doom.DefaultTicrate {
		t.Errorf("expected display FPS %d but got %d", doom.DefaultTicrate, display.fps)
	}

	if _, err := doom.NewEnv(&doomtest.Game{}, doomtest.Config(2),
		doom.WithRenderFPS(-1)); err == nil {
		t.Error("expected error for negative FPS")
	}
}

func TestEnvRenderRGBArray(t *testing.T) {
	env, err := doom.NewEnv(&doomtest.Game{EpisodeLength: 3}, doomtest.Config(2),
		doom.WithRenderMode(doom.RenderRGBArray))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(nil); err != nil {
		t.Fatal(err)
	}
	img, err := env.Render()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 8, 6) {
		t.Errorf("unexpected bounds: %v", img.Bounds())
	}
}

type recordingDisplay struct {
	shown  int
	fps    int
	closed bool
}

func (r *recordingDisplay) SetFPS(fps int) {
	r.fps = fps
}

func (r *recordingDisplay) Show(s *doom.State, cfg *doom.Config) error {
	r.shown++
	return nil
}

func (r *recordingDisplay) Close() error {
	r.closed = true
	return nil
}

// shortGame reports no game variables, even though the
// config asks for some.
type shortGame struct {
	doomtest.Game
}

func (s *shortGame) State() *doom.State {
	state := s.Game.State()
	if state != nil {
		state.GameVariables = nil
	}
	return state
}

// lenientGame ignores actions after the episode ends, as
// a real engine does.
type lenientGame struct {
	doomtest.Game
}

func (l *lenientGame) MakeAction(buttons []float64, tics int) (float64, error) {
	if l.Game.IsEpisodeFinished() {
		return 0, nil
	}
	return l.Game.MakeAction(buttons, tics)
}

// plainGame hides the optional capabilities of a game.
type plainGame struct {
	doom.Game
}

// hasError checks for a sentinel error underneath any
// added context.
//
// Sentinels wrapped with %w are found by errors.Is.
// essentials.AddCtx may not implement Unwrap, so the
// message is checked as well.
func hasError(err, target error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, target) || strings.Contains(err.Error(), target.Error())
}
