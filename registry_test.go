package doom_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/doomtest"
)

func TestRegistry(t *testing.T) {
	for _, id := range []string{"ViZDoomMulti-v0", "ViZDoomBasic-v0", "ViZDoomCorridor-v0"} {
		if _, ok := doom.Lookup(id); !ok {
			t.Errorf("missing environment: %s", id)
		}
	}
	if _, ok := doom.Lookup("ViZDoomNothing-v0"); ok {
		t.Error("unexpected environment")
	}
}

func TestMake(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.cfg")
	data := "screen_resolution = RES_8X6\nscreen_format = RGB24\n" +
		"available_buttons = { ATTACK USE }\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	doom.Register(&doom.Spec{ID: "ViZDoomTest-v0", Config: path})

	game := &doomtest.Game{EpisodeLength: 2}
	env, err := doom.Make("ViZDoomTest-v0", func(spec *doom.Spec) (doom.Game, error) {
		if spec.ConfigPath() != path {
			t.Errorf("unexpected config path: %s", spec.ConfigPath())
		}
		return game, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if env.ActionSpace().N != 2 {
		t.Errorf("expected 2 actions but got %d", env.ActionSpace().N)
	}

	failing := &doomtest.Game{InitErr: errors.New("no engine")}
	_, err = doom.Make("ViZDoomTest-v0", func(spec *doom.Spec) (doom.Game, error) {
		return failing, nil
	})
	if err == nil {
		t.Fatal("expected init error")
	}
	if !failing.Closed() {
		t.Error("game should be closed after a failed init")
	}

	if _, err := doom.Make("ViZDoomNothing-v0", nil); err == nil {
		t.Error("expected error for unknown environment")
	}
}
