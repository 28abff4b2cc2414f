package doom

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const testConfig = `
# Paths are relative to this file.
doom_scenario_path = basic.wad
doom_map = map01

# Rewards
living_reward = -1

screen_resolution = RES_320X240
screen_format = GRAY8
render_hud = False
Render_Crosshair = true
depth_buffer_enabled = true
labels_buffer_enabled = yes
automap_buffer_enabled = 0

available_buttons =
	{
		MOVE_LEFT
		MOVE_RIGHT
	}
available_buttons += { attack }
available_game_variables = { AMMO2 HEALTH }

episode_timeout = 300
episode_start_time = 14
mode = PLAYER
doom_skill = 5
game_args += -host 2
game_args += +sv_cheats 1
some_future_option = 3
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(testConfig), "/scenarios")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ScenarioPath != filepath.Join("/scenarios", "basic.wad") {
		t.Errorf("unexpected scenario path: %s", cfg.ScenarioPath)
	}
	if cfg.Map != "map01" || cfg.Skill != 5 {
		t.Errorf("unexpected map/skill: %s %d", cfg.Map, cfg.Skill)
	}
	if cfg.LivingReward != -1 {
		t.Errorf("unexpected living reward: %f", cfg.LivingReward)
	}
	if cfg.ScreenWidth != 320 || cfg.ScreenHeight != 240 {
		t.Errorf("unexpected resolution: %dx%d", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	if cfg.ScreenFormat != GRAY8 || cfg.ScreenChannels() != 1 {
		t.Errorf("unexpected format: %v", cfg.ScreenFormat)
	}
	if cfg.Render.HUD || !cfg.Render.Crosshair {
		t.Errorf("unexpected render flags: %+v", cfg.Render)
	}
	if !cfg.DepthBuffer || !cfg.LabelsBuffer || cfg.AutomapBuffer {
		t.Errorf("unexpected buffer flags: %v %v %v", cfg.DepthBuffer,
			cfg.LabelsBuffer, cfg.AutomapBuffer)
	}
	expButtons := []string{"MOVE_LEFT", "MOVE_RIGHT", "ATTACK"}
	if !reflect.DeepEqual(cfg.Buttons, expButtons) {
		t.Errorf("expected buttons %v but got %v", expButtons, cfg.Buttons)
	}
	expVars := []string{"AMMO2", "HEALTH"}
	if !reflect.DeepEqual(cfg.GameVariables, expVars) {
		t.Errorf("expected variables %v but got %v", expVars, cfg.GameVariables)
	}
	if cfg.EpisodeTimeout != 300 || cfg.EpisodeStartTime != 14 {
		t.Errorf("unexpected episode times: %d %d", cfg.EpisodeTimeout,
			cfg.EpisodeStartTime)
	}
	expArgs := []string{"-host", "2", "+sv_cheats", "1"}
	if !reflect.DeepEqual(cfg.GameArgs, expArgs) {
		t.Errorf("expected args %v but got %v", expArgs, cfg.GameArgs)
	}
	if !reflect.DeepEqual(cfg.Unrecognized, []string{"some_future_option"}) {
		t.Errorf("unexpected unrecognized keys: %v", cfg.Unrecognized)
	}
}

func TestParseConfigErrors(t *testing.T) {
	inputs := map[string]string{
		"no equals":       "depth_buffer_enabled",
		"bad bool":        "depth_buffer_enabled = maybe",
		"bad resolution":  "screen_resolution = RES_WIDE",
		"bad format":      "screen_format = RGB48",
		"bad number":      "episode_timeout = soon",
		"unterminated":    "available_buttons = { ATTACK\nUSE",
		"list for scalar": "doom_map = { map01 }",
		"trailing text":   "available_buttons = { ATTACK } USE",
		"bad append":      "doom_map += map02",
	}
	for name, input := range inputs {
		if _, err := ParseConfig(strings.NewReader(input), ""); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.cfg")
	data := "doom_game_path = freedoom2.wad\nscreen_format = RGB24\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GamePath != filepath.Join(dir, "freedoom2.wad") {
		t.Errorf("unexpected game path: %s", cfg.GamePath)
	}
	if _, err := LoadConfig(filepath.Join(dir, "missing.cfg")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigClone(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(testConfig), "")
	if err != nil {
		t.Fatal(err)
	}
	clone := cfg.Clone()
	clone.Buttons[0] = "USE"
	clone.AddGameArgs("-deathmatch")
	if cfg.Buttons[0] != "MOVE_LEFT" {
		t.Error("clone shares buttons")
	}
	if len(cfg.GameArgs) != 4 {
		t.Error("clone shares game args")
	}
}

func TestScreenFormatChannels(t *testing.T) {
	expected := map[ScreenFormat]int{
		CRCGCB:         3,
		RGB24:          3,
		RGBA32:         4,
		BGR24:          3,
		ABGR32:         4,
		GRAY8:          1,
		DOOM256Colors8: 1,
	}
	for format, channels := range expected {
		if actual := format.Channels(); actual != channels {
			t.Errorf("%v: expected %d channels but got %d", format, channels, actual)
		}
		parsed, err := ParseScreenFormat(strings.ToLower(format.String()))
		if err != nil || parsed != format {
			t.Errorf("%v: round trip gave %v (%v)", format, parsed, err)
		}
	}
}
