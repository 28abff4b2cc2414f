package doom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unixpickle/essentials"
)

// ScreenFormat is the pixel layout of the screen and
// automap buffers.
type ScreenFormat int

const (
	CRCGCB ScreenFormat = iota
	RGB24
	RGBA32
	ARGB32
	CBCGCR
	BGR24
	BGRA32
	ABGR32
	GRAY8
	DOOM256Colors8
)

var screenFormatNames = []string{"CRCGCB", "RGB24", "RGBA32", "ARGB32", "CBCGCR",
	"BGR24", "BGRA32", "ABGR32", "GRAY8", "DOOM_256_COLORS8"}

// String returns the config-file name of the format.
func (s ScreenFormat) String() string {
	if s < 0 || int(s) >= len(screenFormatNames) {
		return fmt.Sprintf("ScreenFormat(%d)", int(s))
	}
	return screenFormatNames[s]
}

// Channels returns the number of bytes per pixel.
func (s ScreenFormat) Channels() int {
	switch s {
	case GRAY8, DOOM256Colors8:
		return 1
	case RGBA32, ARGB32, BGRA32, ABGR32:
		return 4
	default:
		return 3
	}
}

// Mode determines who drives the engine and whether it
// waits for actions.
type Mode int

const (
	ModePlayer Mode = iota
	ModeSpectator
	ModeAsyncPlayer
	ModeAsyncSpectator
)

var modeNames = []string{"PLAYER", "SPECTATOR", "ASYNC_PLAYER", "ASYNC_SPECTATOR"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// AutomapMode selects what the automap buffer shows.
type AutomapMode int

const (
	AutomapNormal AutomapMode = iota
	AutomapWhole
	AutomapObjects
	AutomapObjectsWithSize
)

var automapModeNames = []string{"NORMAL", "WHOLE", "OBJECTS", "OBJECTS_WITH_SIZE"}

func (a AutomapMode) String() string {
	if a < 0 || int(a) >= len(automapModeNames) {
		return fmt.Sprintf("AutomapMode(%d)", int(a))
	}
	return automapModeNames[a]
}

// Render toggles the optional parts of the rendered frame.
type Render struct {
	HUD           bool
	MinimalHUD    bool
	Crosshair     bool
	Weapon        bool
	Decals        bool
	Particles     bool
	EffectSprites bool
	Messages      bool
	Corpses       bool
	ScreenFlashes bool
	AllFrames     bool
}

// Config holds the settings of an engine instance, as
// read from a ViZDoom .cfg file.
type Config struct {
	VizdoomPath  string
	GamePath     string
	ScenarioPath string
	ConfigPath   string

	Map   string
	Skill int
	Seed  *int64

	EpisodeTimeout   int
	EpisodeStartTime int
	LivingReward     float64
	DeathPenalty     float64

	ScreenWidth  int
	ScreenHeight int
	ScreenFormat ScreenFormat
	Render       Render

	WindowVisible  bool
	SoundEnabled   bool
	ConsoleEnabled bool

	DepthBuffer   bool
	LabelsBuffer  bool
	AutomapBuffer bool
	ObjectsInfo   bool
	SectorsInfo   bool

	AutomapMode     AutomapMode
	AutomapRotate   bool
	AutomapTextures bool

	Buttons       []string
	GameVariables []string

	Mode    Mode
	Ticrate int

	// GameArgs are extra engine command-line arguments.
	GameArgs []string

	// Unrecognized lists keys which were present in the
	// file but are not understood.
	Unrecognized []string
}

// DefaultConfig returns the engine's defaults.
func DefaultConfig() *Config {
	return &Config{
		Map:          "map01",
		Skill:        3,
		ScreenWidth:  320,
		ScreenHeight: 240,
		ScreenFormat: CRCGCB,
		Render: Render{
			HUD:           true,
			Crosshair:     false,
			Weapon:        true,
			Decals:        true,
			Particles:     true,
			EffectSprites: true,
			Messages:      true,
			Corpses:       true,
			ScreenFlashes: true,
		},
		WindowVisible:   true,
		AutomapTextures: true,
		Mode:            ModePlayer,
		Ticrate:         DefaultTicrate,
	}
}

// LoadConfig reads a config file.
//
// Relative paths inside the file are resolved against
// the file's directory.
func LoadConfig(path string) (cfg *Config, err error) {
	defer essentials.AddCtxTo("load config "+path, &err)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseConfig(f, filepath.Dir(path))
}

// ParseConfig parses a config starting from the defaults.
func ParseConfig(r io.Reader, baseDir string) (*Config, error) {
	cfg := DefaultConfig()
	p := &configParser{cfg: cfg, baseDir: baseDir}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.lineNum++
		if err := p.line(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if p.listKey != "" {
		return nil, fmt.Errorf("line %d: unterminated list for %s", p.listStart, p.listKey)
	}
	if p.pendingKey != "" {
		return nil, fmt.Errorf("line %d: missing value for %s", p.lineNum, p.pendingKey)
	}
	return cfg, nil
}

// ScreenChannels returns the number of channels in the
// screen and automap buffers.
func (c *Config) ScreenChannels() int {
	return c.ScreenFormat.Channels()
}

// AddGameArgs appends whitespace-separated engine
// arguments.
func (c *Config) AddGameArgs(args string) {
	c.GameArgs = append(c.GameArgs, strings.Fields(args)...)
}

// Clone creates a deep copy of the config.
func (c *Config) Clone() *Config {
	res := *c
	if c.Seed != nil {
		seed := *c.Seed
		res.Seed = &seed
	}
	res.Buttons = append([]string(nil), c.Buttons...)
	res.GameVariables = append([]string(nil), c.GameVariables...)
	res.GameArgs = append([]string(nil), c.GameArgs...)
	res.Unrecognized = append([]string(nil), c.Unrecognized...)
	return &res
}

type configParser struct {
	cfg     *Config
	baseDir string
	lineNum int

	// A key whose value starts on the next line.
	pendingKey    string
	pendingAppend bool

	// State for a brace list spanning several lines.
	listKey    string
	listAppend bool
	listItems  []string
	listStart  int
}

func (p *configParser) line(line string) error {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if p.listKey != "" {
		return p.continueList(line)
	}
	if p.pendingKey != "" {
		key, appendMode := p.pendingKey, p.pendingAppend
		p.pendingKey = ""
		if !strings.HasPrefix(line, "{") {
			return fmt.Errorf("missing value for %s", key)
		}
		return p.startList(key, appendMode, line[1:])
	}

	appendMode := false
	idx := strings.Index(line, "+=")
	if idx >= 0 {
		appendMode = true
	} else if idx = strings.IndexByte(line, '='); idx < 0 {
		return fmt.Errorf("expected key = value: %q", line)
	}
	key := normalizeKey(line[:idx])
	value := line[idx+1:]
	if appendMode {
		value = line[idx+2:]
	}
	value = strings.TrimSpace(value)
	if key == "" {
		return fmt.Errorf("missing key: %q", line)
	}

	if value == "" {
		p.pendingKey = key
		p.pendingAppend = appendMode
		return nil
	}
	if strings.HasPrefix(value, "{") {
		return p.startList(key, appendMode, value[1:])
	}
	if appendMode && !isListKey(key) && key != "game_args" {
		return fmt.Errorf("cannot append to %s", key)
	}
	return p.set(key, value, appendMode)
}

func (p *configParser) startList(key string, appendMode bool, text string) error {
	p.listKey = key
	p.listAppend = appendMode
	p.listItems = nil
	p.listStart = p.lineNum
	return p.continueList(text)
}

func (p *configParser) continueList(text string) error {
	closed := false
	if idx := strings.IndexByte(text, '}'); idx >= 0 {
		if strings.TrimSpace(text[idx+1:]) != "" {
			return fmt.Errorf("unexpected text after '}': %q", text[idx+1:])
		}
		text = text[:idx]
		closed = true
	}
	p.listItems = append(p.listItems, strings.Fields(text)...)
	if !closed {
		return nil
	}
	key, items, appendMode := p.listKey, p.listItems, p.listAppend
	p.listKey = ""
	p.listItems = nil
	if !isListKey(key) {
		return fmt.Errorf("%s does not take a list", key)
	}
	return p.setList(key, items, appendMode)
}

func (p *configParser) setList(key string, items []string, appendMode bool) error {
	for i, item := range items {
		items[i] = strings.ToUpper(item)
	}
	switch key {
	case "available_buttons":
		if !appendMode {
			p.cfg.Buttons = nil
		}
		p.cfg.Buttons = append(p.cfg.Buttons, items...)
	case "available_game_variables":
		if !appendMode {
			p.cfg.GameVariables = nil
		}
		p.cfg.GameVariables = append(p.cfg.GameVariables, items...)
	}
	return nil
}

func (p *configParser) set(key, value string, appendMode bool) error {
	c := p.cfg
	var err error
	switch key {
	case "available_buttons", "available_game_variables":
		return p.setList(key, strings.Fields(value), appendMode)
	case "game_args":
		if !appendMode {
			c.GameArgs = nil
		}
		c.AddGameArgs(value)
	case "vizdoom_path":
		c.VizdoomPath = p.path(value)
	case "doom_game_path":
		c.GamePath = p.path(value)
	case "doom_scenario_path":
		c.ScenarioPath = p.path(value)
	case "doom_config_path":
		c.ConfigPath = p.path(value)
	case "doom_map":
		c.Map = value
	case "doom_skill":
		c.Skill, err = strconv.Atoi(value)
	case "seed":
		var seed int64
		seed, err = strconv.ParseInt(value, 10, 64)
		c.Seed = &seed
	case "episode_timeout":
		c.EpisodeTimeout, err = strconv.Atoi(value)
	case "episode_start_time":
		c.EpisodeStartTime, err = strconv.Atoi(value)
	case "living_reward":
		c.LivingReward, err = strconv.ParseFloat(value, 64)
	case "death_penalty":
		c.DeathPenalty, err = strconv.ParseFloat(value, 64)
	case "ticrate":
		c.Ticrate, err = strconv.Atoi(value)
	case "screen_resolution":
		c.ScreenWidth, c.ScreenHeight, err = ParseResolution(value)
	case "screen_format":
		c.ScreenFormat, err = ParseScreenFormat(value)
	case "mode":
		c.Mode, err = parseEnum(value, modeNames, func(i int) Mode { return Mode(i) })
	case "automap_mode":
		c.AutomapMode, err = parseEnum(value, automapModeNames,
			func(i int) AutomapMode { return AutomapMode(i) })
	default:
		if field := p.boolField(key); field != nil {
			*field, err = parseBool(value)
		} else {
			c.Unrecognized = append(c.Unrecognized, key)
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func (p *configParser) boolField(key string) *bool {
	c := p.cfg
	fields := map[string]*bool{
		"render_hud":              &c.Render.HUD,
		"render_minimal_hud":      &c.Render.MinimalHUD,
		"render_crosshair":        &c.Render.Crosshair,
		"render_weapon":           &c.Render.Weapon,
		"render_decals":           &c.Render.Decals,
		"render_particles":        &c.Render.Particles,
		"render_effects_sprites":  &c.Render.EffectSprites,
		"render_messages":         &c.Render.Messages,
		"render_corpses":          &c.Render.Corpses,
		"render_screen_flashes":   &c.Render.ScreenFlashes,
		"render_all_frames":       &c.Render.AllFrames,
		"window_visible":          &c.WindowVisible,
		"sound_enabled":           &c.SoundEnabled,
		"console_enabled":         &c.ConsoleEnabled,
		"depth_buffer_enabled":    &c.DepthBuffer,
		"labels_buffer_enabled":   &c.LabelsBuffer,
		"automap_buffer_enabled":  &c.AutomapBuffer,
		"objects_info_enabled":    &c.ObjectsInfo,
		"sectors_info_enabled":    &c.SectorsInfo,
		"automap_rotate":          &c.AutomapRotate,
		"automap_render_textures": &c.AutomapTextures,
	}
	return fields[key]
}

func (p *configParser) path(value string) string {
	value = strings.Trim(value, `"`)
	if value == "" || filepath.IsAbs(value) || p.baseDir == "" {
		return value
	}
	return filepath.Join(p.baseDir, value)
}

// ParseResolution parses a name like RES_640X480.
func ParseResolution(name string) (width, height int, err error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(upper, "RES_") {
		return 0, 0, fmt.Errorf("invalid resolution: %s", name)
	}
	parts := strings.Split(upper[4:], "X")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid resolution: %s", name)
	}
	width, err1 := strconv.Atoi(parts[0])
	height, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid resolution: %s", name)
	}
	return width, height, nil
}

// ParseScreenFormat parses a format name like RGB24.
func ParseScreenFormat(name string) (ScreenFormat, error) {
	return parseEnum(name, screenFormatNames, func(i int) ScreenFormat {
		return ScreenFormat(i)
	})
}

func parseEnum[T any](value string, names []string, conv func(int) T) (T, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	for i, name := range names {
		if name == upper {
			return conv(i), nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown value: %s", value)
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean: %s", value)
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.ReplaceAll(key, " ", "_")
}

func isListKey(key string) bool {
	return key == "available_buttons" || key == "available_game_variables"
}
