// Package launch runs engine processes, alone or as
// networked sessions.
package launch

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"

	doom "github.com/aleskucera/DOOM"
	"github.com/charmbracelet/log"
	"github.com/unixpickle/essentials"
)

// DefaultBinary is the engine executable used when an
// Engine does not name one.
const DefaultBinary = "vizdoom"

// Engine starts engine processes for one game config.
type Engine struct {
	// Binary is the executable.
	// If empty, DefaultBinary is looked up in $PATH.
	Binary string

	Config *doom.Config

	// Stdout and Stderr receive the output of every
	// process.
	// If nil, the output of this process is used.
	Stdout io.Writer
	Stderr io.Writer

	// Logger, if non-nil, logs processes as they start.
	Logger *log.Logger
}

// Args returns the arguments for running the engine in
// the given role.
func (e *Engine) Args(role Role) []string {
	var res []string
	cfg := e.Config
	if cfg.GamePath != "" {
		res = append(res, "-iwad", cfg.GamePath)
	}
	if cfg.ScenarioPath != "" {
		res = append(res, "-file", cfg.ScenarioPath)
	}
	if cfg.Map != "" {
		res = append(res, "+map", cfg.Map)
	}
	if cfg.Skill != 0 {
		res = append(res, "-skill", strconv.Itoa(cfg.Skill))
	}
	if cfg.ScreenWidth != 0 && cfg.ScreenHeight != 0 {
		res = append(res, "-width", strconv.Itoa(cfg.ScreenWidth),
			"-height", strconv.Itoa(cfg.ScreenHeight))
	}
	if !cfg.SoundEnabled {
		res = append(res, "-nosound")
	}
	res = append(res, cfg.GameArgs...)
	if role != nil {
		res = append(res, role.Args()...)
	}
	return res
}

// Command creates a process for the given role.
// The process is killed if the context is done.
func (e *Engine) Command(ctx context.Context, role Role) *exec.Cmd {
	binary := e.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	cmd := exec.CommandContext(ctx, binary, e.Args(role)...)
	cmd.Stdout = e.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = e.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return cmd
}

// Run runs the engine in the given role until it exits.
func (e *Engine) Run(ctx context.Context, role Role) (err error) {
	cmd := e.Command(ctx, role)
	defer essentials.AddCtxTo("run "+cmd.Path, &err)
	if e.Logger != nil {
		e.Logger.Info("starting engine", "binary", cmd.Path, "args", cmd.Args[1:])
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
