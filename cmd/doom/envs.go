package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/experiment"
	"github.com/aleskucera/DOOM/gymdoom"
	"github.com/aleskucera/DOOM/render"
)

// envShape describes the preprocessed environments.
type envShape struct {
	Channels int
	Actions  int
}

// makeEnvs creates n preprocessed environments for an
// experiment: frames are resized to the experiment's
// image size and rewards are scaled.
func makeEnvs(exp *experiment.Experiment, n int, monitorDir string,
	opts ...doom.Option) (envs []doom.RLEnv, shape envShape, err error) {
	dialer := &gymdoom.Dialer{
		Host:       exp.GymHost,
		MonitorDir: monitorDir,
		Logger:     logger,
	}
	opts = append([]doom.Option{doom.WithLogger(logger)}, opts...)
	for i := 0; i < n; i++ {
		env, err := doom.Make(exp.Env, dialer.Dial, opts...)
		if err != nil {
			doom.CloseEnvs(envs)
			return nil, shape, err
		}
		shape.Actions = env.ActionSpace().N
		resized := doom.NewResizeEnv(&doom.AnyEnv{Env: env}, exp.Image.Height,
			exp.Image.Width, exp.Training.FrameSkip)
		shape.Channels = resized.Channels
		envs = append(envs, &doom.RewardScaleEnv{
			RLEnv: resized,
			Scale: exp.Training.RewardScale,
		})
	}
	return envs, shape, nil
}

// newWindow creates a window sized for an environment's
// screen.
func newWindow(envID string) (*render.Window, error) {
	spec, ok := doom.Lookup(envID)
	if !ok {
		return nil, fmt.Errorf("unknown environment: %s", envID)
	}
	cfg, err := doom.LoadConfig(spec.ConfigPath())
	if err != nil {
		return nil, err
	}
	return render.NewWindow(envID, cfg.ScreenWidth, cfg.ScreenHeight, 0), nil
}

// runWindow runs work in the background while the window
// runs on the main goroutine.
//
// Closing the window cancels the work. The window closes
// when the work is done.
func runWindow(ctx context.Context, w *render.Window,
	work func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- work(ctx)
		w.Close()
	}()
	runErr := w.Run()

	select {
	case err := <-done:
		if err != nil && !windowClosed(err) {
			return err
		}
		return runErr
	default:
		// The window was closed first.
		cancel()
		<-done
		return runErr
	}
}

// windowClosed checks if an error came from showing a
// frame after the window closed.
//
// The error passes through essentials.AddCtx, which may
// not implement Unwrap, so the message is checked when
// errors.Is fails.
func windowClosed(err error) bool {
	return errors.Is(err, render.ErrWindowClosed) ||
		strings.Contains(err.Error(), render.ErrWindowClosed.Error())
}
