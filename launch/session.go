package launch

import (
	"context"
	"errors"
	"time"

	"github.com/unixpickle/essentials"
	"golang.org/x/sync/errgroup"
)

// DefaultStartDelay gives the host time to open its port
// before players join.
const DefaultStartDelay = 100 * time.Millisecond

// RecordTimeLimit is the length, in minutes, of recorded
// sessions.
const RecordTimeLimit = 0.2

// Session is a networked game with one host process and
// any number of joining processes.
type Session struct {
	Engine *Engine

	Host    Role
	Joiners []Role

	StartDelay time.Duration
}

// NewSession creates a two player deathmatch session.
func NewSession(e *Engine) *Session {
	return &Session{
		Engine:     e,
		Host:       DefaultHost(),
		Joiners:    []Role{DefaultJoin()},
		StartDelay: DefaultStartDelay,
	}
}

// Run starts the host, then the joiners, and waits for
// every process to exit.
//
// If any process fails, the others are killed.
func (s *Session) Run(ctx context.Context) (err error) {
	defer essentials.AddCtxTo("run session", &err)
	if s.Host == nil {
		return errors.New("session has no host")
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Engine.Run(ctx, s.Host)
	})

	select {
	case <-ctx.Done():
		return g.Wait()
	case <-time.After(s.StartDelay):
	}

	for _, role := range s.Joiners {
		role := role
		g.Go(func() error {
			return s.Engine.Run(ctx, role)
		})
	}
	return g.Wait()
}

// RecordAndReplay records a short two player deathmatch
// into a demo at path and then replays it from the view
// of the joining player.
func RecordAndReplay(ctx context.Context, e *Engine, path string) (err error) {
	defer essentials.AddCtxTo("record and replay", &err)

	host := DefaultHost()
	host.TimeLimit = RecordTimeLimit
	host.Name = "Player1"
	join := DefaultJoin()
	join.Colorset = 3

	session := &Session{
		Engine:     e,
		Host:       Roles{host, &Record{Path: path}},
		Joiners:    []Role{join},
		StartDelay: DefaultStartDelay,
	}
	if e.Logger != nil {
		e.Logger.Info("recording", "demo", path)
	}
	if err := session.Run(ctx); err != nil {
		return err
	}

	if e.Logger != nil {
		e.Logger.Info("replaying", "demo", path, "player", 2)
	}
	return e.Run(ctx, &Replay{Path: path, Player: 2})
}
