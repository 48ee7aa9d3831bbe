package village

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("village: loop stopped")

// LoopConfig configures NewLoop.
type LoopConfig struct {
	// SavePath enables autosave to this file. Empty disables saving.
	SavePath   string
	SavePolicy SavePolicy
	// Now defaults to time.Now.
	Now func() time.Time
	// OnUpdate runs on the loop goroutine after every update.
	OnUpdate func(w *World)
}

// Loop drives a World on its own goroutine for hosts without a frame loop
// of their own. The world must not be touched from other goroutines except
// through Do.
type Loop struct {
	world *World
	cfg   LoopConfig
	cmds  chan command
	done  chan struct{}
}

type command struct {
	fn   func(*World)
	done chan struct{}
}

// NewLoop creates a loop for w. Call Run to start it.
func NewLoop(w *World, cfg LoopConfig) *Loop {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Loop{
		world: w,
		cfg:   cfg,
		cmds:  make(chan command),
		done:  make(chan struct{}),
	}
}

// Run updates the world every tick interval and autosaves every autosave
// interval until ctx is cancelled. It saves once more before returning.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	w := l.world
	tick := time.NewTicker(w.Tuning.TickInterval)
	defer tick.Stop()

	var autosave <-chan time.Time
	if l.cfg.SavePath != "" && w.Tuning.AutosaveInterval > 0 {
		t := time.NewTicker(w.Tuning.AutosaveInterval)
		defer t.Stop()
		autosave = t.C
	}

	Log.WithFields(logrus.Fields{"tick": w.Tuning.TickInterval, "save": l.cfg.SavePath}).Info("village loop started")
	w.Update(l.cfg.Now())
	for {
		select {
		case <-ctx.Done():
			err := l.save()
			Log.Info("village loop stopped")
			return err
		case <-tick.C:
			w.Update(l.cfg.Now())
			if l.cfg.OnUpdate != nil {
				l.cfg.OnUpdate(w)
			}
		case <-autosave:
			if err := l.save(); err != nil {
				Log.WithError(err).Warn("autosave failed")
			}
		case cmd := <-l.cmds:
			cmd.fn(w)
			close(cmd.done)
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*World)) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case l.cmds <- cmd:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) save() error {
	if l.cfg.SavePath == "" {
		return nil
	}
	return SaveFile(l.cfg.SavePath, l.world.Snapshot(), l.cfg.SavePolicy)
}
