package window

import (
	"context"
	"errors"
	"runtime"
	"time"
)

// Loop owns a Context on a single goroutine. It drains events on a fixed
// cadence and runs submitted calls between drains, so callers on other
// goroutines never touch the Context concurrently.
type Loop struct {
	ctx      *Context
	interval time.Duration
	calls    chan call
	done     chan struct{}
	// OnDrain runs after every drain, on the loop goroutine.
	OnDrain func(*Context)
}

type call struct {
	fn    func(*Context) error
	reply chan error
}

// NewLoop creates a loop for c. Run must be called to start it.
func NewLoop(c *Context, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &Loop{
		ctx:      c,
		interval: interval,
		calls:    make(chan call),
		done:     make(chan struct{}),
	}
}

// Run drains events until ctx is cancelled. It locks the goroutine to its OS
// thread since native windows are bound to the thread that pumps them. The
// Context is destroyed on that same thread before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.done)
	defer l.teardown()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-l.calls:
			c.reply <- c.fn(l.ctx)
		case <-ticker.C:
			if err := l.ctx.HandleEvents(); err != nil {
				if errors.Is(err, ErrContextDestroyed) {
					return err
				}
				l.ctx.log.Warn().Err(err).Msg("Event drain failed")
			}
			if l.OnDrain != nil {
				l.OnDrain(l.ctx)
			}
		}
	}
}

func (l *Loop) teardown() {
	if err := l.ctx.Destroy(); err != nil && !errors.Is(err, ErrContextDestroyed) {
		l.ctx.log.Error().Err(err).Msg("Failed to destroy context")
	}
}

// Do runs fn on the loop goroutine and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func(*Context) error) error {
	reply := make(chan error, 1)
	select {
	case l.calls <- call{fn: fn, reply: reply}:
	case <-l.done:
		return ErrContextDestroyed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe forwards to the owned Context.
func (l *Loop) Subscribe() chan Transition {
	return l.ctx.Subscribe()
}

// Unsubscribe forwards to the owned Context.
func (l *Loop) Unsubscribe(ch chan Transition) {
	l.ctx.Unsubscribe(ch)
}
