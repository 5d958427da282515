// Package task wraps a long-lived background goroutine behind a small
// launch/stop/query surface. A Runner owns at most one goroutine at a time;
// the concrete sensor supplies the loop body.
package task

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyRunning is returned by Start when the runner already holds a
// live goroutine.
var ErrAlreadyRunning = errors.New("task: already running")

// Runner manages one background goroutine. The handle is held iff the loop
// is running: the runner retires its own handle when the loop returns, so
// IsRunning reports false even for loops that exit on their own.
type Runner struct {
	name string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner creates a Runner with the given name. The name appears in logs
// only; it is not required to be unique.
func NewRunner(name string) *Runner {
	return &Runner{name: name}
}

// Name returns the runner's name.
func (r *Runner) Name() string { return r.name }

// Start launches loop in a new goroutine. The loop should return promptly
// once its context is canceled.
func (r *Runner) Start(loop func(context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		loop(ctx)

		// Retire the handle before the goroutine ends so IsRunning turns
		// false as soon as the loop returns.
		r.mu.Lock()
		if r.done == done {
			r.cancel = nil
			r.done = nil
		}
		r.mu.Unlock()
		cancel()
	}()
	return nil
}

// IsRunning reports whether the runner currently holds a live goroutine.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Stop cancels the loop's context and waits for the loop to return.
// Stopping a runner that is not running is a no-op.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
