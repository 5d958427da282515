// Package presence implements a debounced digital presence sensor.
//
// A hardware edge wakes the sensor's background task through a single-slot
// signal. The task masks further edges, waits out the debounce window,
// re-arms edge delivery, re-reads the line and notifies observers only if
// the settled level differs from the last notified one. Rapid electrical
// bounce therefore collapses into at most one notification per real
// transition.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/sweeney/presence-sensor/internal/gpio"
	"github.com/sweeney/presence-sensor/internal/logging"
	"github.com/sweeney/presence-sensor/internal/sensor"
	"github.com/sweeney/presence-sensor/internal/task"
)

// DefaultDebounce is the settle window applied when none is configured.
const DefaultDebounce = 5 * time.Millisecond

// Sensor is one debounced presence detector bound to a GPIO line.
// It owns the line and a background task for the lifetime of the object.
type Sensor struct {
	sensor.Observable

	name     string
	line     gpio.Line
	debounce time.Duration
	now      func() time.Time
	sleep    func(context.Context, time.Duration)

	runner *task.Runner
	wake   chan struct{}

	// last is the last notified stable level. Written only by the
	// background task (seeded by Start before launch), so no lock.
	last bool
}

// Option configures a Sensor.
type Option func(*Sensor)

// WithDebounce sets the settle window.
func WithDebounce(d time.Duration) Option {
	return func(s *Sensor) { s.debounce = d }
}

// WithClock sets the time source stamped onto events. Tests use a fixed
// clock.
func WithClock(now func() time.Time) Option {
	return func(s *Sensor) { s.now = now }
}

// WithSleep replaces the settle-window sleep. Tests use a no-op.
func WithSleep(sleep func(context.Context, time.Duration)) Option {
	return func(s *Sensor) { s.sleep = sleep }
}

// New creates a Sensor on the given line. The sensor takes ownership of the
// line; Close releases it.
func New(name string, line gpio.Line, opts ...Option) *Sensor {
	s := &Sensor{
		name:     name,
		line:     line,
		debounce: DefaultDebounce,
		now:      time.Now,
		sleep:    sleepCtx,
		runner:   task.NewRunner(name),
		// Capacity 1: edges arriving while a settle cycle is pending
		// coalesce into a single wake.
		wake: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the sensor's name.
func (s *Sensor) Name() string { return s.name }

// Read returns the instantaneous raw line level. It bypasses debounce
// entirely; callers wanting a stable value must use the observer channel.
func (s *Sensor) Read() (bool, error) {
	return s.line.Value()
}

// Running reports whether the background task is live.
func (s *Sensor) Running() bool {
	return s.runner.IsRunning()
}

// Start seeds the last-notified level from an initial read, arms edge
// delivery and launches the background task. Any failure is returned to the
// caller; a sensor that fails to start produces no notifications.
func (s *Sensor) Start() error {
	level, err := s.line.Value()
	if err != nil {
		return fmt.Errorf("%s: initial read: %w", s.name, err)
	}
	s.last = level

	if err := s.line.Watch(s.signal); err != nil {
		return fmt.Errorf("%s: watch: %w", s.name, err)
	}
	if err := s.runner.Start(s.loop); err != nil {
		s.line.Unwatch()
		return fmt.Errorf("%s: launch task: %w", s.name, err)
	}
	logging.Logger.Debug().Str("sensor", s.name).Bool("level", level).Msg("sensor started")
	return nil
}

// Stop joins the background task and leaves edge delivery masked. The
// sensor can be restarted with Start.
func (s *Sensor) Stop() {
	s.runner.Stop()
	s.line.Unwatch()
}

// Close stops the sensor and releases its line.
func (s *Sensor) Close() error {
	s.Stop()
	return s.line.Close()
}

// signal is the edge handler. It runs in the event-delivery context and
// does the minimum possible work: a non-blocking send on the wake channel.
func (s *Sensor) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Sensor) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}
		s.settle(ctx)
	}
}

// settle runs one debounce cycle: mask edges, wait out the window, re-arm,
// re-read, notify on change.
func (s *Sensor) settle(ctx context.Context) {
	if err := s.line.Unwatch(); err != nil {
		logging.Logger.Warn().Err(err).Str("sensor", s.name).Msg("mask edges")
	}
	s.sleep(ctx, s.debounce)
	if err := s.line.Watch(s.signal); err != nil {
		logging.Logger.Error().Err(err).Str("sensor", s.name).Msg("re-arm edges")
		return
	}

	level, err := s.line.Value()
	if err != nil {
		logging.Logger.Warn().Err(err).Str("sensor", s.name).Msg("read after settle")
		return
	}
	if level == s.last {
		// Net level unchanged after the window; the edges were bounce.
		return
	}
	s.last = level
	s.NotifyAll(sensor.Event{Sensor: s.name, Present: level, Time: s.now()})
}

// sleepCtx sleeps for d or until ctx is canceled.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
