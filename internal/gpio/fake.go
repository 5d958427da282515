package gpio

import (
	"errors"
	"sync"
)

// FakeLine is a test double for Line. Tests drive the level with SetLevel;
// level changes fire the watch handler exactly as a hardware edge would.
//
// Safe for concurrent use: tests mutate the level while the sensor's
// background task reads it.
type FakeLine struct {
	mu       sync.Mutex
	level    bool
	handler  func()
	watching bool
	closed   bool

	watchCalls   int
	unwatchCalls int

	// ValueError, if set, will be returned by Value.
	ValueError error
}

// NewFakeLine creates a FakeLine at the given initial level, unwatched.
func NewFakeLine(level bool) *FakeLine {
	return &FakeLine{level: level}
}

// Value returns the current scripted level.
func (f *FakeLine) Value() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ValueError != nil {
		return false, f.ValueError
	}
	if f.closed {
		return false, errors.New("fake line closed")
	}
	return f.level, nil
}

// Watch arms edge delivery to fn.
func (f *FakeLine) Watch(fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("fake line closed")
	}
	f.handler = fn
	f.watching = true
	f.watchCalls++
	return nil
}

// Unwatch masks edge delivery.
func (f *FakeLine) Unwatch() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watching = false
	f.unwatchCalls++
	return nil
}

// Close marks the line closed.
func (f *FakeLine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watching = false
	f.closed = true
	return nil
}

// SetLevel changes the scripted level. A change while watching fires the
// handler, like an electrical edge; setting the same level fires nothing.
func (f *FakeLine) SetLevel(level bool) {
	f.mu.Lock()
	changed := f.level != level
	f.level = level
	var fn func()
	if changed && f.watching {
		fn = f.handler
	}
	f.mu.Unlock()

	// Fire outside the lock; the handler may call back into the line.
	if fn != nil {
		fn()
	}
}

// Bounce applies a sequence of levels, firing an edge for each change.
func (f *FakeLine) Bounce(levels ...bool) {
	for _, l := range levels {
		f.SetLevel(l)
	}
}

// Watching reports whether edge delivery is armed.
func (f *FakeLine) Watching() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watching
}

// Closed reports whether Close was called.
func (f *FakeLine) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// WatchCalls returns the number of Watch calls.
func (f *FakeLine) WatchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watchCalls
}

// UnwatchCalls returns the number of Unwatch calls.
func (f *FakeLine) UnwatchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unwatchCalls
}
