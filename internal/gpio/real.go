//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// RealChip wraps a Linux GPIO character device and hands out edge-watched
// input lines.
type RealChip struct {
	chip *gpiocdev.Chip
}

// OpenRealChip opens the named GPIO character device (e.g. "gpiochip0").
func OpenRealChip(name string) (*RealChip, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &RealChip{chip: chip}, nil
}

// RequestLine requests the given offset as an input with pull-down and edge
// detection on both edges. Edge delivery starts masked; call Watch to arm it.
func (c *RealChip) RequestLine(offset int) (*RealLine, error) {
	l := &RealLine{}
	line, err := c.chip.RequestLine(offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(l.onEvent),
	)
	if err != nil {
		return nil, fmt.Errorf("request line %d: %w", offset, err)
	}
	l.line = line
	return l, nil
}

// Close releases the chip handle. Lines requested from it must be closed
// separately.
func (c *RealChip) Close() error {
	if err := c.chip.Close(); err != nil {
		return fmt.Errorf("close chip: %w", err)
	}
	return nil
}

// RealLine is one edge-watched input line on a RealChip.
//
// The kernel keeps edge detection enabled for the lifetime of the request;
// Watch and Unwatch gate delivery with an armed flag, so masked edges are
// dropped without a reconfigure round-trip.
type RealLine struct {
	line  *gpiocdev.Line
	armed atomic.Bool

	mu      sync.Mutex
	handler func()
}

func (l *RealLine) onEvent(gpiocdev.LineEvent) {
	if !l.armed.Load() {
		return
	}
	l.mu.Lock()
	fn := l.handler
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Value returns the instantaneous logical level of the line.
func (l *RealLine) Value() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, fmt.Errorf("read line: %w", err)
	}
	return v != 0, nil
}

// Watch arms edge delivery to fn.
func (l *RealLine) Watch(fn func()) error {
	l.mu.Lock()
	l.handler = fn
	l.mu.Unlock()
	l.armed.Store(true)
	return nil
}

// Unwatch masks edge delivery.
func (l *RealLine) Unwatch() error {
	l.armed.Store(false)
	return nil
}

// Close masks edges, reconfigures the line to input with pull-down
// (matching boot defaults, so teardown never leaves the line in an odd
// state) and releases it.
func (l *RealLine) Close() error {
	l.armed.Store(false)

	var errs []error
	if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure line: %w", err))
	}
	if err := l.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close line: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
