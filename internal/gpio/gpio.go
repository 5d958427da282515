// Package gpio provides the hardware line boundary for presence sensors.
// The real implementation uses the Linux GPIO character device with edge
// events; the fake implementation allows testing without hardware.
package gpio

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"

// Line is one digital input line with edge-event delivery.
type Line interface {
	// Value returns the instantaneous logical level of the line
	// (true = high). It is valid in any watch state.
	Value() (bool, error)

	// Watch arms edge delivery: fn is invoked on every edge until Unwatch
	// or Close. fn runs on the event-delivery goroutine and must not
	// block — it should do nothing beyond signaling a task.
	Watch(fn func()) error

	// Unwatch masks edge delivery. The line can be re-armed with Watch.
	Unwatch() error

	// Close masks edges and releases the line.
	Close() error
}
