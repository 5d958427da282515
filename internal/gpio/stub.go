//go:build !linux

package gpio

import "errors"

// RealChip is not available on non-Linux platforms.
type RealChip struct{}

// OpenRealChip returns an error on non-Linux platforms.
func OpenRealChip(string) (*RealChip, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// RequestLine is not implemented on non-Linux platforms.
func (c *RealChip) RequestLine(int) (*RealLine, error) {
	return nil, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (c *RealChip) Close() error {
	return nil
}

// RealLine is not available on non-Linux platforms.
type RealLine struct{}

func (l *RealLine) Value() (bool, error) {
	return false, errors.New("gpio: not supported")
}

func (l *RealLine) Watch(func()) error {
	return errors.New("gpio: not supported")
}

func (l *RealLine) Unwatch() error {
	return nil
}

func (l *RealLine) Close() error {
	return nil
}
