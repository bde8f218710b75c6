//go:build !linux

package gpio

import "errors"

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// NewRealOutput returns an error on non-Linux platforms. Callers fall back
// to simulation mode.
func NewRealOutput(pin int) (*RealOutput, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// SetLevel is not implemented on non-Linux platforms.
func (o *RealOutput) SetLevel(level bool) error {
	return errors.New("gpio: not supported")
}

// Level is not implemented on non-Linux platforms.
func (o *RealOutput) Level() (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (o *RealOutput) Close() error {
	return nil
}
