//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealOutput drives an actual GPIO line using the Linux GPIO character device.
type RealOutput struct {
	chip  *gpiocdev.Chip
	line  *gpiocdev.Line
	level bool
}

// NewRealOutput requests the given pin as an output, initially driven low.
func NewRealOutput(pin int) (*RealOutput, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}

	return &RealOutput{chip: chip, line: line}, nil
}

// SetLevel drives the line to the given level.
func (o *RealOutput) SetLevel(level bool) error {
	v := 0
	if level {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set line value: %w", err)
	}
	o.level = level
	return nil
}

// Level returns the level the line is currently driven to. Output lines
// cannot be read back through the character device on all kernels, so the
// last driven level is tracked locally.
func (o *RealOutput) Level() (bool, error) {
	return o.level, nil
}

// Close releases the line and chip. The line is NOT reconfigured on close:
// the pin must hold the last driven (fail-safe) level through release, and
// the kernel keeps an output's value until another consumer claims it.
func (o *RealOutput) Close() error {
	var errs []error

	if o.line != nil {
		if err := o.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin: %w", err))
		}
	}
	if o.chip != nil {
		if err := o.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
