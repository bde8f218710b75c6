// Package gpio provides the e-stop digital output with hardware abstraction.
// The real implementation drives a Linux GPIO character device line.
// The fake implementation allows testing without hardware.
package gpio

// Output drives a single digital output line.
type Output interface {
	// SetLevel drives the line to the given level (true = high).
	SetLevel(level bool) error

	// Level returns the level the line is currently driven to.
	Level() (bool, error)

	// Close releases the line. The caller is responsible for driving a safe
	// level before closing.
	Close() error
}

// DefaultPin is the default e-stop output pin (BCM numbering).
const DefaultPin = 4
