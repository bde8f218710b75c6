// Package estop implements the e-stop controller: it owns the logical
// engagement state, the manual-override flag, the wiring mode, and the
// physical output line, and it keeps all four consistent across every
// operation including shutdown.
//
// The controller is single-threaded by contract: callers that share one
// instance across goroutines must serialize access externally (the monitor
// daemon does this through the status tracker).
package estop

import (
	"errors"
	"fmt"
	"log"

	"github.com/sweeney/estop-controller/internal/config"
	"github.com/sweeney/estop-controller/internal/gpio"
	"github.com/sweeney/estop-controller/internal/polarity"
)

// ErrTerminated is returned by mutating operations after Shutdown.
var ErrTerminated = errors.New("estop: controller is shut down")

// Status is the fixed-shape record returned by QueryStatus. Presentation
// layers depend on this field set; it is the stable contract.
type Status struct {
	State           polarity.State
	Level           bool
	Mode            polarity.Mode
	ManualOverride  bool
	OutputAvailable bool
	Pin             int
	Platform        string
	Terminated      bool
}

// Options configures controller construction.
type Options struct {
	// ConfigPath is the persisted config location. Empty means
	// config.DefaultPath().
	ConfigPath string

	// Pin overrides the persisted GPIO pin when > 0.
	Pin int

	// OpenOutput acquires the output line for a pin. Nil means the real
	// hardware backend. Acquisition failure is not fatal: the controller
	// degrades to simulation mode.
	OpenOutput func(pin int) (gpio.Output, error)
}

// Controller drives the e-stop output line.
type Controller struct {
	mode       polarity.Mode
	override   bool
	pin        int
	configPath string
	out        gpio.Output // nil in simulation mode
	terminated bool
	platform   string
}

// New constructs a controller: loads persisted config (defaults on any load
// failure), acquires the output line (simulation on any acquisition
// failure), and immediately drives the line to match the loaded state.
// Construction never fails.
func New(opts Options) *Controller {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Printf("estop: config load degraded (%v), continuing with defaults", err)
	}

	pin := cfg.GPIOPin
	if opts.Pin > 0 {
		pin = opts.Pin
	}

	c := &Controller{
		mode:       cfg.Mode,
		override:   cfg.ManualOverride,
		pin:        pin,
		configPath: path,
		platform:   detectPlatform(cpuinfoPath),
	}

	open := opts.OpenOutput
	if open == nil {
		open = func(pin int) (gpio.Output, error) { return gpio.NewRealOutput(pin) }
	}
	out, err := open(pin)
	if err != nil {
		log.Printf("estop: output pin %d unavailable (%v), running in simulation mode", pin, err)
	} else {
		c.out = out
	}

	// Make the line agree with the loaded state before anyone observes it.
	if err := c.drive(polarity.RequiredLevel(c.override, c.mode)); err != nil {
		log.Printf("estop: initial output write failed: %v", err)
	}

	return c
}

// Activate engages the e-stop: sets the manual override, drives the output
// to the engaged level, and persists. The state change and output write
// always take effect; only drive/persist failures are reported.
func (c *Controller) Activate() error {
	if c.terminated {
		return ErrTerminated
	}

	c.override = true

	var driveErr, saveErr error
	if err := c.drive(polarity.RequiredLevel(true, c.mode)); err != nil {
		driveErr = fmt.Errorf("drive output: %w", err)
	}
	if err := c.save(); err != nil {
		saveErr = fmt.Errorf("save config: %w", err)
	}
	return errors.Join(driveErr, saveErr)
}

// Reset disengages the e-stop: clears the manual override, recomputes the
// logical state with the override gone, drives the output to match, and
// persists.
func (c *Controller) Reset() error {
	if c.terminated {
		return ErrTerminated
	}

	c.override = false

	// The line is an output this controller owns, so "reading" it back only
	// echoes the previous write. The effective state after clearing the
	// override therefore comes from the simulation policy: the line implies
	// whatever the override implies, which is now disengaged.
	engaged := polarity.ImpliedEngaged(c.simulatedLevel(), c.mode)

	var driveErr, saveErr error
	if err := c.drive(polarity.RequiredLevel(engaged, c.mode)); err != nil {
		driveErr = fmt.Errorf("drive output: %w", err)
	}
	if err := c.save(); err != nil {
		saveErr = fmt.Errorf("save config: %w", err)
	}
	return errors.Join(driveErr, saveErr)
}

// SetMode changes the wiring mode and persists it. The output level is NOT
// touched: mode changes take effect prospectively, on the next Activate or
// Reset, so reconfiguration never causes a surprise output transition.
func (c *Controller) SetMode(mode polarity.Mode) error {
	if c.terminated {
		return ErrTerminated
	}

	c.mode = mode
	if err := c.save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// QueryStatus re-derives the full status record. Nothing is served from a
// cache: the logical state always comes from the current override flag,
// line level, and wiring mode.
func (c *Controller) QueryStatus() Status {
	level := c.readLevel()

	engaged := c.override
	if !engaged {
		engaged = polarity.ImpliedEngaged(level, c.mode)
	}

	return Status{
		State:           polarity.StateFor(engaged),
		Level:           level,
		Mode:            c.mode,
		ManualOverride:  c.override,
		OutputAvailable: c.out != nil,
		Pin:             c.pin,
		Platform:        c.platform,
		Terminated:      c.terminated,
	}
}

// Shutdown is the terminal operation. It drives the output to the fail-safe
// (engaged) level for the current wiring mode — regardless of the current
// state or override — then releases the line. Idempotent: repeat calls are
// no-ops. A drive failure never blocks the release.
func (c *Controller) Shutdown() error {
	if c.terminated {
		return nil
	}
	c.terminated = true

	if c.out == nil {
		return nil
	}

	var errs []error
	if err := c.out.SetLevel(polarity.RequiredLevel(true, c.mode)); err != nil {
		errs = append(errs, fmt.Errorf("drive fail-safe level: %w", err))
	}
	if err := c.out.Close(); err != nil {
		errs = append(errs, fmt.Errorf("release output: %w", err))
	}
	c.out = nil

	return errors.Join(errs...)
}

// Mode returns the current wiring mode.
func (c *Controller) Mode() polarity.Mode {
	return c.mode
}

// ConfigPath returns the resolved config file location.
func (c *Controller) ConfigPath() string {
	return c.configPath
}

// readLevel returns the line level, or the simulated level when no hardware
// is attached (or after shutdown). A hardware read failure is logged and
// reported as low; the bookkeeping (override, mode) is untouched.
func (c *Controller) readLevel() bool {
	if c.out == nil {
		return c.simulatedLevel()
	}
	level, err := c.out.Level()
	if err != nil {
		log.Printf("estop: output read failed: %v", err)
		return false
	}
	return level
}

// simulatedLevel is the documented fallback policy for a missing line: the
// line reads as whatever level the current override implies under the
// current mode.
func (c *Controller) simulatedLevel() bool {
	return polarity.RequiredLevel(c.override, c.mode)
}

func (c *Controller) drive(level bool) error {
	if c.out == nil {
		return nil
	}
	return c.out.SetLevel(level)
}

func (c *Controller) save() error {
	return config.Save(c.configPath, config.Config{
		Mode:           c.mode,
		ManualOverride: c.override,
		GPIOPin:        c.pin,
	})
}
