// Package polarity contains the pure wiring-polarity logic for the e-stop
// output line. This package has NO external dependencies (no GPIO, OS, or
// persistence) — it maps logical engagement to physical line levels and back.
package polarity

// Mode is the e-stop wiring convention.
type Mode string

const (
	// ModeNC is Normally Closed: the circuit is held closed (line high) while
	// the e-stop is disengaged, so a wire break reads as engaged. This is the
	// fail-safe default.
	ModeNC Mode = "nc"
	// ModeNO is Normally Open: the line is driven high only while engaged.
	ModeNO Mode = "no"
)

// State is the logical e-stop state as perceived by callers.
type State string

const (
	StateEngaged    State = "ENGAGED"
	StateDisengaged State = "DISENGAGED"
)

// RequiredLevel returns the physical output level that represents the given
// logical engagement under the given wiring mode.
func RequiredLevel(engaged bool, mode Mode) bool {
	if mode == ModeNO {
		return engaged
	}
	return !engaged
}

// ImpliedEngaged is the inverse of RequiredLevel: it interprets a physical
// line level as a logical engagement under the given wiring mode.
func ImpliedEngaged(level bool, mode Mode) bool {
	if mode == ModeNO {
		return level
	}
	return !level
}

// ParseMode parses a persisted or user-supplied mode string. The second
// return value reports whether the input was a known mode; on unknown input
// the caller should fall back to the default, which is what the first return
// value already holds.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeNC:
		return ModeNC, true
	case ModeNO:
		return ModeNO, true
	}
	return ModeNC, false
}

// StateFor converts a boolean engagement into a State.
func StateFor(engaged bool) State {
	if engaged {
		return StateEngaged
	}
	return StateDisengaged
}

// Description returns a human-readable description of the wiring mode.
func (m Mode) Description() string {
	if m == ModeNO {
		return "Normally Open"
	}
	return "Normally Closed (fail-safe)"
}
