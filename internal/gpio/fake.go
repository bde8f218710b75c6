package gpio

import "errors"

// FakeOutput is a test double that records driven levels.
type FakeOutput struct {
	// CurrentLevel is the level the line is "driven" to.
	CurrentLevel bool

	// History records every level passed to SetLevel, in order.
	History []bool

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, will be returned by SetLevel.
	SetError error

	// LevelError, if set, will be returned by Level.
	LevelError error

	// CloseError, if set, will be returned by Close.
	CloseError error
}

// NewFakeOutput creates a FakeOutput with the line initially low.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// SetLevel records the driven level.
func (f *FakeOutput) SetLevel(level bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	if f.Closed {
		return errors.New("set level on closed output")
	}
	f.CurrentLevel = level
	f.History = append(f.History, level)
	return nil
}

// Level returns the last driven level.
func (f *FakeOutput) Level() (bool, error) {
	if f.LevelError != nil {
		return false, f.LevelError
	}
	if f.Closed {
		return false, errors.New("read level on closed output")
	}
	return f.CurrentLevel, nil
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.Closed = true
	return f.CloseError
}

// Reset clears recorded state.
func (f *FakeOutput) Reset() {
	f.CurrentLevel = false
	f.History = nil
	f.Closed = false
	f.SetError = nil
	f.LevelError = nil
	f.CloseError = nil
}
