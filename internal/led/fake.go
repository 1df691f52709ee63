package led

// FakeDriver records LED state changes for test assertions.
type FakeDriver struct {
	// On is the LED's current state.
	On bool

	// Transitions records every value passed to Set.
	Transitions []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver with the LED off.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Set records the LED state change.
func (f *FakeDriver) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.On = on
	f.Transitions = append(f.Transitions, on)
	return nil
}

// Close turns the LED off and marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.On = false
	f.Closed = true
	return nil
}
