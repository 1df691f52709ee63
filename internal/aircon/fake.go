package aircon

import "context"

// FakeUnit is a test double that behaves like a unit: pushes are applied
// to its state, reads report it, and either can be made to fail.
type FakeUnit struct {
	// state is the unit's current state, visible via ReadState.
	state State

	// Pushes records every state successfully pushed.
	Pushes []State

	// ReadError, if set, will be returned by ReadState.
	ReadError error

	// PushError, if set, will be returned by PushState (and the push is
	// not applied).
	PushError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeUnit creates a FakeUnit with the given initial state.
func NewFakeUnit(initial State) *FakeUnit {
	return &FakeUnit{state: initial}
}

// ReadState returns the unit's current state.
func (f *FakeUnit) ReadState(ctx context.Context) (State, error) {
	if f.ReadError != nil {
		return State{}, f.ReadError
	}
	return f.state, nil
}

// PushState applies and records the desired state.
func (f *FakeUnit) PushState(ctx context.Context, s State) error {
	if f.PushError != nil {
		return f.PushError
	}
	f.state = s
	f.Pushes = append(f.Pushes, s)
	return nil
}

// SetState changes the unit's state out-of-band, as if someone used the
// IR remote.
func (f *FakeUnit) SetState(s State) {
	f.state = s
}

// State returns the unit's current state without going through ReadState.
func (f *FakeUnit) State() State {
	return f.state
}

// Close marks the unit as closed.
func (f *FakeUnit) Close() error {
	f.Closed = true
	return nil
}
