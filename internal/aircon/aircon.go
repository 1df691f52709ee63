// Package aircon provides access to network A/C units with abstraction
// for testing. Units announce themselves over UDP broadcast; all control
// traffic is JSON datagrams exchanged directly with the unit.
package aircon

import "context"

// Mode is the unit's operating mode.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeCool Mode = "cool"
	ModeDry  Mode = "dry"
	ModeFan  Mode = "fan"
	ModeHeat Mode = "heat"
)

// DeviceInfo identifies a discovered unit.
type DeviceInfo struct {
	ID   string
	Name string
	Addr string // host:port of the unit's control socket
}

// State is a unit's reported or desired state.
type State struct {
	Power      bool
	TargetTemp float64
	Mode       Mode
}

// Unit is a bound A/C unit.
type Unit interface {
	// ReadState queries the unit for its current state. The unit's
	// report is authoritative — it may have been changed at the unit
	// itself or with the IR remote.
	ReadState(ctx context.Context) (State, error)

	// PushState sends a desired state to the unit. Returns an error if
	// the unit does not acknowledge; the caller must not assume the
	// state was applied.
	PushState(ctx context.Context, s State) error

	// Close releases the unit's control socket.
	Close() error
}
