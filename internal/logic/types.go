// Package logic contains pure business logic for the A/C controller.
// This package has NO external dependencies (no SNMP, UDP, MQTT, OS, or
// time.Sleep). Time is always injectable via time.Time parameters.
package logic

import "time"

// Decision is the outcome of one control cycle evaluation.
type Decision string

const (
	DecisionTurnOn   Decision = "TURN_ON"
	DecisionTurnOff  Decision = "TURN_OFF"
	DecisionNoChange Decision = "NO_CHANGE"
)

// Band is the hysteresis temperature band. Readings above On switch the
// unit on, readings below Off switch it off, and readings inside
// [Off, On] never change power state.
type Band struct {
	On  float64 // switch-on threshold in °C
	Off float64 // switch-off threshold in °C
}

// Valid reports whether the band is usable. A band with On <= Off would
// make TurnOn and TurnOff simultaneously true for some readings.
func (b Band) Valid() bool {
	return b.On > b.Off
}

// UnitState is the controller's cached view of the A/C unit: the last
// power and target temperature it has observed or successfully pushed.
// Owned by the control loop; mutated only at cycle boundaries.
type UnitState struct {
	Power      bool
	TargetTemp float64
}

// DecisionCounts tracks applied decisions and faults since startup.
type DecisionCounts struct {
	TurnOn       int
	TurnOff      int
	SensorFaults int
	ReadFaults   int
	PushFaults   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    DecisionCounts
}
