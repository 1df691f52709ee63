// Package status provides a thread-safe status tracker for the
// ac-controller daemon. It is read by HTTP handlers and the status LED.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/ac-controller/internal/logic"
)

// UnitInfo identifies the bound A/C unit. This is a local copy to avoid
// importing internal/aircon from status.
type UnitInfo struct {
	ID   string
	Name string
	Addr string
}

// Config contains daemon configuration for display.
type Config struct {
	IntervalMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	ConfigPath  string
	SensorHost  string
	SensorOID   string
	TargetTemp  float64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Temperature   float64 // last successful reading
	HaveReading   bool    // false until the first successful read
	Unit          logic.UnitState
	Restricted    bool
	Ready         bool // true after the first fully evaluated cycle
	Counts        logic.DecisionCounts
	Band          logic.Band
	Window        logic.Window
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	UnitInfo      UnitInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetUnit records the bound unit's identity. Called once after bind.
func (t *Tracker) SetUnit(info UnitInfo) {
	t.mu.Lock()
	t.snap.UnitInfo = info
	t.mu.Unlock()
}

// Update sets the outcome of a fully evaluated cycle.
// Called from runLoop on every tick that reaches a decision.
func (t *Tracker) Update(temp float64, unit logic.UnitState, restricted bool, band logic.Band, window logic.Window, counts logic.DecisionCounts) {
	t.mu.Lock()
	t.snap.Temperature = temp
	t.snap.HaveReading = true
	t.snap.Unit = unit
	t.snap.Restricted = restricted
	t.snap.Band = band
	t.snap.Window = window
	t.snap.Counts = counts
	t.snap.Ready = true
	t.mu.Unlock()
}

// UpdateCounts refreshes the fault counters on cycles that never reached
// a decision (sensor faults).
func (t *Tracker) UpdateCounts(counts logic.DecisionCounts) {
	t.mu.Lock()
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
