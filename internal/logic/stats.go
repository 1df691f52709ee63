package logic

import "time"

// Stats accumulates decision and fault counts and gates heartbeat
// emission. Owned by the control loop; not safe for concurrent use.
type Stats struct {
	startTime     time.Time
	lastHeartbeat time.Time
	counts        DecisionCounts
}

// NewStats creates a Stats anchored at the given start time. The start
// time is used for uptime in heartbeat events.
func NewStats(startTime time.Time) *Stats {
	return &Stats{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// RecordDecision counts an applied (successfully pushed) decision.
func (s *Stats) RecordDecision(d Decision) {
	switch d {
	case DecisionTurnOn:
		s.counts.TurnOn++
	case DecisionTurnOff:
		s.counts.TurnOff++
	}
}

// RecordSensorFault counts a failed sensor read.
func (s *Stats) RecordSensorFault() {
	s.counts.SensorFaults++
}

// RecordReadFault counts a failed unit state read.
func (s *Stats) RecordReadFault() {
	s.counts.ReadFaults++
}

// RecordPushFault counts a failed unit state push.
func (s *Stats) RecordPushFault() {
	s.counts.PushFaults++
}

// Counts returns a copy of the accumulated counts.
func (s *Stats) Counts() DecisionCounts {
	return s.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed or if interval is <= 0 (disabled).
func (s *Stats) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(s.lastHeartbeat) < interval {
		return nil
	}

	s.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(s.startTime),
		Counts:    s.counts,
	}
}
