package logic

import (
	"testing"
	"time"
)

func TestStatsCounts(t *testing.T) {
	s := NewStats(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	s.RecordDecision(DecisionTurnOn)
	s.RecordDecision(DecisionTurnOn)
	s.RecordDecision(DecisionTurnOff)
	s.RecordDecision(DecisionNoChange) // not counted
	s.RecordSensorFault()
	s.RecordReadFault()
	s.RecordPushFault()
	s.RecordPushFault()

	got := s.Counts()
	want := DecisionCounts{TurnOn: 2, TurnOff: 1, SensorFaults: 1, ReadFaults: 1, PushFaults: 2}
	if got != want {
		t.Errorf("Counts() = %+v, want %+v", got, want)
	}
}

func TestCheckHeartbeatDisabled(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStats(start)

	if hb := s.CheckHeartbeat(start.Add(time.Hour), 0); hb != nil {
		t.Errorf("expected nil heartbeat when disabled, got %+v", hb)
	}
}

func TestCheckHeartbeatInterval(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStats(start)
	interval := 15 * time.Minute

	if hb := s.CheckHeartbeat(start.Add(10*time.Minute), interval); hb != nil {
		t.Errorf("expected nil before interval elapsed, got %+v", hb)
	}

	hb := s.CheckHeartbeat(start.Add(15*time.Minute), interval)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("Uptime = %v, want 15m", hb.Uptime)
	}

	// Interval restarts from the last heartbeat.
	if hb := s.CheckHeartbeat(start.Add(20*time.Minute), interval); hb != nil {
		t.Errorf("expected nil 5m after last heartbeat, got %+v", hb)
	}
	if hb := s.CheckHeartbeat(start.Add(30*time.Minute), interval); hb == nil {
		t.Error("expected heartbeat 15m after last heartbeat")
	}
}
