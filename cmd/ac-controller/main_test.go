package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/ac-controller/internal/aircon"
	"github.com/sweeney/ac-controller/internal/config"
	"github.com/sweeney/ac-controller/internal/led"
	"github.com/sweeney/ac-controller/internal/mqtt"
	"github.com/sweeney/ac-controller/internal/sensor"
	"github.com/sweeney/ac-controller/internal/status"
)

func TestStateString(t *testing.T) {
	if got := stateString(true); got != "ON" {
		t.Errorf("stateString(true): got %q, want ON", got)
	}
	if got := stateString(false); got != "OFF" {
		t.Errorf("stateString(false): got %q, want OFF", got)
	}
}

// --- runLoop tests ---

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from runLoop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// flakyUnit wraps a FakeUnit and fails the first failPushes calls to
// PushState. No shared mutable state — the fault count is fixed at
// construction.
type flakyUnit struct {
	inner      *aircon.FakeUnit
	pushCalls  int
	failPushes int
}

func (u *flakyUnit) ReadState(ctx context.Context) (aircon.State, error) {
	return u.inner.ReadState(ctx)
}

func (u *flakyUnit) PushState(ctx context.Context, s aircon.State) error {
	i := u.pushCalls
	u.pushCalls++
	if i < u.failPushes {
		return errors.New("push timed out")
	}
	return u.inner.PushState(ctx, s)
}

func (u *flakyUnit) Close() error { return u.inner.Close() }

// afternoon is comfortably outside the default 21:00-10:00 restricted window.
var afternoon = time.Date(2026, 8, 14, 14, 0, 0, 0, time.UTC)

// lateNight is inside the default restricted window.
var lateNight = time.Date(2026, 8, 14, 23, 0, 0, 0, time.UTC)

// runRunLoop drives runLoop with defaults config (band 24.0/22.5,
// restricted 21:00-10:00) for nTicks ticks, then sends signal and
// returns runLoop's error.
func runRunLoop(t *testing.T, reader sensor.Reader, unit aircon.Unit, pub *mqtt.FakePublisher,
	tracker *status.Tracker, light led.Driver, heartbeat time.Duration,
	clock func() time.Time, nTicks int, signal os.Signal) error {
	t.Helper()
	loader := config.NewLoader("")
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(loader, reader, unit, pub, pub, tracker, light,
			23.0, heartbeat, clock, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	return <-errCh
}

func TestRunLoopTurnsOnWhenHot(t *testing.T) {
	reader := sensor.NewFakeReader([]float64{25.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: false, TargetTemp: 25.0, Mode: aircon.ModeAuto})
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 1, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(unit.Pushes) != 1 {
		t.Fatalf("expected 1 push, got %d", len(unit.Pushes))
	}
	push := unit.Pushes[0]
	if !push.Power {
		t.Error("expected push with power on")
	}
	if push.TargetTemp != 23.0 {
		t.Errorf("expected target 23.0, got %.1f", push.TargetTemp)
	}
	if push.Mode != aircon.ModeCool {
		t.Errorf("expected mode cool, got %s", push.Mode)
	}

	if len(pub.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.Events))
	}
	ev := pub.Events[0]
	if ev.Type != mqtt.EventACOn {
		t.Errorf("expected AC_ON, got %s", ev.Type)
	}
	if ev.Temperature != 25.0 {
		t.Errorf("expected temperature 25.0, got %.1f", ev.Temperature)
	}
	if ev.Restricted {
		t.Error("expected restricted=false at 14:00")
	}
}

func TestRunLoopIdempotent(t *testing.T) {
	// Same hot reading three cycles in a row: one push, not three.
	reader := sensor.NewFakeReader([]float64{25.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: false})
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 3, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(unit.Pushes) != 1 {
		t.Errorf("expected 1 push, got %d", len(unit.Pushes))
	}
	if len(pub.Events) != 1 {
		t.Errorf("expected 1 event, got %d", len(pub.Events))
	}
}

func TestRunLoopInertBand(t *testing.T) {
	// Readings between off (22.5) and on (24.0) thresholds never push,
	// whichever state the unit is in.
	for _, power := range []bool{false, true} {
		reader := sensor.NewFakeReader([]float64{23.0})
		unit := aircon.NewFakeUnit(aircon.State{Power: power, TargetTemp: 23.0, Mode: aircon.ModeCool})
		pub := mqtt.NewFakePublisher()
		clock := fakeClock(afternoon, time.Minute)

		err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 2, syscall.SIGTERM)
		if err != nil {
			t.Fatalf("power=%v: runLoop returned error: %v", power, err)
		}
		if len(unit.Pushes) != 0 {
			t.Errorf("power=%v: expected 0 pushes, got %d", power, len(unit.Pushes))
		}
	}
}

func TestRunLoopFullCycle(t *testing.T) {
	// Hot → inert → cool: turn on once, then off once.
	reader := sensor.NewFakeReader([]float64{25.0, 23.0, 22.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: false})
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 3, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(unit.Pushes) != 2 {
		t.Fatalf("expected 2 pushes, got %d", len(unit.Pushes))
	}
	if !unit.Pushes[0].Power {
		t.Error("first push should turn the unit on")
	}
	if unit.Pushes[1].Power {
		t.Error("second push should turn the unit off")
	}

	wantTypes := []mqtt.EventType{mqtt.EventACOn, mqtt.EventACOff}
	if len(pub.Events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d", len(wantTypes), len(pub.Events))
	}
	for i, want := range wantTypes {
		if pub.Events[i].Type != want {
			t.Errorf("event %d: expected %s, got %s", i, want, pub.Events[i].Type)
		}
	}
}

func TestRunLoopRestrictedSuppressesTurnOn(t *testing.T) {
	reader := sensor.NewFakeReader([]float64{27.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: false})
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(lateNight, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 2, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(unit.Pushes) != 0 {
		t.Errorf("expected 0 pushes inside restricted window, got %d", len(unit.Pushes))
	}
	if len(pub.Events) != 0 {
		t.Errorf("expected 0 events inside restricted window, got %d", len(pub.Events))
	}
}

func TestRunLoopRestrictedForcesOff(t *testing.T) {
	// The unit is already running (turned on out-of-band) when the
	// restricted window applies: turn it off even though it's cold.
	reader := sensor.NewFakeReader([]float64{20.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: true, TargetTemp: 23.0, Mode: aircon.ModeCool})
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(lateNight, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 1, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(unit.Pushes) != 1 {
		t.Fatalf("expected 1 push, got %d", len(unit.Pushes))
	}
	if unit.Pushes[0].Power {
		t.Error("expected push with power off")
	}
	if len(pub.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.Events))
	}
	if pub.Events[0].Type != mqtt.EventACOff {
		t.Errorf("expected AC_OFF, got %s", pub.Events[0].Type)
	}
	if !pub.Events[0].Restricted {
		t.Error("expected restricted=true at 23:00")
	}
}

func TestRunLoopSensorFaultSkipsCycle(t *testing.T) {
	reader := sensor.NewFakeReader(nil)
	reader.ReadError = fmt.Errorf("snmpget: timeout")
	unit := aircon.NewFakeUnit(aircon.State{Power: false})
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 2, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(unit.Pushes) != 0 {
		t.Errorf("expected 0 pushes on sensor fault, got %d", len(unit.Pushes))
	}
	if len(pub.Events) != 0 {
		t.Errorf("expected 0 events on sensor fault, got %d", len(pub.Events))
	}

	// SHUTDOWN should still be published.
	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}
	if pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN event, got %q", pub.SystemEvents[0].Event)
	}
}

func TestRunLoopUnitReadFaultUsesCached(t *testing.T) {
	// The unit never answers status queries. Decisions run against the
	// cached state: one turn-on push, then the cache says on and no
	// further pushes follow.
	reader := sensor.NewFakeReader([]float64{25.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: false})
	unit.ReadError = errors.New("read timed out")
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 3, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(unit.Pushes) != 1 {
		t.Errorf("expected 1 push against cached state, got %d", len(unit.Pushes))
	}
}

func TestRunLoopPushFaultRetriedNextCycle(t *testing.T) {
	// First push fails; the cached state is not advanced, so the same
	// decision fires again next cycle and succeeds.
	inner := aircon.NewFakeUnit(aircon.State{Power: false})
	unit := &flakyUnit{inner: inner, failPushes: 1}
	reader := sensor.NewFakeReader([]float64{25.0})
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 2, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(inner.Pushes) != 1 {
		t.Fatalf("expected 1 successful push, got %d", len(inner.Pushes))
	}
	if !inner.Pushes[0].Power {
		t.Error("expected push with power on")
	}
	if len(pub.Events) != 1 {
		t.Errorf("expected 1 event (retry succeeded), got %d", len(pub.Events))
	}
}

func TestRunLoopAdoptsOutOfBandState(t *testing.T) {
	// Someone turned the unit on with the IR remote. First cycle adopts
	// the reported state without pushing; when the room cools below the
	// off threshold the loop turns it off.
	reader := sensor.NewFakeReader([]float64{23.0, 22.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: true, TargetTemp: 23.0, Mode: aircon.ModeCool})
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 2, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(unit.Pushes) != 1 {
		t.Fatalf("expected 1 push, got %d", len(unit.Pushes))
	}
	if unit.Pushes[0].Power {
		t.Error("expected push with power off")
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	// 10-minute clock step with a 15-minute heartbeat interval: the
	// second cycle (20 minutes after start) fires one heartbeat.
	reader := sensor.NewFakeReader([]float64{23.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: false})
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(afternoon, 10*time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 15*time.Minute, clock, 2, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var heartbeats, shutdowns int
	for _, se := range pub.SystemEvents {
		switch se.Event {
		case "HEARTBEAT":
			heartbeats++
		case "SHUTDOWN":
			shutdowns++
		}
	}
	if heartbeats != 1 {
		t.Errorf("expected 1 HEARTBEAT event, got %d", heartbeats)
	}
	if shutdowns != 1 {
		t.Errorf("expected 1 SHUTDOWN event, got %d", shutdowns)
	}
}

func TestRunLoopPublishErrorDoesNotAbort(t *testing.T) {
	reader := sensor.NewFakeReader([]float64{25.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: false})
	pub := mqtt.NewFakePublisher()
	pub.PublishError = fmt.Errorf("broker unavailable")
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 2, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	// The push itself succeeded, only the event was lost.
	if len(unit.Pushes) != 1 {
		t.Errorf("expected 1 push despite publish error, got %d", len(unit.Pushes))
	}
	if len(pub.Events) != 0 {
		t.Errorf("expected 0 recorded events (publish failed), got %d", len(pub.Events))
	}
}

func TestRunLoopLEDMirrorsPower(t *testing.T) {
	reader := sensor.NewFakeReader([]float64{25.0, 25.0, 22.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: false})
	pub := mqtt.NewFakePublisher()
	light := &led.FakeDriver{}
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, light, 0, clock, 3, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	// Set after every cycle: on, on, off.
	want := []bool{true, true, false}
	if len(light.Transitions) != len(want) {
		t.Fatalf("expected %d LED sets, got %d", len(want), len(light.Transitions))
	}
	for i, w := range want {
		if light.Transitions[i] != w {
			t.Errorf("LED set %d: got %v, want %v", i, light.Transitions[i], w)
		}
	}
	if light.On {
		t.Error("expected LED off at the end")
	}
}

func TestRunLoopUpdatesTracker(t *testing.T) {
	reader := sensor.NewFakeReader([]float64{25.5})
	unit := aircon.NewFakeUnit(aircon.State{Power: false})
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(afternoon, status.Config{TargetTemp: 23.0})
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, tracker, nil, 0, clock, 1, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	snap := tracker.Snapshot()
	if !snap.Ready {
		t.Fatal("expected tracker ready after a cycle")
	}
	if snap.Temperature != 25.5 {
		t.Errorf("expected temperature 25.5, got %.1f", snap.Temperature)
	}
	if !snap.Unit.Power {
		t.Error("expected tracked power on")
	}
	if snap.Counts.TurnOn != 1 {
		t.Errorf("expected 1 turn-on recorded, got %d", snap.Counts.TurnOn)
	}
	if snap.MQTTConnected {
		t.Error("expected mqtt disconnected (fake defaults to false)")
	}
}

func TestRunLoopShutdownSIGINT(t *testing.T) {
	reader := sensor.NewFakeReader([]float64{23.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: false})
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 1, syscall.SIGINT)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}
	se := pub.SystemEvents[0]
	if se.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN, got %q", se.Event)
	}
	if se.Reason != "SIGINT" {
		t.Errorf("expected reason SIGINT, got %q", se.Reason)
	}
	if !se.Retained {
		t.Error("expected Retained=true for SHUTDOWN")
	}
}

func TestRunLoopShutdownSIGTERM(t *testing.T) {
	reader := sensor.NewFakeReader([]float64{23.0})
	unit := aircon.NewFakeUnit(aircon.State{Power: false})
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(afternoon, time.Minute)

	err := runRunLoop(t, reader, unit, pub, nil, nil, 0, clock, 0, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}
	if pub.SystemEvents[0].Reason != "SIGTERM" {
		t.Errorf("expected reason SIGTERM, got %q", pub.SystemEvents[0].Reason)
	}
}
