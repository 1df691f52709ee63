// Command ac-controller keeps room temperature inside a configured band
// by switching a network A/C unit on and off, holding off during the
// configured restricted hours.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/ac-controller/internal/aircon"
	"github.com/sweeney/ac-controller/internal/config"
	"github.com/sweeney/ac-controller/internal/led"
	"github.com/sweeney/ac-controller/internal/logic"
	"github.com/sweeney/ac-controller/internal/mqtt"
	"github.com/sweeney/ac-controller/internal/sensor"
	"github.com/sweeney/ac-controller/internal/status"
	"github.com/sweeney/ac-controller/internal/web"
)

// options collects the daemon flags. The control thresholds live in the
// config file and are reloaded every cycle; everything here is fixed for
// the process lifetime.
type options struct {
	configPath   string
	interval     time.Duration
	target       float64
	sensorHost   string
	community    string
	oid          string
	bcast        string
	discoverWait time.Duration
	broker       string
	heartbeat    time.Duration
	httpAddr     string
	ledPin       int
	printState   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "/etc/ac-controller.yaml", "Control config file (reloaded every cycle)")
	flag.DurationVar(&opts.interval, "interval", 60*time.Second, "Control cycle interval")
	flag.Float64Var(&opts.target, "target", 23.0, "Target temperature pushed when turning the unit on")
	flag.StringVar(&opts.sensorHost, "sensor", "192.168.0.100", "SNMP temperature probe host")
	flag.StringVar(&opts.community, "community", sensor.DefaultCommunity, "SNMP community")
	flag.StringVar(&opts.oid, "oid", sensor.DefaultOID, "SNMP OID of the temperature value")
	flag.StringVar(&opts.bcast, "bcast", aircon.DefaultBroadcastAddr, "Discovery broadcast address")
	flag.DurationVar(&opts.discoverWait, "discover-wait", aircon.DefaultDiscoverWait, "How long to wait for unit announcements")
	flag.StringVar(&opts.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&opts.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	flag.IntVar(&opts.ledPin, "led-pin", 0, "BCM pin for the status LED (0 to disable)")
	flag.BoolVar(&opts.printState, "print-state", false, "Print current sensor and unit state and exit")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(opts options) error {
	ctx := context.Background()

	// Discovery and bind failures are the only faults fatal to startup.
	log.Printf("discovering units on %s (waiting %v)", opts.bcast, opts.discoverWait)
	found, err := aircon.Discover(ctx, opts.bcast, opts.discoverWait)
	if err != nil {
		return fmt.Errorf("discover units: %w", err)
	}
	if len(found) == 0 {
		return fmt.Errorf("no units found on network")
	}

	info := found[0]
	log.Printf("found unit: %s (%s) at %s", info.Name, info.ID, info.Addr)

	unit, err := aircon.Bind(ctx, info, 0)
	if err != nil {
		return fmt.Errorf("bind unit: %w", err)
	}
	defer unit.Close()

	sensorReader := sensor.NewSNMPReader(opts.sensorHost, opts.community, opts.oid, 0)
	defer sensorReader.Close()

	// Print state mode
	if opts.printState {
		temp, err := sensorReader.Read(ctx)
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		state, err := unit.ReadState(ctx)
		if err != nil {
			return fmt.Errorf("read unit state: %w", err)
		}
		fmt.Printf("Temperature: %.1f°C, AC: %s (target %.1f°C, mode %s)\n",
			temp, stateString(state.Power), state.TargetTemp, state.Mode)
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(opts.broker)
	if err != nil {
		return fmt.Errorf("connect mqtt: %w", err)
	}
	defer publisher.Close()

	loader := config.NewLoader(opts.configPath)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		IntervalMs:  opts.interval.Milliseconds(),
		HeartbeatMs: opts.heartbeat.Milliseconds(),
		Broker:      opts.broker,
		HTTPPort:    opts.httpAddr,
		ConfigPath:  opts.configPath,
		SensorHost:  opts.sensorHost,
		SensorOID:   opts.oid,
		TargetTemp:  opts.target,
	})
	tracker.SetUnit(status.UnitInfo{ID: info.ID, Name: info.Name, Addr: info.Addr})

	// Status LED
	var light led.Driver
	if opts.ledPin > 0 {
		d, err := led.NewRealDriver(opts.ledPin)
		if err != nil {
			log.Printf("led disabled: %v", err)
		} else {
			light = d
			defer d.Close()
		}
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", opts.httpAddr)
	}

	log.Printf("started: interval=%v target=%.1f config=%s broker=%s heartbeat=%v",
		opts.interval, opts.target, opts.configPath, opts.broker, opts.heartbeat)

	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loader, sensorReader, unit, publisher, publisher, tracker, light,
		opts.target, opts.heartbeat, time.Now, ticker.C, sigCh)
}

// runLoop drives the control cycles until a termination signal arrives.
// One cycle: reload config, read the sensor, reconcile the cached unit
// state against the unit's report, decide, push on change. The cadence
// is fixed — a failed cycle neither shortens nor lengthens the next
// wait, and shutdown is only observed here between cycles.
func runLoop(loader *config.Loader, sensorReader sensor.Reader, unit aircon.Unit,
	publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker,
	light led.Driver, target float64, heartbeat time.Duration,
	now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {

	cached := logic.UnitState{Power: false, TargetTemp: target}
	stats := logic.NewStats(now())

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			cfg := loader.Load()

			temp, err := sensorReader.Read(context.Background())
			if err != nil {
				// No reading, no decision: wait for the next tick.
				log.Printf("sensor read error: %v", err)
				stats.RecordSensorFault()
				if tracker != nil {
					tracker.UpdateCounts(stats.Counts())
				}
				continue
			}

			reported, readErr := unit.ReadState(context.Background())
			if readErr != nil {
				log.Printf("unit state read error: %v (assuming last known state)", readErr)
				stats.RecordReadFault()
			}
			var mismatch bool
			cached, mismatch = logic.Reconcile(cached,
				logic.UnitState{Power: reported.Power, TargetTemp: reported.TargetTemp}, readErr)
			if mismatch {
				log.Printf("unit power changed out-of-band, now %s", stateString(cached.Power))
			}

			restricted := cfg.Restricted.Contains(t)
			decision := logic.Decide(temp, cached.Power, restricted, cfg.Band)
			log.Printf("cycle: temp=%.1f°C power=%s restricted=%v decision=%s",
				temp, stateString(cached.Power), restricted, decision)

			if decision != logic.DecisionNoChange {
				desired := aircon.State{
					Power:      decision == logic.DecisionTurnOn,
					TargetTemp: target,
					Mode:       aircon.ModeCool,
				}
				if err := unit.PushState(context.Background(), desired); err != nil {
					// Cached state stays put, so the same decision is
					// re-attempted next cycle.
					log.Printf("unit push error: %v", err)
					stats.RecordPushFault()
				} else {
					cached = logic.UnitState{Power: desired.Power, TargetTemp: desired.TargetTemp}
					stats.RecordDecision(decision)
					log.Printf("AC %s at %.1f°C (reading %.1f°C)", stateString(cached.Power), target, temp)

					evType := mqtt.EventACOff
					if desired.Power {
						evType = mqtt.EventACOn
					}
					event := mqtt.Event{
						Timestamp:   t,
						Type:        evType,
						Temperature: temp,
						TargetTemp:  target,
						Restricted:  restricted,
					}
					if err := publisher.Publish(event); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}
			}

			// Check for heartbeat
			if hbData := stats.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v on=%d off=%d sensor_faults=%d read_faults=%d push_faults=%d",
					hbData.Uptime, hbData.Counts.TurnOn, hbData.Counts.TurnOff,
					hbData.Counts.SensorFaults, hbData.Counts.ReadFaults, hbData.Counts.PushFaults)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					tracker.Update(temp, cached, restricted, cfg.Band, cfg.Restricted, stats.Counts())
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP/LED consumers
			if tracker != nil {
				tracker.Update(temp, cached, restricted, cfg.Band, cfg.Restricted, stats.Counts())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
			if light != nil {
				if err := light.Set(cached.Power); err != nil {
					log.Printf("led error: %v", err)
				}
			}
		}
	}
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
