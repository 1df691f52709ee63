// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// Topic is the MQTT topic for control events.
const Topic = "climate/ac/controller/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "climate/ac/controller/system"

// EventType identifies a control event.
type EventType string

const (
	EventACOn  EventType = "AC_ON"
	EventACOff EventType = "AC_OFF"
)

// Event represents an applied power change to be published.
type Event struct {
	Timestamp   time.Time
	Type        EventType
	Temperature float64 // ambient reading that triggered the change
	TargetTemp  float64 // unit target temperature after the change
	Restricted  bool    // whether the restricted window was active
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a control event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Aircon AirconPayload `json:"aircon"`
}

// AirconPayload contains the control event details.
type AirconPayload struct {
	Timestamp   string  `json:"timestamp"`
	Event       string  `json:"event"`
	Temperature float64 `json:"temperature"`
	TargetTemp  float64 `json:"target_temp"`
	Restricted  bool    `json:"restricted"`
}

// FormatPayload creates the JSON payload for a control event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Aircon: AirconPayload{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
			Event:       string(event.Type),
			Temperature: event.Temperature,
			TargetTemp:  event.TargetTemp,
			Restricted:  event.Restricted,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
