package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Temperature   *float64   `json:"temperature,omitempty"`
	Power         string     `json:"power"`
	TargetTemp    float64    `json:"target_temp"`
	Restricted    bool       `json:"restricted"`
	Ready         bool       `json:"ready"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Unit          *UnitJSON  `json:"unit,omitempty"`
	Counts        CountsJSON `json:"counts"`
	Band          BandJSON   `json:"band"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// UnitJSON is the JSON representation of the bound unit.
type UnitJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Addr string `json:"addr"`
}

// CountsJSON is the JSON representation of decision and fault counts.
type CountsJSON struct {
	TurnOn       int `json:"turn_on"`
	TurnOff      int `json:"turn_off"`
	SensorFaults int `json:"sensor_faults"`
	ReadFaults   int `json:"read_faults"`
	PushFaults   int `json:"push_faults"`
}

// BandJSON is the JSON representation of the active hysteresis band and
// restricted window.
type BandJSON struct {
	On         float64 `json:"temperature_on"`
	Off        float64 `json:"temperature_off"`
	Restricted string  `json:"restricted_window"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	IntervalMs  int64   `json:"interval_ms"`
	HeartbeatMs int64   `json:"heartbeat_ms"`
	Broker      string  `json:"broker"`
	HTTPPort    string  `json:"http_port"`
	ConfigPath  string  `json:"config_path,omitempty"`
	SensorHost  string  `json:"sensor_host"`
	SensorOID   string  `json:"sensor_oid"`
	TargetTemp  float64 `json:"target_temp"`
}

func buildInner(snap Snapshot) StatusInner {
	power := "OFF"
	if snap.Unit.Power {
		power = "ON"
	}
	if !snap.Ready {
		power = "UNKNOWN"
	}

	inner := StatusInner{
		Power:         power,
		TargetTemp:    snap.Unit.TargetTemp,
		Restricted:    snap.Restricted,
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			TurnOn:       snap.Counts.TurnOn,
			TurnOff:      snap.Counts.TurnOff,
			SensorFaults: snap.Counts.SensorFaults,
			ReadFaults:   snap.Counts.ReadFaults,
			PushFaults:   snap.Counts.PushFaults,
		},
		Band: BandJSON{
			On:         snap.Band.On,
			Off:        snap.Band.Off,
			Restricted: snap.Window.String(),
		},
		Config: ConfigJSON{
			IntervalMs:  snap.Config.IntervalMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			ConfigPath:  snap.Config.ConfigPath,
			SensorHost:  snap.Config.SensorHost,
			SensorOID:   snap.Config.SensorOID,
			TargetTemp:  snap.Config.TargetTemp,
		},
	}

	if snap.HaveReading {
		temp := snap.Temperature
		inner.Temperature = &temp
	}
	if snap.UnitInfo != (UnitInfo{}) {
		inner.Unit = &UnitJSON{ID: snap.UnitInfo.ID, Name: snap.UnitInfo.Name, Addr: snap.UnitInfo.Addr}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
