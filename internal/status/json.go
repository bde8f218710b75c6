package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Estop EstopInner `json:"estop"`
}

// EstopInner contains the status details.
type EstopInner struct {
	Event           string     `json:"event,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	State           string     `json:"state"`
	Level           bool       `json:"level"`
	Mode            string     `json:"mode"`
	ManualOverride  bool       `json:"manual_override"`
	OutputAvailable bool       `json:"output_available"`
	Pin             int        `json:"gpio_pin"`
	Platform        string     `json:"platform"`
	Terminated      bool       `json:"terminated,omitempty"`
	UptimeSeconds   int64      `json:"uptime_seconds"`
	StartTime       string     `json:"start_time"`
	Timestamp       string     `json:"timestamp"`
	MQTT            MQTTStatus `json:"mqtt"`
	Config          ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	ConfigPath  string `json:"config_path"`
}

func buildInner(snap Snapshot) EstopInner {
	state := string(snap.Estop.State)
	if state == "" {
		state = "UNKNOWN"
	}

	return EstopInner{
		State:           state,
		Level:           snap.Estop.Level,
		Mode:            string(snap.Estop.Mode),
		ManualOverride:  snap.Estop.ManualOverride,
		OutputAvailable: snap.Estop.OutputAvailable,
		Pin:             snap.Estop.Pin,
		Platform:        snap.Estop.Platform,
		Terminated:      snap.Estop.Terminated,
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			ConfigPath:  snap.Config.ConfigPath,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Estop: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Estop: inner})
	return data
}
