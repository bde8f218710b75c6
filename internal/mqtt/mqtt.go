// Package mqtt publishes e-stop telemetry with abstraction for testing.
// Telemetry is one-way: the broker never commands the e-stop, it only
// observes transitions and lifecycle events.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/estop-controller/internal/polarity"
)

// Topic is the MQTT topic for e-stop transition events.
const Topic = "safety/estop/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "safety/estop/system"

// TransitionType identifies a controller transition.
type TransitionType string

const (
	TransitionActivated   TransitionType = "ESTOP_ACTIVATED"
	TransitionReset       TransitionType = "ESTOP_RESET"
	TransitionModeChanged TransitionType = "MODE_CHANGED"
)

// TransitionEvent describes a controller state transition.
type TransitionEvent struct {
	Timestamp time.Time
	Type      TransitionType
	State     polarity.State
	Mode      polarity.Mode
	Level     bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a transition event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event TransitionEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Estop EstopPayload `json:"estop"`
}

// EstopPayload contains the transition event details.
type EstopPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	State     string `json:"state"`
	Mode      string `json:"mode"`
	Level     bool   `json:"level"`
}

// FormatPayload creates the JSON payload for a transition event.
func FormatPayload(event TransitionEvent) ([]byte, error) {
	payload := Payload{
		Estop: EstopPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			State:     string(event.State),
			Mode:      string(event.Mode),
			Level:     event.Level,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
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
