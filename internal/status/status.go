// Package status provides a thread-safe status tracker for the e-stop
// monitor daemon. The controller itself is single-threaded; the tracker is
// the serialization point between the monitor loop (writer) and the HTTP
// and MQTT consumers (readers).
package status

import (
	"sync"
	"time"

	"github.com/sweeney/estop-controller/internal/estop"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	ConfigPath  string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Estop         estop.Status
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
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

// Update sets the latest controller status. Called from the monitor loop on
// every tick.
func (t *Tracker) Update(st estop.Status) {
	t.mu.Lock()
	t.snap.Estop = st
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
