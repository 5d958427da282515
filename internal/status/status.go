// Package status provides a thread-safe status tracker for the
// presence-sensor daemon. It implements sensor.Observer, so it is attached
// to every sensor and updated on each debounced transition; HTTP handlers
// and MQTT system events read snapshots from it.
package status

import (
	"sort"
	"sync"
	"time"

	"github.com/sweeney/presence-sensor/internal/sensor"
)

// SensorStatus is the tracked state of one presence sensor.
type SensorStatus struct {
	// State is "PRESENT" or "CLEAR", or "" before the first transition.
	State      string
	Detections int // transitions to PRESENT
	Clearances int // transitions to CLEAR
	LastChange time.Time
}

// Config contains daemon configuration for display.
type Config struct {
	Chip        string
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Sensors       map[string]SensorStatus
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// SensorNames returns the tracked sensor names in sorted order.
func (s Snapshot) SensorNames() []string {
	names := make([]string, 0, len(s.Sensors))
	for name := range s.Sensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu            sync.RWMutex
	sensors       map[string]SensorStatus
	startTime     time.Time
	mqttConnected bool
	config        Config
}

// NewTracker creates a Tracker with the given start time and config.
// The named sensors are pre-registered with unknown state.
func NewTracker(startTime time.Time, cfg Config, sensorNames []string) *Tracker {
	sensors := make(map[string]SensorStatus, len(sensorNames))
	for _, name := range sensorNames {
		sensors[name] = SensorStatus{}
	}
	return &Tracker{
		sensors:   sensors,
		startTime: startTime,
		config:    cfg,
	}
}

// Notify records a debounced transition. Implements sensor.Observer; called
// from each sensor's background task.
func (t *Tracker) Notify(e sensor.Event) {
	t.mu.Lock()
	s := t.sensors[e.Sensor]
	s.State = e.State()
	if e.Present {
		s.Detections++
	} else {
		s.Clearances++
	}
	s.LastChange = e.Time
	t.sensors[e.Sensor] = s
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.mqttConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	sensors := make(map[string]SensorStatus, len(t.sensors))
	for name, s := range t.sensors {
		sensors[name] = s
	}
	snap := Snapshot{
		Sensors:       sensors,
		StartTime:     t.startTime,
		MQTTConnected: t.mqttConnected,
		Config:        t.config,
	}
	t.mu.RUnlock()
	snap.Now = time.Now()
	return snap
}
