package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/presence-sensor/internal/sensor"
)

var startTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestTracker() *Tracker {
	return NewTracker(startTime, Config{
		Chip:        "gpiochip0",
		DebounceMs:  5,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
	}, []string{"hall", "door"})
}

func TestNewTrackerPreRegistersSensors(t *testing.T) {
	tr := newTestTracker()
	snap := tr.Snapshot()

	if len(snap.Sensors) != 2 {
		t.Fatalf("expected 2 sensors, got %d", len(snap.Sensors))
	}
	for _, name := range []string{"hall", "door"} {
		s, ok := snap.Sensors[name]
		if !ok {
			t.Fatalf("sensor %s not registered", name)
		}
		if s.State != "" {
			t.Errorf("sensor %s: expected unknown state, got %q", name, s.State)
		}
	}
}

func TestNotifyUpdatesState(t *testing.T) {
	tr := newTestTracker()
	at := startTime.Add(time.Minute)

	tr.Notify(sensor.Event{Sensor: "hall", Present: true, Time: at})
	tr.Notify(sensor.Event{Sensor: "hall", Present: false, Time: at.Add(time.Second)})
	tr.Notify(sensor.Event{Sensor: "hall", Present: true, Time: at.Add(2 * time.Second)})

	snap := tr.Snapshot()
	s := snap.Sensors["hall"]
	if s.State != "PRESENT" {
		t.Errorf("state: got %q, want PRESENT", s.State)
	}
	if s.Detections != 2 {
		t.Errorf("detections: got %d, want 2", s.Detections)
	}
	if s.Clearances != 1 {
		t.Errorf("clearances: got %d, want 1", s.Clearances)
	}
	if !s.LastChange.Equal(at.Add(2 * time.Second)) {
		t.Errorf("last change: got %v, want %v", s.LastChange, at.Add(2*time.Second))
	}

	// The other sensor is untouched.
	if d := snap.Sensors["door"]; d.State != "" || d.Detections != 0 {
		t.Errorf("door: unexpected state %+v", d)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := newTestTracker()
	snap := tr.Snapshot()
	snap.Sensors["hall"] = SensorStatus{State: "PRESENT", Detections: 99}

	if s := tr.Snapshot().Sensors["hall"]; s.Detections != 0 {
		t.Error("mutating a snapshot must not affect the tracker")
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := newTestTracker()
	if tr.Snapshot().MQTTConnected {
		t.Error("expected disconnected initially")
	}
	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected connected")
	}
}

func TestSnapshotUptime(t *testing.T) {
	tr := newTestTracker()
	snap := tr.Snapshot()
	snap.Now = startTime.Add(90 * time.Second)
	if snap.Uptime() != 90*time.Second {
		t.Errorf("uptime: got %v, want 90s", snap.Uptime())
	}
}

func TestSensorNamesSorted(t *testing.T) {
	tr := newTestTracker()
	names := tr.Snapshot().SensorNames()
	if len(names) != 2 || names[0] != "door" || names[1] != "hall" {
		t.Errorf("names: got %v, want [door hall]", names)
	}
}

func TestFormatJSON(t *testing.T) {
	tr := newTestTracker()
	tr.Notify(sensor.Event{Sensor: "hall", Present: true, Time: startTime.Add(time.Minute)})
	tr.SetMQTTConnected(true)

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(sj.Status.Sensors) != 2 {
		t.Fatalf("expected 2 sensors, got %d", len(sj.Status.Sensors))
	}
	// Sorted: door first, state UNKNOWN.
	if sj.Status.Sensors[0].Name != "door" || sj.Status.Sensors[0].State != "UNKNOWN" {
		t.Errorf("sensor 0: got %+v, want door/UNKNOWN", sj.Status.Sensors[0])
	}
	if sj.Status.Sensors[1].Name != "hall" || sj.Status.Sensors[1].State != "PRESENT" {
		t.Errorf("sensor 1: got %+v, want hall/PRESENT", sj.Status.Sensors[1])
	}
	if sj.Status.Sensors[1].Detections != 1 {
		t.Errorf("hall detections: got %d, want 1", sj.Status.Sensors[1].Detections)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected")
	}
	if sj.Status.Config.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("broker: got %q", sj.Status.Config.Broker)
	}
	if sj.Status.Event != "" {
		t.Errorf("web JSON must not carry an event, got %q", sj.Status.Event)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := newTestTracker()

	var sj StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", sj.Status.Event)
	}
	if sj.Status.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", sj.Status.Reason)
	}
}
