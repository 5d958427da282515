package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chip != "gpiochip0" {
		t.Errorf("chip: got %q, want gpiochip0", cfg.Chip)
	}
	if cfg.Debounce != 5*time.Millisecond {
		t.Errorf("debounce: got %v, want 5ms", cfg.Debounce)
	}
	if cfg.Heartbeat != 15*time.Minute {
		t.Errorf("heartbeat: got %v, want 15m", cfg.Heartbeat)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level: got %q, want info", cfg.LogLevel)
	}
	if len(cfg.Sensors) != 4 {
		t.Fatalf("expected 4 default sensors, got %d", len(cfg.Sensors))
	}
	if cfg.Sensors[0].Name != "zone1" || cfg.Sensors[0].Pin != 17 {
		t.Errorf("sensor 0: got %+v, want zone1/17", cfg.Sensors[0])
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PRESENCE_DEBOUNCE", "12ms")
	t.Setenv("PRESENCE_BROKER", "tcp://localhost:1883")
	t.Setenv("PRESENCE_LOG_LEVEL", "debug")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Debounce != 12*time.Millisecond {
		t.Errorf("debounce: got %v, want 12ms", cfg.Debounce)
	}
	if cfg.Broker != "tcp://localhost:1883" {
		t.Errorf("broker: got %q, want tcp://localhost:1883", cfg.Broker)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level: got %q, want debug", cfg.LogLevel)
	}
}

func TestSensorNames(t *testing.T) {
	cfg := &Config{Sensors: []Sensor{{Name: "a", Pin: 1}, {Name: "b", Pin: 2}}}
	names := cfg.SensorNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("names: got %v, want [a b]", names)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Chip:     "gpiochip0",
			Debounce: 5 * time.Millisecond,
			Sensors:  []Sensor{{Name: "hall", Pin: 17}, {Name: "door", Pin: 27}},
		}
	}

	if err := base().validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty chip", func(c *Config) { c.Chip = "" }},
		{"no sensors", func(c *Config) { c.Sensors = nil }},
		{"zero debounce", func(c *Config) { c.Debounce = 0 }},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Millisecond }},
		{"empty sensor name", func(c *Config) { c.Sensors[0].Name = "" }},
		{"negative pin", func(c *Config) { c.Sensors[0].Pin = -1 }},
		{"duplicate name", func(c *Config) { c.Sensors[1].Name = "hall" }},
		{"duplicate pin", func(c *Config) { c.Sensors[1].Pin = 17 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(c)
			if err := c.validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
