// Package config loads daemon configuration from defaults, an optional
// config file and PRESENCE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/sweeney/presence-sensor/internal/gpio"
	"github.com/sweeney/presence-sensor/internal/logging"
)

const envPrefix = "PRESENCE"

// Sensor binds one presence detector to a GPIO line.
type Sensor struct {
	Name string `mapstructure:"name"`
	Pin  int    `mapstructure:"pin"`
}

// Config is the daemon configuration. Sensors bind once at startup; a
// config-file change while running only logs an advisory.
type Config struct {
	Chip      string
	Sensors   []Sensor
	Debounce  time.Duration
	Broker    string
	HTTPAddr  string
	Heartbeat time.Duration
	LogLevel  string
}

// Loader reads and watches the configuration.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader with defaults set and search paths registered.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)

	v.SetDefault("chip", gpio.DefaultChip)
	v.SetDefault("debounce", "5ms")
	v.SetDefault("broker", "tcp://192.168.1.200:1883")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("heartbeat", "15m")
	v.SetDefault("log_level", "info")
	v.SetDefault("sensors", []map[string]any{
		{"name": "zone1", "pin": 17},
		{"name": "zone2", "pin": 27},
		{"name": "zone3", "pin": 22},
		{"name": "zone4", "pin": 23},
	})

	v.SetConfigName("presence-sensor")
	v.AddConfigPath("/etc")
	v.AddConfigPath("./")
	v.AddConfigPath("./config")

	return &Loader{v: v}
}

// Load reads the config file (if any), applies environment overrides and
// validates the result.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No file is fine; defaults and environment apply.
	}

	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	cfg := &Config{
		Chip:      l.v.GetString("chip"),
		Debounce:  l.v.GetDuration("debounce"),
		Broker:    l.v.GetString("broker"),
		HTTPAddr:  l.v.GetString("http_addr"),
		Heartbeat: l.v.GetDuration("heartbeat"),
		LogLevel:  l.v.GetString("log_level"),
	}
	if err := l.v.UnmarshalKey("sensors", &cfg.Sensors); err != nil {
		return nil, fmt.Errorf("parse sensors: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch begins watching the config file for changes. On each change the
// file is re-read and fn is called with the new config; a change that fails
// to parse is logged and dropped.
func (l *Loader) Watch(fn func(*Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		logging.Logger.Info().Str("file", e.Name).Msg("config file changed")
		cfg, err := l.Load()
		if err != nil {
			logging.Logger.Error().Err(err).Msg("reloaded config invalid, keeping current")
			return
		}
		fn(cfg)
	})
	l.v.WatchConfig()
}

func (c *Config) validate() error {
	if c.Chip == "" {
		return errors.New("config: chip must not be empty")
	}
	if len(c.Sensors) == 0 {
		return errors.New("config: at least one sensor required")
	}
	if c.Debounce <= 0 {
		return errors.New("config: debounce must be positive")
	}

	names := make(map[string]bool, len(c.Sensors))
	pins := make(map[int]bool, len(c.Sensors))
	for _, s := range c.Sensors {
		if s.Name == "" {
			return errors.New("config: sensor name must not be empty")
		}
		if s.Pin < 0 {
			return fmt.Errorf("config: sensor %s: invalid pin %d", s.Name, s.Pin)
		}
		if names[s.Name] {
			return fmt.Errorf("config: duplicate sensor name %s", s.Name)
		}
		if pins[s.Pin] {
			return fmt.Errorf("config: duplicate pin %d", s.Pin)
		}
		names[s.Name] = true
		pins[s.Pin] = true
	}
	return nil
}

// SensorNames returns the configured sensor names in declaration order.
func (c *Config) SensorNames() []string {
	names := make([]string, len(c.Sensors))
	for i, s := range c.Sensors {
		names[i] = s.Name
	}
	return names
}
