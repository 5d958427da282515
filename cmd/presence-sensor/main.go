// Command presence-sensor watches GPIO presence detectors and publishes
// debounced transitions to MQTT.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/presence-sensor/internal/config"
	"github.com/sweeney/presence-sensor/internal/gpio"
	"github.com/sweeney/presence-sensor/internal/logging"
	"github.com/sweeney/presence-sensor/internal/mqtt"
	"github.com/sweeney/presence-sensor/internal/presence"
	"github.com/sweeney/presence-sensor/internal/sensor"
	"github.com/sweeney/presence-sensor/internal/status"
	"github.com/sweeney/presence-sensor/internal/web"
)

func main() {
	loader := config.NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)

	if err := run(cfg, loader); err != nil {
		logging.Logger.Fatal().Err(err).Msg("fatal")
	}
}

func run(cfg *config.Config, loader *config.Loader) error {
	// Initialize GPIO
	chip, err := gpio.OpenRealChip(cfg.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:        cfg.Chip,
		DebounceMs:  cfg.Debounce.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
	}, cfg.SensorNames())

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.Broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Build and start sensors. Launch failure is a hard startup error: a
	// sensor that silently never notifies is worse than a failed start.
	for _, sc := range cfg.Sensors {
		line, err := chip.RequestLine(sc.Pin)
		if err != nil {
			return fmt.Errorf("sensor %s: %w", sc.Name, err)
		}
		s := presence.New(sc.Name, line, presence.WithDebounce(cfg.Debounce))
		if err := attachObservers(s, publisher, tracker); err != nil {
			return fmt.Errorf("sensor %s: %w", sc.Name, err)
		}
		if err := s.Start(); err != nil {
			return fmt.Errorf("start sensor: %w", err)
		}
		defer s.Close()
		logging.Logger.Info().Str("sensor", sc.Name).Int("pin", sc.Pin).Msg("sensor watching")
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
		logging.Logger.Warn().Err(err).Msg("failed to publish startup event")
	} else {
		logging.Logger.Info().Msg("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Logger.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		logging.Logger.Info().Str("addr", cfg.HTTPAddr).Msg("http status server listening")
	}

	// Sensors bind to lines once at startup; a changed file only advises.
	loader.Watch(func(*config.Config) {
		logging.Logger.Info().Msg("config change detected; restart to apply")
	})

	logging.Logger.Info().
		Dur("debounce", cfg.Debounce).
		Str("broker", cfg.Broker).
		Dur("heartbeat", cfg.Heartbeat).
		Int("sensors", len(cfg.Sensors)).
		Msg("started")

	var tick <-chan time.Time
	if cfg.Heartbeat > 0 {
		ticker := time.NewTicker(cfg.Heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(publisher, publisher, tracker, time.Now, tick, sigCh)
}

// attachObservers wires the standard observer set: structured log, MQTT
// publisher, status tracker.
func attachObservers(s sensor.Sensor, publisher mqtt.Publisher, tracker *status.Tracker) error {
	for _, obs := range []sensor.Observer{
		&logObserver{},
		&mqttObserver{publisher: publisher},
		tracker,
	} {
		if err := s.Attach(obs); err != nil {
			return err
		}
	}
	return nil
}

func runLoop(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			logging.Logger.Info().Str("signal", s.String()).Msg("shutting down")
			name := signalName(s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    name,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", name)
			}
			if err := publisher.PublishSystem(event); err != nil {
				logging.Logger.Warn().Err(err).Msg("failed to publish shutdown event")
			} else {
				logging.Logger.Info().Msg("published shutdown event")
			}
			return nil

		case <-tick:
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			snap := tracker.Snapshot()
			logging.Logger.Info().Dur("uptime", snap.Uptime()).Msg("heartbeat")
			hbEvent := mqtt.SystemEvent{
				Timestamp:  snap.Now,
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				logging.Logger.Warn().Err(err).Msg("heartbeat publish error")
			}
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// logObserver emits a structured log line per debounced transition.
type logObserver struct{}

func (o *logObserver) Notify(e sensor.Event) {
	logging.Logger.Info().
		Str("sensor", e.Sensor).
		Str("state", e.State()).
		Time("at", e.Time).
		Msg("presence changed")
}

// mqttObserver forwards transitions to the MQTT publisher. Publish failure
// is logged, never fatal.
type mqttObserver struct {
	publisher mqtt.Publisher
}

func (o *mqttObserver) Notify(e sensor.Event) {
	if err := o.publisher.Publish(e); err != nil {
		logging.Logger.Warn().Err(err).Str("sensor", e.Sensor).Msg("publish error")
	}
}
