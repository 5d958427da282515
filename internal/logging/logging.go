// Package logging holds the process-wide zerolog logger.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the shared logger. It is a no-op until Init is called, so
// library packages can log unconditionally and tests stay quiet.
var Logger = zerolog.Nop()

// Init configures the shared logger at the given level.
// Unrecognized levels fall back to info.
func Init(inlevel string) {
	var level zerolog.Level
	switch strings.ToLower(inlevel) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	Logger = zerolog.New(
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339},
	).Level(level).With().Timestamp().Logger()
}
