// Package telemetry wires the ambient logging and metrics stack: a
// zerolog logger configured from internal/config's LogConfig, and a set
// of Prometheus collectors the host process registers. Grounded on
// jhkimqd-chaos-utils/pkg/reporting/logger.go's level/format switch.
package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog.Logger from a level/format pair, writing to
// os.Stdout. Unknown levels fall back to info; format "text" gets a
// human-readable console writer, anything else (including "") stays
// newline-delimited JSON.
func NewLogger(level, format string) zerolog.Logger {
	return NewLoggerTo(os.Stdout, level, format)
}

// NewLoggerTo is NewLogger with an explicit output writer, split out so
// tests can assert on logged output without touching os.Stdout.
func NewLoggerTo(w io.Writer, level, format string) zerolog.Logger {
	var out io.Writer = w
	if format == "text" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	log := zerolog.New(out).With().Timestamp().Logger()

	switch level {
	case "debug":
		log = log.Level(zerolog.DebugLevel)
	case "warn":
		log = log.Level(zerolog.WarnLevel)
	case "error":
		log = log.Level(zerolog.ErrorLevel)
	default:
		log = log.Level(zerolog.InfoLevel)
	}

	return log
}
