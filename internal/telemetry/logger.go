// Package telemetry provides logging and metrics for siesta.
package telemetry

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger creates the service logger. Output is JSON to stdout;
// pretty switches to the console writer for interactive CLI use.
func NewLogger(service, level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
