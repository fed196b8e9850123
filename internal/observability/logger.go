// Package observability wires the ambient logging and metrics stack
// of spec §2.1: zerolog for structured logs, prometheus/client_golang
// for counters and histograms, grounded on the donor's own
// observability package.
package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger builds a console-writer zerolog.Logger tagged with a
// "component" field (e.g. "session", "uart", "cli"), matching the
// donor's InitLogger(app) but scoped to CommWatch's own subsystems
// rather than a single process name.
func InitLogger(component string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("component", component).Logger()
	log.Logger = logger
	return logger
}
