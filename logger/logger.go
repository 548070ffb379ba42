// Package logger builds the zerolog logger shared by all monitor components.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger with the given level and output format.
// Format "json" emits structured logs; anything else renders for a console.
// When sampled is true, repetitive logs are sampled 1 in 5.
func New(level int, format string, sampled bool) zerolog.Logger {
	var writer io.Writer = os.Stdout
	if format != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	log := zerolog.New(writer).
		Level(zerolog.Level(level)).
		With().
		Timestamp().
		Logger()

	if sampled {
		log = log.Sample(&zerolog.BasicSampler{N: 5})
	}
	return log
}

// Nop returns a logger that discards everything. Used by tests and by
// components constructed without an explicit logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
