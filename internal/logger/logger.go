// Package logger constructs the process-wide zerolog logger. Output always
// goes to stderr: on the stdio transport, stdout belongs to the protocol
// framing and must stay clean.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger at the given level. Unknown levels fall back to info.
// At debug and below a human-readable console writer is used; otherwise
// structured JSON.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if lvl <= zerolog.DebugLevel {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
