// Package logging builds the zerolog loggers used by the binaries. Library
// packages accept a zerolog.Logger and default to a no-op one; only the
// entry points decide where output goes.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger tagged with the application name.
func New(app string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", app).Logger()
}
