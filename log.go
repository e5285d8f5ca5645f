package virthid

import (
	"os"

	"github.com/rs/zerolog"
)

var rootLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Logger returns the package root logger scoped to a subsystem.
func Logger(subsystem string) zerolog.Logger {
	return rootLogger.With().Str("subsystem", subsystem).Logger()
}
