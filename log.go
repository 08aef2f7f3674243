package sparsepca

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func consoleLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(zerolog.DebugLevel).
		With().Timestamp().
		Logger()
}
