package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var root zerolog.Logger

func init() {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}
	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	root = zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Get returns the process-wide logger.
func Get() zerolog.Logger {
	return root
}

// With returns a logger tagged with a component name.
func With(component string) zerolog.Logger {
	return root.With().Str("component", component).Logger()
}
