package logger

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New builds the process logger from LOG_LEVEL and DEBUG. It runs before
// the config is loaded, so it reads the environment itself. Debug mode
// writes human readable lines instead of JSON.
func New() zerolog.Logger {
	var out io.Writer = os.Stdout
	if debug, _ := strconv.ParseBool(os.Getenv("DEBUG")); debug {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}
	return build(out, parseLevel(os.Getenv("LOG_LEVEL")))
}

// parseLevel falls back to info for an empty or unknown level.
func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func build(out io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

var Module = fx.Provide(New)
