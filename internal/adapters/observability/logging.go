package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger.
// app_env=dev (or development) uses a human-friendly console writer.
func NewLogger(env string) zerolog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) zerolog.Logger {
	switch strings.ToLower(env) {
	case "dev", "development":
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	case "test":
		return zerolog.New(w).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// NewCLILogger writes to stderr so stdout stays free for command output.
func NewCLILogger(env string) zerolog.Logger {
	return newLogger(os.Stderr, env)
}
