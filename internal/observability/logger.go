package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger builds a console logger tagged with app and installs it as the
// global zerolog logger. A nil writer logs to stderr so stdout stays free for
// command output.
func NewLogger(app, level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(ParseLevel(level)).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a level name to a zerolog level; empty or unknown names
// mean info. "warning", "off" and "none" are accepted as aliases.
func ParseLevel(raw string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "warning":
		s = zerolog.LevelWarnValue
	case "off", "none":
		s = "disabled"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
