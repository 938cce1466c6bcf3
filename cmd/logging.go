package cmd

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a human readable logger writing to w at the given level ("debug", "info",
// "warn" or "error"). Unknown levels are "info".
func NewLogger(level string, w io.Writer) zerolog.Logger {
	var lvl zerolog.Level
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	default:
		lvl = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
