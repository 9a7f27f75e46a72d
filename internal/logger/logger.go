package logger

import (
	"io"
	"log/slog"
	"os"
)

// NewJSONLogger returns a JSON slog logger writing to w. Debug records are kept only when debug is set.
func NewJSONLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// InitJSONLogger makes the stdout JSON logger the slog default.
func InitJSONLogger(debug bool) {
	slog.SetDefault(NewJSONLogger(os.Stdout, debug))
}
