package logger

import (
	"io"
	"log/slog"
	"os"
)

// NewConsoleLogger creates a text logger on stdout with the specified log level.
func NewConsoleLogger(level string) Logger {
	return newConsoleLogger(os.Stdout, level)
}

func newConsoleLogger(w io.Writer, level string) Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	return &slogLogger{
		logger: slog.New(slog.NewTextHandler(w, opts)),
		exit:   os.Exit,
	}
}
