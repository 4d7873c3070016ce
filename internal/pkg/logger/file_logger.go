package logger

import (
	"log/slog"
	"os"

	"github.com/natefinch/lumberjack"
)

// NewFileLogger creates a JSON logger writing to a rotated file.
// maxSize is in megabytes, maxAge in days.
func NewFileLogger(level string, filePath string, maxSize int, maxBackups int, maxAge int) Logger {
	writer := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   true,
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	return &slogLogger{
		logger: slog.New(slog.NewJSONHandler(writer, opts)),
		exit:   os.Exit,
	}
}
