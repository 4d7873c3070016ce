// Package logger provides the process wide structured logger.
package logger

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Panic(args ...interface{})
	// With returns a logger annotating every record with the given key value pairs
	With(args ...interface{}) Logger
}
