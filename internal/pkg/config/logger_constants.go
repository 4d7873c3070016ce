package config

// Log levels, critical is logged at error level
const (
	LogLevelDebug    = "debug"
	LogLevelInfo     = "info"
	LogLevelWarning  = "warning"
	LogLevelError    = "error"
	LogLevelCritical = "critical"
)

// Log outputs
const (
	LogTypeConsole = "console"
	LogTypeFile    = "file"
)

// Rotation defaults of the file logger
const (
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)
