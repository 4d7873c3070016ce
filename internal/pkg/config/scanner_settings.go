package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Scanner defaults
const (
	DefaultScanWorkers      = 4
	DefaultScanTimeout      = 30 * time.Minute
	DefaultProbeConcurrency = 4
	DefaultProbeTimeout     = 10 * time.Second
)

// ToolSettings overrides how a single external tool is invoked
type ToolSettings struct {
	Binary  string        `mapstructure:"binary"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// ProbeSettings configures the built-in DAST probe suite
type ProbeSettings struct {
	Params         []string      `mapstructure:"params" validate:"dive,min=1"`
	ProtectedPaths []string      `mapstructure:"protected_paths" validate:"dive,startswith=/"`
	LoginPath      string        `mapstructure:"login_path" validate:"omitempty,startswith=/"`
	Concurrency    int           `mapstructure:"concurrency" validate:"gte=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
}

// ScannerSettings holds worker pool and tool invocation settings
type ScannerSettings struct {
	Workers int                     `mapstructure:"workers" validate:"gte=0"`
	Timeout time.Duration           `mapstructure:"timeout" validate:"gte=0"`
	Tools   map[string]ToolSettings `mapstructure:"tools" validate:"dive"`
	Probe   ProbeSettings           `mapstructure:"probe"`
}

// ApplyDefaults fills zero values with defaults
func (s *ScannerSettings) ApplyDefaults() {
	if s.Workers == 0 {
		s.Workers = DefaultScanWorkers
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultScanTimeout
	}
	if s.Probe.Concurrency == 0 {
		s.Probe.Concurrency = DefaultProbeConcurrency
	}
	if s.Probe.RequestTimeout == 0 {
		s.Probe.RequestTimeout = DefaultProbeTimeout
	}
}

// TimeoutFor returns the timeout of a tool, falling back to the global timeout
func (s *ScannerSettings) TimeoutFor(tool string) time.Duration {
	if t, ok := s.Tools[tool]; ok && t.Timeout > 0 {
		return t.Timeout
	}
	return s.Timeout
}

// BinaryFor returns the configured binary of a tool or def when unset
func (s *ScannerSettings) BinaryFor(tool, def string) string {
	if t, ok := s.Tools[tool]; ok && t.Binary != "" {
		return t.Binary
	}
	return def
}

// Validate checks that all fields in ScannerSettings are valid
func (s *ScannerSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for ScannerSettings: %w", err)
	}
	return nil
}
