package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// SLASettings overrides the default remediation windows. Zero keeps the default.
type SLASettings struct {
	Critical time.Duration `mapstructure:"critical" validate:"gte=0"`
	High     time.Duration `mapstructure:"high" validate:"gte=0"`
	Medium   time.Duration `mapstructure:"medium" validate:"gte=0"`
	Low      time.Duration `mapstructure:"low" validate:"gte=0"`
}

// Validate checks that all fields in SLASettings are valid
func (s *SLASettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for SLASettings: %w", err)
	}
	return nil
}
