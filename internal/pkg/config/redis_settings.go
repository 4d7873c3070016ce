package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// RedisSettings configures the scan trigger throttle.
// An empty Addr disables throttling.
type RedisSettings struct {
	Addr     string        `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	Limit    int64         `mapstructure:"limit" validate:"gte=0"`
	Window   time.Duration `mapstructure:"window" validate:"gte=0"`
}

// Enabled reports whether a Redis server is configured
func (s *RedisSettings) Enabled() bool {
	return s.Addr != ""
}

// Validate checks that all fields in RedisSettings are valid
func (s *RedisSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for RedisSettings: %w", err)
	}

	if s.Enabled() && (s.Limit < 1 || s.Window <= 0) {
		return fmt.Errorf("limit and window are required when redis is enabled")
	}
	return nil
}
