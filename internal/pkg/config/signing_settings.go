package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// SigningSettings locates the ECDSA key pair used to sign reports.
// A missing key pair is generated on first start.
type SigningSettings struct {
	PrivateKeyPath string `mapstructure:"private_key_path" validate:"required"`
	PublicKeyPath  string `mapstructure:"public_key_path" validate:"required"`
}

// Validate checks that all fields in SigningSettings are valid
func (s *SigningSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for SigningSettings: %w", err)
	}
	return nil
}
