package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Report connector providers
const (
	LocalProvider      = "local"
	AzureCloudProvider = "azure"
)

// ReportConnectorSettings holds settings for the store that archives generated reports
type ReportConnectorSettings struct {
	Provider         string `mapstructure:"provider" validate:"required,oneof=local azure"`
	LocalPath        string `mapstructure:"local_path" validate:"required_if=Provider local"`
	ConnectionString string `mapstructure:"connection_string" validate:"required_if=Provider azure"`
	ContainerName    string `mapstructure:"container_name" validate:"required_if=Provider azure"`
}

// Validate checks that all fields in ReportConnectorSettings are valid
func (s *ReportConnectorSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for ReportConnectorSettings: %w", err)
	}
	return nil
}
