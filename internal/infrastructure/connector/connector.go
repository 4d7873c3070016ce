// Package connector archives generated reports on the local filesystem or in Azure Blob Storage.
package connector

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
)

// NewReportConnector creates the connector selected by settings.Provider
func NewReportConnector(ctx context.Context, settings *config.ReportConnectorSettings, logger logger.Logger) (reports.ReportConnector, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	switch settings.Provider {
	case config.LocalProvider:
		return NewLocalReportConnector(settings.LocalPath, logger)
	case config.AzureCloudProvider:
		return NewAzureReportConnector(ctx, settings, logger)
	default:
		return nil, fmt.Errorf("unsupported report connector provider: %s", settings.Provider)
	}
}

// validateName rejects names that would escape the archive root
func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid report name %q", name)
	}
	return nil
}
