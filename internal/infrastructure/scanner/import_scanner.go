package scanner

import (
	"context"
	"fmt"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/adapters"
)

// SARIFImporter accepts SARIF 2.1.0 reports of any tool. It cannot run scans itself.
type SARIFImporter struct{}

func (SARIFImporter) Name() string {
	return ToolSARIF
}

func (SARIFImporter) Kind() scans.Kind {
	return scans.KindSAST
}

func (SARIFImporter) ImportOnly() bool {
	return true
}

func (SARIFImporter) Scan(context.Context, string) ([]*findings.Finding, error) {
	return nil, fmt.Errorf("%w: %s", scans.ErrImportOnly, ToolSARIF)
}

func (SARIFImporter) Parse(report []byte) ([]*findings.Finding, error) {
	list, err := adapters.ParseSARIF(report)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sarif report: %w", err)
	}
	return list, nil
}
