package scanner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/probe"
)

// ProbeScanner runs the built-in probe suite in-process
type ProbeScanner struct {
	suite *probe.Suite
}

// NewProbeScanner wraps suite as a scans.Scanner
func NewProbeScanner(suite *probe.Suite) *ProbeScanner {
	return &ProbeScanner{suite: suite}
}

func (s *ProbeScanner) Name() string {
	return ToolProbe
}

func (s *ProbeScanner) Kind() scans.Kind {
	return scans.KindDAST
}

// Scan probes the target URL
func (s *ProbeScanner) Scan(ctx context.Context, target string) ([]*findings.Finding, error) {
	list, err := s.suite.Run(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("probe of %s failed: %w", target, err)
	}
	return list, nil
}

// Parse reads a JSON array of findings as written by the CLI probe command
func (s *ProbeScanner) Parse(report []byte) ([]*findings.Finding, error) {
	var list []*findings.Finding
	if err := json.Unmarshal(report, &list); err != nil {
		return nil, fmt.Errorf("failed to parse probe report: %w", err)
	}
	for _, f := range list {
		f.Tool = ToolProbe
		f.Category = findings.CategoryDAST
	}
	return list, nil
}
