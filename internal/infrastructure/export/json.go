package export

import (
	"encoding/json"
	"fmt"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
)

// Document is the JSON report layout
type Document struct {
	Summary  *reports.Summary    `json:"summary"`
	Findings []*findings.Finding `json:"findings"`
}

// RenderJSON writes an indented JSON document
func RenderJSON(summary *reports.Summary, list []*findings.Finding) ([]byte, error) {
	if list == nil {
		list = []*findings.Finding{}
	}
	data, err := json.MarshalIndent(Document{Summary: summary, Findings: list}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}
