package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

type semgrepReport struct {
	Results []struct {
		CheckID string `json:"check_id"`
		Path    string `json:"path"`
		Start   struct {
			Line int `json:"line"`
		} `json:"start"`
		End struct {
			Line int `json:"line"`
		} `json:"end"`
		Extra struct {
			Message  string `json:"message"`
			Severity string `json:"severity"`
			Metadata struct {
				CWE  interface{} `json:"cwe"`
				Refs []string    `json:"references"`
			} `json:"metadata"`
		} `json:"extra"`
	} `json:"results"`
}

// ParseSemgrep reads `semgrep scan --json` output. ERROR maps to HIGH, WARNING to MEDIUM.
func ParseSemgrep(report []byte) ([]*findings.Finding, error) {
	var doc semgrepReport
	if err := json.Unmarshal(report, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode semgrep report: %w", err)
	}

	out := make([]*findings.Finding, 0, len(doc.Results))
	for _, r := range doc.Results {
		help := ""
		if len(r.Extra.Metadata.Refs) > 0 {
			help = r.Extra.Metadata.Refs[0]
		}
		out = append(out, &findings.Finding{
			Tool:      "semgrep",
			Category:  findings.CategorySAST,
			RuleID:    r.CheckID,
			Title:     truncate(r.CheckID, 512),
			Message:   truncate(r.Extra.Message, 8192),
			Severity:  findings.ParseSeverity(r.Extra.Severity),
			FilePath:  findings.NormalizePath(r.Path),
			StartLine: safeLine(r.Start.Line),
			EndLine:   safeLine(r.End.Line),
			HelpURI:   help,
			CWE:       toCWE(r.Extra.Metadata.CWE),
		})
	}
	return out, nil
}
