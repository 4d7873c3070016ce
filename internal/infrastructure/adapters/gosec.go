package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

type gosecReport struct {
	Issues []struct {
		Severity   string `json:"severity"`
		Confidence string `json:"confidence"`
		CWE        struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"cwe"`
		RuleID  string `json:"rule_id"`
		Details string `json:"details"`
		File    string `json:"file"`
		Code    string `json:"code"`
		Line    string `json:"line"`
	} `json:"Issues"`
}

// ParseGosec reads `gosec -fmt=json` output. Lines are reported as "12" or "12-14".
func ParseGosec(report []byte) ([]*findings.Finding, error) {
	var doc gosecReport
	if err := json.Unmarshal(report, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode gosec report: %w", err)
	}

	out := make([]*findings.Finding, 0, len(doc.Issues))
	for _, i := range doc.Issues {
		start, end := parseLineRange(i.Line)
		msg := i.Details
		if i.Confidence != "" {
			msg = fmt.Sprintf("%s (confidence %s)", msg, i.Confidence)
		}
		out = append(out, &findings.Finding{
			Tool:      "gosec",
			Category:  findings.CategorySAST,
			RuleID:    i.RuleID,
			Title:     truncate(firstNonEmpty(i.Details, i.RuleID), 512),
			Message:   truncate(msg, 8192),
			Severity:  findings.ParseSeverity(i.Severity),
			FilePath:  findings.NormalizePath(i.File),
			StartLine: start,
			EndLine:   end,
			HelpURI:   i.CWE.URL,
			CWE:       cweList(i.CWE.ID),
		})
	}
	return out, nil
}
