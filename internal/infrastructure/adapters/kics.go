package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

type kicsQuery struct {
	QueryName   string `json:"query_name"`
	QueryID     string `json:"query_id"`
	QueryURL    string `json:"query_url"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	CWE         string `json:"cwe"`
	Files       []struct {
		FileName      string `json:"file_name"`
		Line          int    `json:"line"`
		ExpectedValue string `json:"expected_value"`
		ActualValue   string `json:"actual_value"`
	} `json:"files"`
}

type kicsReport struct {
	Queries []kicsQuery `json:"queries"`
}

// older kics builds export the root key upper-cased
type kicsReportUpper struct {
	Queries []kicsQuery `json:"Queries"`
}

// ParseKICS reads a kics results.json. Each affected file becomes one IAC finding.
func ParseKICS(report []byte) ([]*findings.Finding, error) {
	var doc kicsReport
	err := json.Unmarshal(report, &doc)
	if err != nil || len(doc.Queries) == 0 {
		var upper kicsReportUpper
		if e2 := json.Unmarshal(report, &upper); e2 == nil && len(upper.Queries) > 0 {
			doc.Queries = upper.Queries
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode kics report: %w", err)
	}

	out := make([]*findings.Finding, 0, len(doc.Queries))
	for _, q := range doc.Queries {
		msg := firstNonEmpty(q.Description, q.QueryName)
		for _, f := range q.Files {
			detail := msg
			if f.ExpectedValue != "" || f.ActualValue != "" {
				detail = fmt.Sprintf("%s\n\nExpected: %s\nActual: %s", msg, f.ExpectedValue, f.ActualValue)
			}
			out = append(out, &findings.Finding{
				Tool:      "kics",
				Category:  findings.CategoryIAC,
				RuleID:    q.QueryID,
				Title:     truncate(firstNonEmpty(q.QueryName, q.QueryID), 512),
				Message:   truncate(detail, 8192),
				Severity:  findings.ParseSeverity(q.Severity),
				FilePath:  findings.NormalizePath(f.FileName),
				StartLine: safeLine(f.Line),
				EndLine:   safeLine(f.Line),
				HelpURI:   q.QueryURL,
				CWE:       cweList(q.CWE),
			})
		}
	}
	return out, nil
}
