package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

type snykProject struct {
	DisplayTargetFile string `json:"displayTargetFile"`
	Vulnerabilities   []struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Severity    string   `json:"severity"`
		CVSSScore   float64  `json:"cvssScore"`
		CVSSv3      string   `json:"CVSSv3"`
		PackageName string   `json:"packageName"`
		Version     string   `json:"version"`
		From        []string `json:"from"`
		Identifiers struct {
			CWE []string `json:"CWE"`
			CVE []string `json:"CVE"`
		} `json:"identifiers"`
	} `json:"vulnerabilities"`
}

// ParseSnyk reads `snyk test --json` output, either a single project object or
// the array printed for --all-projects.
func ParseSnyk(report []byte) ([]*findings.Finding, error) {
	var projects []snykProject

	trimmed := bytes.TrimSpace(report)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &projects); err != nil {
			return nil, fmt.Errorf("failed to decode snyk report: %w", err)
		}
	} else {
		var single snykProject
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("failed to decode snyk report: %w", err)
		}
		projects = []snykProject{single}
	}

	var out []*findings.Finding
	for _, p := range projects {
		file := findings.NormalizePath(p.DisplayTargetFile)
		for _, v := range p.Vulnerabilities {
			title := fmt.Sprintf("%s@%s: %s", v.PackageName, v.Version, firstNonEmpty(v.Title, v.ID))
			msg := v.Description
			if len(v.From) > 0 {
				msg = fmt.Sprintf("Introduced through %s\n\n%s", strings.Join(v.From, " > "), msg)
			}
			help := ""
			if v.ID != "" {
				help = "https://security.snyk.io/vuln/" + v.ID
			}
			out = append(out, &findings.Finding{
				Tool:       "snyk",
				Category:   findings.CategorySCA,
				RuleID:     v.ID,
				Title:      truncate(title, 512),
				Message:    truncate(strings.TrimSpace(msg), 8192),
				Severity:   findings.ParseSeverity(v.Severity),
				CVSSVector: v.CVSSv3,
				CVSSScore:  v.CVSSScore,
				CWE:        cweList(v.Identifiers.CWE...),
				FilePath:   file,
				StartLine:  1,
				EndLine:    1,
				HelpURI:    help,
			})
		}
	}
	return out, nil
}
