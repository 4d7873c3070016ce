package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

type trivyCVSS struct {
	V3Vector string  `json:"V3Vector"`
	V3Score  float64 `json:"V3Score"`
}

type trivyReport struct {
	Results []struct {
		Target          string `json:"Target"`
		Vulnerabilities []struct {
			VulnerabilityID  string               `json:"VulnerabilityID"`
			PkgName          string               `json:"PkgName"`
			InstalledVersion string               `json:"InstalledVersion"`
			FixedVersion     string               `json:"FixedVersion"`
			Title            string               `json:"Title"`
			Description      string               `json:"Description"`
			Severity         string               `json:"Severity"`
			PrimaryURL       string               `json:"PrimaryURL"`
			CweIDs           []string             `json:"CweIDs"`
			CVSS             map[string]trivyCVSS `json:"CVSS"`
		} `json:"Vulnerabilities"`
		Misconfigurations []struct {
			ID            string   `json:"ID"`
			Title         string   `json:"Title"`
			Description   string   `json:"Description"`
			Message       string   `json:"Message"`
			Severity      string   `json:"Severity"`
			PrimaryURL    string   `json:"PrimaryURL"`
			References    []string `json:"References"`
			CauseMetadata struct {
				StartLine int `json:"StartLine"`
				EndLine   int `json:"EndLine"`
			} `json:"CauseMetadata"`
		} `json:"Misconfigurations"`
	} `json:"Results"`
}

// ParseTrivy reads `trivy fs -f json` output. Vulnerabilities become SCA findings
// carrying the NVD CVSS vector when present, misconfigurations become IAC findings.
func ParseTrivy(report []byte) ([]*findings.Finding, error) {
	var doc trivyReport
	if err := json.Unmarshal(report, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode trivy report: %w", err)
	}

	var out []*findings.Finding
	for _, r := range doc.Results {
		target := findings.NormalizePath(r.Target)

		for _, v := range r.Vulnerabilities {
			vector, score := trivyVector(v.CVSS)
			msg := v.Description
			if v.FixedVersion != "" {
				msg = fmt.Sprintf("%s\n\nFixed in %s", msg, v.FixedVersion)
			}
			out = append(out, &findings.Finding{
				Tool:       "trivy",
				Category:   findings.CategorySCA,
				RuleID:     v.VulnerabilityID,
				Title:      truncate(fmt.Sprintf("%s@%s: %s", v.PkgName, v.InstalledVersion, firstNonEmpty(v.Title, v.VulnerabilityID)), 512),
				Message:    truncate(msg, 8192),
				Severity:   findings.ParseSeverity(v.Severity),
				CVSSVector: vector,
				CVSSScore:  score,
				CWE:        cweList(v.CweIDs...),
				FilePath:   target,
				StartLine:  1,
				EndLine:    1,
				HelpURI:    v.PrimaryURL,
			})
		}

		for _, m := range r.Misconfigurations {
			help := m.PrimaryURL
			if help == "" && len(m.References) > 0 {
				help = m.References[0]
			}
			out = append(out, &findings.Finding{
				Tool:      "trivy",
				Category:  findings.CategoryIAC,
				RuleID:    m.ID,
				Title:     truncate(firstNonEmpty(m.Title, m.ID), 512),
				Message:   truncate(firstNonEmpty(m.Message, m.Description, m.Title), 8192),
				Severity:  findings.ParseSeverity(m.Severity),
				FilePath:  target,
				StartLine: safeLine(m.CauseMetadata.StartLine),
				EndLine:   safeLine(m.CauseMetadata.EndLine),
				HelpURI:   help,
			})
		}
	}
	return out, nil
}

// trivyVector prefers the NVD rating and falls back to the first vendor alphabetically
func trivyVector(ratings map[string]trivyCVSS) (string, float64) {
	if nvd, ok := ratings["nvd"]; ok && nvd.V3Vector != "" {
		return nvd.V3Vector, nvd.V3Score
	}
	for _, source := range sortedKeys(ratings) {
		if r := ratings[source]; r.V3Vector != "" {
			return r.V3Vector, r.V3Score
		}
	}
	return "", 0
}
