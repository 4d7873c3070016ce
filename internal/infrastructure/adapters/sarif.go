package adapters

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/sarif"
)

// ParseSARIF imports any SARIF 2.1.0 log. The tool of each finding is the
// lower-cased driver name. A security-severity property, on the result or its
// rule, is taken as the CVSS score; otherwise the level decides the severity.
func ParseSARIF(report []byte) ([]*findings.Finding, error) {
	var doc sarif.Log
	if err := json.Unmarshal(report, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode sarif report: %w", err)
	}
	if len(doc.Runs) > 0 && doc.Version != "" && !strings.HasPrefix(doc.Version, "2.") {
		return nil, fmt.Errorf("unsupported sarif version %s", doc.Version)
	}

	var out []*findings.Finding
	for _, run := range doc.Runs {
		tool := strings.ToLower(strings.TrimSpace(run.Tool.Driver.Name))
		if tool == "" {
			tool = "sarif"
		}

		rules := make(map[string]sarif.Rule, len(run.Tool.Driver.Rules))
		for _, r := range run.Tool.Driver.Rules {
			rules[r.ID] = r
		}

		for _, res := range run.Results {
			rule := rules[res.RuleID]

			f := &findings.Finding{
				Tool:     truncate(tool, 50),
				Category: findings.CategorySAST,
				RuleID:   res.RuleID,
				Title:    truncate(firstNonEmpty(ruleTitle(rule), res.RuleID), 512),
				Message:  truncate(res.Message.Text, 8192),
				Severity: sarifLevel(res.Level),
				HelpURI:  rule.HelpURI,
			}

			if score, ok := securitySeverity(res.Properties); ok {
				f.CVSSScore = score
			} else if score, ok := securitySeverity(rule.Properties); ok {
				f.CVSSScore = score
			}

			if cwe, ok := rule.Properties["cwe"]; ok {
				f.CWE = toCWE(cwe)
			} else if tags, ok := rule.Properties["tags"]; ok {
				f.CWE = toCWE(tags)
			}

			f.StartLine, f.EndLine = 1, 1
			if len(res.Locations) > 0 {
				loc := res.Locations[0].PhysicalLocation
				f.FilePath = findings.NormalizePath(strings.TrimPrefix(loc.ArtifactLocation.URI, "file://"))
				if loc.Region != nil {
					f.StartLine = safeLine(loc.Region.StartLine)
					f.EndLine = safeLine(loc.Region.EndLine)
					if f.EndLine < f.StartLine {
						f.EndLine = f.StartLine
					}
				}
			}

			out = append(out, f)
		}
	}
	return out, nil
}

func ruleTitle(r sarif.Rule) string {
	if r.ShortDescription != nil && r.ShortDescription.Text != "" {
		return r.ShortDescription.Text
	}
	return r.Name
}

func sarifLevel(level string) findings.Severity {
	switch strings.ToLower(level) {
	case sarif.LevelError:
		return findings.SeverityHigh
	case sarif.LevelWarning, "":
		// warning is the SARIF default level
		return findings.SeverityMedium
	case sarif.LevelNote:
		return findings.SeverityLow
	default:
		return findings.SeverityInfo
	}
}

// securitySeverity reads the score that GitHub code scanning uses, stored as a string or number
func securitySeverity(props map[string]interface{}) (float64, bool) {
	v, ok := props[sarif.SecuritySeverityKey]
	if !ok {
		return 0, false
	}
	var score float64
	switch t := v.(type) {
	case string:
		s, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		score = s
	case float64:
		score = t
	default:
		return 0, false
	}
	if score < 0 || score > 10 {
		return 0, false
	}
	return score, true
}
