package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/sarif"
)

const informationURI = "https://github.com/MGTheTrain/scan-warden"

// RenderSARIF writes a SARIF 2.1.0 log with one run per tool
func RenderSARIF(list []*findings.Finding, toolVersion string) ([]byte, error) {
	byTool := make(map[string][]*findings.Finding)
	for _, f := range list {
		byTool[f.Tool] = append(byTool[f.Tool], f)
	}
	tools := make([]string, 0, len(byTool))
	for tool := range byTool {
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	log := sarif.Log{
		Version: sarif.Version,
		Schema:  sarif.Schema,
		Runs:    make([]sarif.Run, 0, len(tools)),
	}
	for _, tool := range tools {
		log.Runs = append(log.Runs, buildRun(tool, toolVersion, byTool[tool]))
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sarif: %w", err)
	}
	return data, nil
}

func buildRun(tool, version string, fs []*findings.Finding) sarif.Run {
	SortFindings(fs)

	rules := make(map[string]sarif.Rule)
	results := make([]sarif.Result, 0, len(fs))
	for _, f := range fs {
		if _, ok := rules[f.RuleID]; !ok {
			rule := sarif.Rule{
				ID:               f.RuleID,
				ShortDescription: &sarif.Message{Text: f.Title},
				HelpURI:          f.HelpURI,
			}
			props := map[string]interface{}{}
			if f.CVSSScore > 0 {
				props[sarif.SecuritySeverityKey] = formatScore(f.CVSSScore)
			}
			if len(f.CWE) > 0 {
				props["tags"] = append([]string{"security"}, f.CWE...)
			}
			if len(props) > 0 {
				rule.Properties = props
			}
			rules[f.RuleID] = rule
		}

		uri := toURI(f.FilePath)
		if uri == "" {
			uri = "UNKNOWN"
		}
		start := f.StartLine
		if start <= 0 {
			start = 1
		}
		end := f.EndLine
		if end < start {
			end = 0
		}

		text := strings.TrimSpace(f.Message)
		if text == "" {
			text = f.Title
		}

		result := sarif.Result{
			RuleID:  f.RuleID,
			Level:   sevToLevel(f.Severity),
			Message: sarif.Message{Text: text},
			Locations: []sarif.Location{{
				PhysicalLocation: sarif.PhysicalLocation{
					ArtifactLocation: sarif.ArtifactLocation{URI: uri},
					Region:           &sarif.Region{StartLine: start, EndLine: end},
				},
			}},
			Fingerprints: map[string]string{"scanWarden/v1": f.Fingerprint},
			Properties: map[string]interface{}{
				"severity": string(f.Severity),
				"status":   string(f.Status),
				"category": string(f.Category),
			},
		}
		if f.CVSSScore > 0 {
			result.Properties[sarif.SecuritySeverityKey] = formatScore(f.CVSSScore)
		}
		results = append(results, result)
	}

	ruleIDs := make([]string, 0, len(rules))
	for id := range rules {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)
	driverRules := make([]sarif.Rule, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		driverRules = append(driverRules, rules[id])
	}

	return sarif.Run{
		Tool: sarif.Tool{Driver: sarif.Driver{
			Name:           tool,
			Version:        version,
			InformationURI: informationURI,
			Rules:          driverRules,
		}},
		Results: results,
	}
}

// SortFindings orders findings by normalized file, line and rule
func SortFindings(fs []*findings.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		pi, pj := toURI(fs[i].FilePath), toURI(fs[j].FilePath)
		if pi == pj {
			if fs[i].StartLine == fs[j].StartLine {
				return fs[i].RuleID < fs[j].RuleID
			}
			return fs[i].StartLine < fs[j].StartLine
		}
		return pi < pj
	})
}

func sevToLevel(s findings.Severity) string {
	switch s {
	case findings.SeverityCritical, findings.SeverityHigh:
		return sarif.LevelError
	case findings.SeverityMedium:
		return sarif.LevelWarning
	default:
		return sarif.LevelNote
	}
}

// security-severity is a string property in GitHub code scanning
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}

func toURI(p string) string {
	p = strings.TrimSpace(p)
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	return strings.TrimPrefix(p, "./")
}
