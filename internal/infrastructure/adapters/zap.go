package adapters

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

type zapReport struct {
	Site []struct {
		Name   string `json:"@name"`
		Alerts []struct {
			PluginID  string `json:"pluginid"`
			AlertRef  string `json:"alertRef"`
			Alert     string `json:"alert"`
			Name      string `json:"name"`
			RiskCode  string `json:"riskcode"`
			Desc      string `json:"desc"`
			Solution  string `json:"solution"`
			Reference string `json:"reference"`
			CWEID     string `json:"cweid"`
			Instances []struct {
				URI    string `json:"uri"`
				Method string `json:"method"`
				Param  string `json:"param"`
			} `json:"instances"`
		} `json:"alerts"`
	} `json:"site"`
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// zapRisk maps the riskcode 0-3 to a severity
func zapRisk(code string) findings.Severity {
	switch strings.TrimSpace(code) {
	case "3":
		return findings.SeverityHigh
	case "2":
		return findings.SeverityMedium
	case "1":
		return findings.SeverityLow
	default:
		return findings.SeverityInfo
	}
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, "\n"))
}

// ParseZAP reads the JSON report of zap-baseline.py (-J). One finding is
// produced per alert and site; instances are listed in the message.
func ParseZAP(report []byte) ([]*findings.Finding, error) {
	var doc zapReport
	if err := json.Unmarshal(report, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode zap report: %w", err)
	}

	var out []*findings.Finding
	for _, site := range doc.Site {
		for _, a := range site.Alerts {
			var b strings.Builder
			b.WriteString(stripHTML(a.Desc))
			if sol := stripHTML(a.Solution); sol != "" {
				b.WriteString("\n\nSolution: ")
				b.WriteString(sol)
			}
			for _, inst := range a.Instances {
				fmt.Fprintf(&b, "\n%s %s", inst.Method, inst.URI)
				if inst.Param != "" {
					fmt.Fprintf(&b, " (param %s)", inst.Param)
				}
			}

			help := ""
			if refs := strings.Fields(stripHTML(a.Reference)); len(refs) > 0 {
				help = refs[0]
			}

			out = append(out, &findings.Finding{
				Tool:      "zap",
				Category:  findings.CategoryDAST,
				RuleID:    firstNonEmpty(a.AlertRef, a.PluginID),
				Title:     truncate(firstNonEmpty(a.Alert, a.Name, a.PluginID), 512),
				Message:   truncate(b.String(), 8192),
				Severity:  zapRisk(a.RiskCode),
				FilePath:  site.Name,
				StartLine: 1,
				EndLine:   1,
				HelpURI:   help,
				CWE:       cweList(a.CWEID),
			})
		}
	}
	return out, nil
}
