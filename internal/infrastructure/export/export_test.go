//go:build unit
// +build unit

package export

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/adapters"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/sarif"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

func sampleFindings() []*findings.Finding {
	due := now.Add(-time.Hour)
	return []*findings.Finding{
		{
			Tool: "trivy", Category: findings.CategorySCA, RuleID: "CVE-2023-30861",
			Title: "flask@2.2.2: session cookie disclosure", Severity: findings.SeverityHigh,
			CVSSScore: 7.5, CWE: []string{"CWE-539"}, FilePath: "requirements.txt",
			StartLine: 1, EndLine: 1, Fingerprint: strings.Repeat("a", 64),
			Status: findings.StatusOpen, FirstSeen: now.Add(-8 * 24 * time.Hour), DueAt: &due,
		},
		{
			Tool: "semgrep", Category: findings.CategorySAST, RuleID: "python.sqli",
			Title: "Tainted SQL | string", Message: "User input reaches a query",
			Severity: findings.SeverityCritical, CVSSScore: 9.8, FilePath: "./src/db.py",
			StartLine: 42, EndLine: 44, Fingerprint: strings.Repeat("b", 64),
			Status: findings.StatusOpen, FirstSeen: now.Add(-time.Hour),
		},
		{
			Tool: "semgrep", Category: findings.CategorySAST, RuleID: "python.debug",
			Title: "Debug enabled", Severity: findings.SeverityLow, FilePath: "src/app.py",
			StartLine: 3, EndLine: 3, Fingerprint: strings.Repeat("c", 64),
			Status: findings.StatusResolved, FirstSeen: now.Add(-48 * time.Hour),
		},
	}
}

func sampleSummary(list []*findings.Finding) *reports.Summary {
	return reports.Summarize(list, sla.DefaultPolicy(), now, reports.DefaultTopN)
}

func TestRenderer_UnsupportedFormat(t *testing.T) {
	_, err := NewRenderer("dev").Render("pdf", nil, nil)
	assert.True(t, errors.Is(err, reports.ErrUnsupportedFormat))
}

func TestRenderJSON(t *testing.T) {
	list := sampleFindings()
	data, err := NewRenderer("dev").Render(reports.FormatJSON, sampleSummary(list), list)
	require.NoError(t, err)

	var doc struct {
		Summary struct {
			Total  int            `json:"total"`
			ByTool map[string]int `json:"by_tool"`
		} `json:"summary"`
		Findings []map[string]interface{} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 3, doc.Summary.Total)
	assert.Equal(t, map[string]int{"semgrep": 2, "trivy": 1}, doc.Summary.ByTool)
	assert.Len(t, doc.Findings, 3)

	data, err = RenderJSON(nil, nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"findings": []`)
}

func TestRenderMarkdown(t *testing.T) {
	list := sampleFindings()
	data, err := NewRenderer("dev").Render(reports.FormatMarkdown, sampleSummary(list), list)
	require.NoError(t, err)

	md := string(data)
	assert.Contains(t, md, "# Security Findings Report")
	assert.Contains(t, md, "Generated: 2026-03-02T06:00:00Z")
	assert.Contains(t, md, "| CRITICAL | 1 | 0 | 0 | 0 |")
	assert.Contains(t, md, "| semgrep | 2 |")
	assert.Contains(t, md, `Tainted SQL \| string`)
	assert.Contains(t, md, "./src/db.py:42")
	assert.Contains(t, md, "## SLA compliance")

	_, err = RenderMarkdown(nil, list)
	assert.Error(t, err)
}

func TestRenderSARIF(t *testing.T) {
	list := sampleFindings()
	data, err := NewRenderer("1.0.0").Render(reports.FormatSARIF, nil, list)
	require.NoError(t, err)

	var log sarif.Log
	require.NoError(t, json.Unmarshal(data, &log))
	assert.Equal(t, sarif.Version, log.Version)
	require.Len(t, log.Runs, 2)
	assert.Equal(t, "semgrep", log.Runs[0].Tool.Driver.Name)
	assert.Equal(t, "trivy", log.Runs[1].Tool.Driver.Name)
	assert.Equal(t, "1.0.0", log.Runs[0].Tool.Driver.Version)

	semgrep := log.Runs[0]
	require.Len(t, semgrep.Results, 2)
	assert.Equal(t, "src/app.py", semgrep.Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, sarif.LevelNote, semgrep.Results[0].Level)
	assert.Equal(t, "src/db.py", semgrep.Results[1].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, sarif.LevelError, semgrep.Results[1].Level)
	assert.Equal(t, "9.8", semgrep.Results[1].Properties[sarif.SecuritySeverityKey])

	trivy := log.Runs[1]
	require.Len(t, trivy.Tool.Driver.Rules, 1)
	assert.Equal(t, "7.5", trivy.Tool.Driver.Rules[0].Properties[sarif.SecuritySeverityKey])
}

func TestRenderSARIF_Reimport(t *testing.T) {
	data, err := RenderSARIF(sampleFindings(), "dev")
	require.NoError(t, err)

	got, err := adapters.ParseSARIF(data)
	require.NoError(t, err)
	require.Len(t, got, 3)

	type key struct {
		Tool, RuleID, FilePath string
		StartLine              int
		Score                  float64
	}
	keys := make([]key, 0, len(got))
	for _, f := range got {
		keys = append(keys, key{f.Tool, f.RuleID, f.FilePath, f.StartLine, f.CVSSScore})
	}
	want := []key{
		{"semgrep", "python.debug", "src/app.py", 3, 0},
		{"semgrep", "python.sqli", "src/db.py", 42, 9.8},
		{"trivy", "CVE-2023-30861", "requirements.txt", 1, 7.5},
	}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("reimported findings mismatch (-want +got):\n%s", diff)
	}
}

func TestSevToLevel(t *testing.T) {
	assert.Equal(t, sarif.LevelError, sevToLevel(findings.SeverityCritical))
	assert.Equal(t, sarif.LevelError, sevToLevel(findings.SeverityHigh))
	assert.Equal(t, sarif.LevelWarning, sevToLevel(findings.SeverityMedium))
	assert.Equal(t, sarif.LevelNote, sevToLevel(findings.SeverityLow))
	assert.Equal(t, sarif.LevelNote, sevToLevel(findings.SeverityInfo))
}
