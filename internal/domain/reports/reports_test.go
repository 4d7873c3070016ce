//go:build unit
// +build unit

package reports

import (
	"errors"
	"testing"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func finding(id string, sev findings.Severity, status findings.Status, score float64, age time.Duration) *findings.Finding {
	return &findings.Finding{
		ID:        id,
		Tool:      "trivy",
		Category:  findings.CategorySCA,
		Severity:  sev,
		Status:    status,
		CVSSScore: score,
		FirstSeen: now.Add(-age),
	}
}

func TestSortByPriority(t *testing.T) {
	list := []*findings.Finding{
		finding("low", findings.SeverityLow, findings.StatusOpen, 0, time.Hour),
		finding("high-young", findings.SeverityHigh, findings.StatusOpen, 7.5, time.Hour),
		finding("high-old", findings.SeverityHigh, findings.StatusOpen, 7.5, 10*time.Hour),
		finding("high-scored", findings.SeverityHigh, findings.StatusOpen, 8.8, time.Hour),
		finding("critical", findings.SeverityCritical, findings.StatusOpen, 0, time.Hour),
	}

	SortByPriority(list)

	var ids []string
	for _, f := range list {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"critical", "high-scored", "high-old", "high-young", "low"}, ids)
}

func TestSummarize(t *testing.T) {
	all := []*findings.Finding{
		finding("a", findings.SeverityHigh, findings.StatusOpen, 0, time.Hour),
		finding("b", findings.SeverityHigh, findings.StatusResolved, 0, time.Hour),
		finding("c", findings.SeverityCritical, findings.StatusOpen, 0, time.Hour),
		finding("d", findings.SeverityLow, findings.StatusOpen, 0, time.Hour),
	}
	all[3].Tool = "gosec"
	all[3].Category = findings.CategorySAST

	s := Summarize(all, sla.DefaultPolicy(), now, 2)

	assert.Equal(t, now, s.GeneratedAt)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.BySeverity[findings.SeverityHigh][findings.StatusOpen])
	assert.Equal(t, 1, s.BySeverity[findings.SeverityHigh][findings.StatusResolved])
	assert.Equal(t, map[string]int{"trivy": 3, "gosec": 1}, s.ByTool)
	assert.Equal(t, 3, s.ByCategory[findings.CategorySCA])
	require.Len(t, s.TopOpen, 2)
	assert.Equal(t, "c", s.TopOpen[0].ID)
	assert.Equal(t, "a", s.TopOpen[1].ID)
	require.NotNil(t, s.SLA)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, sla.DefaultPolicy(), now, DefaultTopN)
	assert.Equal(t, 0, s.Total)
	assert.Empty(t, s.TopOpen)
	assert.Equal(t, float64(100), s.SLA.CompliancePct)
}

func TestFileExtension(t *testing.T) {
	for format, want := range map[string]string{FormatJSON: ".json", FormatMarkdown: ".md", FormatSARIF: ".sarif"} {
		ext, err := FileExtension(format)
		require.NoError(t, err)
		assert.Equal(t, want, ext)
	}
	_, err := FileExtension("pdf")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestReportMetaValidate(t *testing.T) {
	meta := &ReportMeta{
		ID:           "3e4f5a6b-7c8d-4e9f-8a0b-1c2d3e4f5a6b",
		Format:       FormatJSON,
		Name:         "report.json",
		Size:         12,
		SHA256:       "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Signature:    "3045022100ab",
		FindingCount: 0,
		CreatedAt:    now,
	}
	require.NoError(t, meta.Validate())

	meta.Format = "pdf"
	meta.Size = 0
	err := meta.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field: Format, Tag: oneof")
	assert.Contains(t, err.Error(), "Field: Size, Tag: required")
}
