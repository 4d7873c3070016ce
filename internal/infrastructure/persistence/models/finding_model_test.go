//go:build unit
// +build unit

package models

import (
	"testing"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindingModel_RoundTrip(t *testing.T) {
	now := time.Now().UTC()
	due := now.Add(24 * time.Hour)

	finding := &findings.Finding{
		ID:          uuid.NewString(),
		ScanID:      uuid.NewString(),
		Tool:        "semgrep",
		Category:    findings.CategorySAST,
		RuleID:      "python.lang.security.sqli",
		Title:       "SQL injection",
		Severity:    findings.SeverityHigh,
		CVSSScore:   8.1,
		CWE:         []string{"CWE-89", "CWE-20"},
		Target:      "./src",
		FilePath:    "app/db.py",
		StartLine:   12,
		EndLine:     14,
		Fingerprint: findings.Fingerprint("semgrep", "python.lang.security.sqli", "./src", "app/db.py", "SQL injection"),
		Status:      findings.StatusOpen,
		FirstSeen:   now,
		LastSeen:    now,
		DueAt:       &due,
	}

	model := &FindingModel{}
	model.FromDomain(finding)

	assert.Equal(t, "CWE-89,CWE-20", model.CWE)
	assert.Equal(t, findings.SeverityHigh.Rank(), model.SeverityRank)
	assert.Equal(t, "HIGH", model.Severity)

	back := model.ToDomain()
	require.NoError(t, back.Validate())
	assert.Equal(t, finding, back)
}

func TestFindingModel_ToDomainWithoutCWE(t *testing.T) {
	model := &FindingModel{Severity: "LOW", Status: "open"}

	f := model.ToDomain()
	assert.Nil(t, f.CWE)
	assert.Equal(t, findings.SeverityLow, f.Severity)
	assert.Equal(t, findings.StatusOpen, f.Status)
}

func TestAll(t *testing.T) {
	assert.Len(t, All(), 4)
}
