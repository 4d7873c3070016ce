package models

import (
	"strings"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

// FindingModel is the GORM database model for findings
type FindingModel struct {
	ID            string     `gorm:"primaryKey;type:uuid"`
	ScanID        string     `gorm:"not null;index;type:uuid"`
	Tool          string     `gorm:"not null;index:idx_findings_tool_target;type:varchar(50)"`
	Category      string     `gorm:"not null;type:varchar(10)"`
	RuleID        string     `gorm:"not null;type:varchar(255)"`
	Title         string     `gorm:"not null;type:varchar(512)"`
	Message       string     `gorm:"type:text"`
	Severity      string     `gorm:"not null;index;type:varchar(10)"`
	SeverityRank  int        `gorm:"not null"`
	CVSSVector    string     `gorm:"column:cvss_vector;type:varchar(255)"`
	CVSSScore     float64    `gorm:"column:cvss_score"`
	CWE           string     `gorm:"column:cwe;type:varchar(255)"`
	Target        string     `gorm:"not null;index:idx_findings_tool_target;type:varchar(1024)"`
	FilePath      string     `gorm:"type:varchar(1024)"`
	StartLine     int        `gorm:"type:integer"`
	EndLine       int        `gorm:"type:integer"`
	HelpURI       string     `gorm:"column:help_uri;type:varchar(2048)"`
	Fingerprint   string     `gorm:"not null;uniqueIndex;type:char(64)"`
	Status        string     `gorm:"not null;index;type:varchar(20)"`
	FirstSeen     time.Time  `gorm:"not null"`
	LastSeen      time.Time  `gorm:"not null"`
	DueAt         *time.Time `gorm:"index"`
	ResolvedAt    *time.Time
	Justification string `gorm:"type:text"`
}

// TableName specifies the table name for GORM
func (FindingModel) TableName() string {
	return "findings"
}

// ToDomain converts GORM model to domain entity
func (m *FindingModel) ToDomain() *findings.Finding {
	var cwe []string
	if m.CWE != "" {
		cwe = strings.Split(m.CWE, ",")
	}

	return &findings.Finding{
		ID:            m.ID,
		ScanID:        m.ScanID,
		Tool:          m.Tool,
		Category:      findings.Category(m.Category),
		RuleID:        m.RuleID,
		Title:         m.Title,
		Message:       m.Message,
		Severity:      findings.Severity(m.Severity),
		CVSSVector:    m.CVSSVector,
		CVSSScore:     m.CVSSScore,
		CWE:           cwe,
		Target:        m.Target,
		FilePath:      m.FilePath,
		StartLine:     m.StartLine,
		EndLine:       m.EndLine,
		HelpURI:       m.HelpURI,
		Fingerprint:   m.Fingerprint,
		Status:        findings.Status(m.Status),
		FirstSeen:     m.FirstSeen,
		LastSeen:      m.LastSeen,
		DueAt:         m.DueAt,
		ResolvedAt:    m.ResolvedAt,
		Justification: m.Justification,
	}
}

// FromDomain converts domain entity to GORM model
func (m *FindingModel) FromDomain(f *findings.Finding) {
	m.ID = f.ID
	m.ScanID = f.ScanID
	m.Tool = f.Tool
	m.Category = string(f.Category)
	m.RuleID = f.RuleID
	m.Title = f.Title
	m.Message = f.Message
	m.Severity = string(f.Severity)
	m.SeverityRank = f.Severity.Rank()
	m.CVSSVector = f.CVSSVector
	m.CVSSScore = f.CVSSScore
	m.CWE = strings.Join(f.CWE, ",")
	m.Target = f.Target
	m.FilePath = f.FilePath
	m.StartLine = f.StartLine
	m.EndLine = f.EndLine
	m.HelpURI = f.HelpURI
	m.Fingerprint = f.Fingerprint
	m.Status = string(f.Status)
	m.FirstSeen = f.FirstSeen
	m.LastSeen = f.LastSeen
	m.DueAt = f.DueAt
	m.ResolvedAt = f.ResolvedAt
	m.Justification = f.Justification
}
