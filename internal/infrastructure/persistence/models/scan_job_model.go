package models

import (
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
)

// ScanJobModel is the GORM database model for scan jobs
type ScanJobModel struct {
	ID            string     `gorm:"primaryKey;type:uuid"`
	Tool          string     `gorm:"not null;index;type:varchar(50)"`
	Kind          string     `gorm:"not null;type:varchar(10)"`
	Target        string     `gorm:"not null;type:varchar(1024)"`
	Status        string     `gorm:"not null;index;type:varchar(20)"`
	Trigger       string     `gorm:"column:trigger_source;not null;type:varchar(20)"`
	ScheduleID    *string    `gorm:"index;type:uuid"`
	QueuedAt      time.Time  `gorm:"not null"`
	StartedAt     *time.Time
	FinishedAt    *time.Time
	FindingCount  int    `gorm:"type:integer"`
	NewCount      int    `gorm:"type:integer"`
	ResolvedCount int    `gorm:"type:integer"`
	Error         string `gorm:"type:text"`
}

// TableName specifies the table name for GORM
func (ScanJobModel) TableName() string {
	return "scan_jobs"
}

// ToDomain converts GORM model to domain entity
func (m *ScanJobModel) ToDomain() *scans.ScanJob {
	return &scans.ScanJob{
		ID:            m.ID,
		Tool:          m.Tool,
		Kind:          scans.Kind(m.Kind),
		Target:        m.Target,
		Status:        scans.Status(m.Status),
		Trigger:       scans.Trigger(m.Trigger),
		ScheduleID:    m.ScheduleID,
		QueuedAt:      m.QueuedAt,
		StartedAt:     m.StartedAt,
		FinishedAt:    m.FinishedAt,
		FindingCount:  m.FindingCount,
		NewCount:      m.NewCount,
		ResolvedCount: m.ResolvedCount,
		Error:         m.Error,
	}
}

// FromDomain converts domain entity to GORM model
func (m *ScanJobModel) FromDomain(j *scans.ScanJob) {
	m.ID = j.ID
	m.Tool = j.Tool
	m.Kind = string(j.Kind)
	m.Target = j.Target
	m.Status = string(j.Status)
	m.Trigger = string(j.Trigger)
	m.ScheduleID = j.ScheduleID
	m.QueuedAt = j.QueuedAt
	m.StartedAt = j.StartedAt
	m.FinishedAt = j.FinishedAt
	m.FindingCount = j.FindingCount
	m.NewCount = j.NewCount
	m.ResolvedCount = j.ResolvedCount
	m.Error = j.Error
}
