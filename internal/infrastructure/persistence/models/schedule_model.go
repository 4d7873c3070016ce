package models

import (
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
)

// ScheduleModel is the GORM database model for schedules
type ScheduleModel struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Name      string    `gorm:"not null;uniqueIndex;type:varchar(100)"`
	Tool      string    `gorm:"not null;type:varchar(50)"`
	Target    string    `gorm:"not null;type:varchar(1024)"`
	CronExpr  string    `gorm:"not null;type:varchar(100)"`
	Enabled   bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	LastRunAt *time.Time
	NextRunAt *time.Time
}

// TableName specifies the table name for GORM
func (ScheduleModel) TableName() string {
	return "schedules"
}

// ToDomain converts GORM model to domain entity
func (m *ScheduleModel) ToDomain() *scans.Schedule {
	return &scans.Schedule{
		ID:        m.ID,
		Name:      m.Name,
		Tool:      m.Tool,
		Target:    m.Target,
		CronExpr:  m.CronExpr,
		Enabled:   m.Enabled,
		CreatedAt: m.CreatedAt,
		LastRunAt: m.LastRunAt,
		NextRunAt: m.NextRunAt,
	}
}

// FromDomain converts domain entity to GORM model
func (m *ScheduleModel) FromDomain(s *scans.Schedule) {
	m.ID = s.ID
	m.Name = s.Name
	m.Tool = s.Tool
	m.Target = s.Target
	m.CronExpr = s.CronExpr
	m.Enabled = s.Enabled
	m.CreatedAt = s.CreatedAt
	m.LastRunAt = s.LastRunAt
	m.NextRunAt = s.NextRunAt
}
