package models

import (
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
)

// ReportModel is the GORM database model for archived report metadata
type ReportModel struct {
	ID           string    `gorm:"primaryKey;type:uuid"`
	Format       string    `gorm:"not null;type:varchar(20)"`
	Name         string    `gorm:"not null;type:varchar(255)"`
	Size         int64     `gorm:"not null"`
	SHA256       string    `gorm:"column:sha256;not null;type:char(64)"`
	Signature    string    `gorm:"not null;type:text"`
	FindingCount int       `gorm:"type:integer"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for GORM
func (ReportModel) TableName() string {
	return "reports"
}

// ToDomain converts GORM model to domain entity
func (m *ReportModel) ToDomain() *reports.ReportMeta {
	return &reports.ReportMeta{
		ID:           m.ID,
		Format:       m.Format,
		Name:         m.Name,
		Size:         m.Size,
		SHA256:       m.SHA256,
		Signature:    m.Signature,
		FindingCount: m.FindingCount,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain converts domain entity to GORM model
func (m *ReportModel) FromDomain(r *reports.ReportMeta) {
	m.ID = r.ID
	m.Format = r.Format
	m.Name = r.Name
	m.Size = r.Size
	m.SHA256 = r.SHA256
	m.Signature = r.Signature
	m.FindingCount = r.FindingCount
	m.CreatedAt = r.CreatedAt
}

// All returns every model that is migrated at startup
func All() []interface{} {
	return []interface{}{
		&FindingModel{},
		&ScanJobModel{},
		&ScheduleModel{},
		&ReportModel{},
	}
}
