//go:build unit
// +build unit

package models

import (
	"testing"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScanJobModel_RoundTrip(t *testing.T) {
	scheduleID := uuid.NewString()
	started := time.Now()

	job := &scans.ScanJob{
		ID:           uuid.NewString(),
		Tool:         "trivy",
		Kind:         scans.KindSCA,
		Target:       ".",
		Status:       scans.StatusRunning,
		Trigger:      scans.TriggerSchedule,
		ScheduleID:   &scheduleID,
		QueuedAt:     started.Add(-time.Second),
		StartedAt:    &started,
		FindingCount: 3,
	}

	model := &ScanJobModel{}
	model.FromDomain(job)
	assert.Equal(t, "schedule", model.Trigger)
	assert.Equal(t, job, model.ToDomain())
}

func TestScheduleModel_RoundTrip(t *testing.T) {
	schedule := &scans.Schedule{
		ID:        uuid.NewString(),
		Name:      "nightly-sast",
		Tool:      "semgrep",
		Target:    "./src",
		CronExpr:  "0 2 * * *",
		Enabled:   true,
		CreatedAt: time.Now(),
	}

	model := &ScheduleModel{}
	model.FromDomain(schedule)
	assert.Equal(t, schedule, model.ToDomain())
}

func TestReportModel_RoundTrip(t *testing.T) {
	meta := &reports.ReportMeta{
		ID:           uuid.NewString(),
		Format:       reports.FormatMarkdown,
		Name:         "report.md",
		Size:         42,
		SHA256:       "ab",
		Signature:    "cd",
		FindingCount: 2,
		CreatedAt:    time.Now(),
	}

	model := &ReportModel{}
	model.FromDomain(meta)
	assert.Equal(t, meta, model.ToDomain())
}
