//go:build unit
// +build unit

package scans

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func queuedJob() *ScanJob {
	return &ScanJob{
		ID:       "6f1e2d3c-4b5a-4968-8776-a5b4c3d2e1f0",
		Tool:     "trivy",
		Kind:     KindSCA,
		Target:   "./app",
		Status:   StatusQueued,
		Trigger:  TriggerManual,
		QueuedAt: testNow,
	}
}

func TestScanJobValidate(t *testing.T) {
	job := queuedJob()
	require.NoError(t, job.Validate())

	job.Kind = "RASP"
	job.Trigger = "webhook"
	err := job.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field: Kind, Tag: oneof")
	assert.Contains(t, err.Error(), "Field: Trigger, Tag: oneof")
}

func TestValidateTarget(t *testing.T) {
	for _, target := range []string{"./app", "/srv/repo", "http://localhost:5000", "app-v2"} {
		assert.NoError(t, ValidateTarget(target), target)
	}
	for _, target := range []string{"", "   ", "-", "--command=/tmp/evil.sh", "-fjson"} {
		assert.ErrorIs(t, ValidateTarget(target), ErrInvalidTarget, target)
	}

	job := queuedJob()
	job.Target = "--json"
	err := job.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field: Target, Tag: startsnotwith")
}

func TestScanJobLifecycle(t *testing.T) {
	job := queuedJob()

	require.NoError(t, job.Start(testNow))
	assert.Equal(t, StatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	err := job.Start(testNow)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	finished := testNow.Add(time.Minute)
	require.NoError(t, job.Succeed(finished, 7, 3, 2))
	assert.Equal(t, StatusSucceeded, job.Status)
	assert.Equal(t, finished, *job.FinishedAt)
	assert.Equal(t, 7, job.FindingCount)
	assert.Equal(t, 3, job.NewCount)
	assert.Equal(t, 2, job.ResolvedCount)

	err = job.Fail(finished, errors.New("late"))
	assert.True(t, errors.Is(err, ErrInvalidTransition), "terminal jobs stay terminal")
}

func TestScanJobFail(t *testing.T) {
	job := queuedJob()
	require.NoError(t, job.Fail(testNow, errors.New(strings.Repeat("x", 5000))))
	assert.Equal(t, StatusFailed, job.Status)
	assert.Len(t, job.Error, 4096)
	require.NoError(t, job.Validate())

	err := job.Succeed(testNow, 0, 0, 0)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestScanQueryValidate(t *testing.T) {
	require.NoError(t, NewScanQuery().Validate())
	require.NoError(t, (&ScanQuery{Kind: "DAST", Status: "failed", SortBy: "queued_at", SortOrder: "desc"}).Validate())
	assert.Error(t, (&ScanQuery{SortBy: "target"}).Validate())
	assert.Error(t, (&ScanQuery{Limit: -1}).Validate())
}

func validSchedule() *Schedule {
	return &Schedule{
		ID:        "0d9c8b7a-6f5e-4d3c-9b2a-1f0e9d8c7b6a",
		Name:      "nightly",
		Tool:      "semgrep",
		Target:    "./src",
		CronExpr:  "0 2 * * *",
		Enabled:   true,
		CreatedAt: testNow,
	}
}

func TestScheduleValidate(t *testing.T) {
	s := validSchedule()
	require.NoError(t, s.Validate())

	s.CronExpr = "@daily"
	require.NoError(t, s.Validate())

	s.CronExpr = "every night"
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field: CronExpr, Tag: cronExpr")

	s.CronExpr = "0 2 * * * *"
	assert.Error(t, s.Validate(), "seconds field is not accepted")
}

func TestScheduleNext(t *testing.T) {
	s := validSchedule()

	next, err := s.Next(testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 3, 2, 0, 0, 0, time.UTC), next)

	s.CronExpr = "*/15 * * * *"
	next, err = s.Next(testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 2, 9, 45, 0, 0, time.UTC), next)

	s.CronExpr = "bogus"
	_, err = s.Next(testNow)
	assert.Error(t, err)
}
