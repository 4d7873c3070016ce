//go:build unit
// +build unit

package v1

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerScanRequest_Validate(t *testing.T) {
	require.NoError(t, (&TriggerScanRequest{Tool: "semgrep", Target: "./src"}).Validate())
	require.Error(t, (&TriggerScanRequest{Tool: "semgrep"}).Validate())
	require.Error(t, (&TriggerScanRequest{Target: "./src"}).Validate())

	err := (&TriggerScanRequest{Tool: "snyk", Target: "--command=/tmp/evil.sh"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field: Target, Tag: startsnotwith")

	require.Error(t, (&ImportScanRequest{Tool: "semgrep", Target: "-v"}).Validate())
}

func TestUpdateFindingRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		request   UpdateFindingRequest
		shouldErr bool
	}{
		{"resolved", UpdateFindingRequest{Status: "resolved"}, false},
		{"accepted with justification", UpdateFindingRequest{Status: "accepted", Justification: "vendor fix pending"}, false},
		{"false positive", UpdateFindingRequest{Status: "false_positive", Justification: "test fixture"}, false},
		{"empty", UpdateFindingRequest{}, true},
		{"unknown", UpdateFindingRequest{Status: "wontfix"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.shouldErr {
				require.Error(t, err, "expected validation error")
			} else {
				require.NoError(t, err, "expected no validation error")
			}
		})
	}
}

func TestGenerateReportRequest(t *testing.T) {
	require.Error(t, (&GenerateReportRequest{Format: "html"}).Validate())
	require.Error(t, (&GenerateReportRequest{Format: "json", Severity: "urgent"}).Validate())

	all := GenerateReportRequest{Format: "sarif"}
	require.NoError(t, all.Validate())
	assert.Nil(t, all.Query())

	filtered := GenerateReportRequest{Format: "json", Tool: "trivy", Status: "open"}
	require.NoError(t, filtered.Validate())
	require.NotNil(t, filtered.Query())
	assert.Equal(t, "trivy", filtered.Query().Tool)
	assert.Equal(t, "open", filtered.Query().Status)
}

func TestCreateScheduleRequest_Validate(t *testing.T) {
	valid := CreateScheduleRequest{Name: "n", Tool: "trivy", Target: ".", Cron: "*/15 * * * *"}
	require.NoError(t, valid.Validate())
	assert.True(t, valid.IsEnabled())

	disabled := false
	valid.Enabled = &disabled
	assert.False(t, valid.IsEnabled())

	invalid := CreateScheduleRequest{Name: "n", Tool: "trivy", Target: ".", Cron: "61 * * * *"}
	err := invalid.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cronExpr")

	flag := CreateScheduleRequest{Name: "n", Tool: "trivy", Target: "--config=x", Cron: "0 2 * * *"}
	require.Error(t, flag.Validate())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", findings.ErrNotFound), http.StatusNotFound},
		{scans.ErrNotFound, http.StatusNotFound},
		{reports.ErrNotFound, http.StatusNotFound},
		{findings.ErrInvalidTransition, http.StatusConflict},
		{scans.ErrScheduleExists, http.StatusConflict},
		{reports.ErrSignatureMismatch, http.StatusConflict},
		{scans.ErrThrottled, http.StatusTooManyRequests},
		{scans.ErrUnknownTool, http.StatusBadRequest},
		{scans.ErrInvalidReport, http.StatusBadRequest},
		{fmt.Errorf("%w: sarif", scans.ErrImportOnly), http.StatusBadRequest},
		{scans.ErrInvalidTarget, http.StatusBadRequest},
		{reports.ErrUnsupportedFormat, http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
