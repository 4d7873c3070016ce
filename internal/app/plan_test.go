//go:build unit
// +build unit

package app

import (
	"testing"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlan = `
targets:
  - name: shop
    path: ./shop
    url: http://localhost:8080
schedules:
  - name: nightly-semgrep
    tool: semgrep
    target: shop
    cron: "0 2 * * *"
  - name: hourly-probe
    tool: probe
    target: shop
    cron: "@hourly"
    enabled: false
sla:
  critical: 12h
  low: 2160h
reports:
  cadence: "@weekly"
  format: markdown
probe:
  params: [q, id]
  protected_paths: [/admin]
  login_path: /login
`

func TestParsePlan(t *testing.T) {
	plan, err := ParsePlan([]byte(testPlan))
	require.NoError(t, err)

	require.Len(t, plan.Schedules, 2)
	assert.Equal(t, 12*time.Hour, plan.SLA.Critical)
	require.NotNil(t, plan.Schedules[1].Enabled)
	assert.False(t, *plan.Schedules[1].Enabled)
	require.NotNil(t, plan.Reports)
	assert.Equal(t, "markdown", plan.Reports.Format)
	assert.Equal(t, []string{"q", "id"}, plan.Probe.Params)
}

func TestParsePlan_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "targetz: []\n"},
		{"bad cron", "schedules:\n  - {name: a, tool: semgrep, target: ., cron: 'sometimes'}\n"},
		{"duplicate schedule", "schedules:\n  - {name: a, tool: semgrep, target: ., cron: '@daily'}\n  - {name: a, tool: trivy, target: ., cron: '@daily'}\n"},
		{"reserved name", "schedules:\n  - {name: plan-report, tool: semgrep, target: ., cron: '@daily'}\n"},
		{"duplicate target", "targets:\n  - {name: a, path: .}\n  - {name: a, path: ./b}\n"},
		{"target without location", "targets:\n  - {name: a}\n"},
		{"bad report format", "reports: {cadence: '@weekly', format: pdf}\n"},
		{"relative protected path", "probe: {protected_paths: [admin]}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestPlan_ApplyTo(t *testing.T) {
	plan, err := ParsePlan([]byte(testPlan))
	require.NoError(t, err)

	cfg := &config.RestConfig{SLA: config.SLASettings{High: 48 * time.Hour}}
	plan.ApplyTo(cfg)

	assert.Equal(t, 12*time.Hour, cfg.SLA.Critical)
	assert.Equal(t, 48*time.Hour, cfg.SLA.High)
	assert.Equal(t, "/login", cfg.Scanners.Probe.LoginPath)
	assert.Equal(t, []string{"/admin"}, cfg.Scanners.Probe.ProtectedPaths)
}

func TestPlan_ResolveTarget(t *testing.T) {
	plan, err := ParsePlan([]byte(testPlan))
	require.NoError(t, err)

	assert.Equal(t, "./shop", plan.resolveTarget("shop", "SAST"))
	assert.Equal(t, "http://localhost:8080", plan.resolveTarget("shop", "DAST"))
	assert.Equal(t, "./literal", plan.resolveTarget("./literal", "SAST"))
}

func TestPolicyFromSettings(t *testing.T) {
	policy := PolicyFromSettings(config.SLASettings{Critical: 6 * time.Hour})

	window, ok := policy.Window(findings.SeverityCritical)
	require.True(t, ok)
	assert.Equal(t, 6*time.Hour, window)

	window, ok = policy.Window(findings.SeverityHigh)
	require.True(t, ok)
	assert.Equal(t, 7*24*time.Hour, window)

	_, ok = policy.Window(findings.SeverityInfo)
	assert.False(t, ok)
}

func TestLoadPlan_Example(t *testing.T) {
	plan, err := LoadPlan("../../configs/plan.example.yaml")
	require.NoError(t, err)

	require.Len(t, plan.Schedules, 4)
	assert.Equal(t, 72*time.Hour, plan.SLA.High)
	require.NotNil(t, plan.Reports)
	assert.Equal(t, "markdown", plan.Reports.Format)
	assert.Equal(t, "http://localhost:5000", plan.resolveTarget("api", scans.KindDAST))
	assert.Equal(t, "./deploy/terraform", plan.resolveTarget("infra", scans.KindIAC))
}
