package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
	"github.com/MGTheTrain/scan-warden/internal/pkg/validators"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ReportScheduleName is the schedule created from the report cadence of a plan
const ReportScheduleName = "plan-report"

// Plan is the machine readable security testing plan
type Plan struct {
	Targets   []PlanTarget   `yaml:"targets" validate:"dive"`
	Schedules []PlanSchedule `yaml:"schedules" validate:"dive"`
	SLA       PlanSLA        `yaml:"sla"`
	Reports   *PlanReports   `yaml:"reports" validate:"omitempty"`
	Probe     *PlanProbe     `yaml:"probe" validate:"omitempty"`
}

// PlanTarget names a code path and the URL it is served on
type PlanTarget struct {
	Name string `yaml:"name" validate:"required,min=1,max=100"`
	Path string `yaml:"path" validate:"required_without=URL"`
	URL  string `yaml:"url" validate:"omitempty,url"`
}

// PlanSchedule is a recurring scan. Target is either a target name or a literal path or URL.
type PlanSchedule struct {
	Name    string `yaml:"name" validate:"required,min=1,max=100"`
	Tool    string `yaml:"tool" validate:"required,min=1,max=50"`
	Target  string `yaml:"target" validate:"required"`
	Cron    string `yaml:"cron" validate:"required,cronExpr"`
	Enabled *bool  `yaml:"enabled"`
}

// PlanSLA overrides remediation windows, zero keeps the configured window
type PlanSLA struct {
	Critical time.Duration `yaml:"critical" validate:"gte=0"`
	High     time.Duration `yaml:"high" validate:"gte=0"`
	Medium   time.Duration `yaml:"medium" validate:"gte=0"`
	Low      time.Duration `yaml:"low" validate:"gte=0"`
}

// PlanReports sets the report cadence
type PlanReports struct {
	Cadence string `yaml:"cadence" validate:"required,cronExpr"`
	Format  string `yaml:"format" validate:"required,oneof=json markdown sarif"`
}

// PlanProbe configures the inputs attacked by the probe suite
type PlanProbe struct {
	Params         []string `yaml:"params" validate:"dive,min=1"`
	ProtectedPaths []string `yaml:"protected_paths" validate:"dive,startswith=/"`
	LoginPath      string   `yaml:"login_path" validate:"omitempty,startswith=/"`
}

// LoadPlan reads and validates a plan file
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes and validates a YAML plan. Unknown keys are rejected.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks the plan fields and that schedule and target names are unique
func (p *Plan) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("cronExpr", validators.CronExprValidation); err != nil {
		return fmt.Errorf("failed to register custom validator: %w", err)
	}

	if err := validate.Struct(p); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Namespace(), fieldErr.Tag()))
			}
			return fmt.Errorf("validation failed: %v", messages)
		}
		return fmt.Errorf("validation error: %w", err)
	}

	targets := make(map[string]struct{}, len(p.Targets))
	for _, t := range p.Targets {
		if _, dup := targets[t.Name]; dup {
			return fmt.Errorf("duplicate target %q", t.Name)
		}
		targets[t.Name] = struct{}{}
	}
	names := make(map[string]struct{}, len(p.Schedules))
	for _, s := range p.Schedules {
		if s.Name == ReportScheduleName {
			return fmt.Errorf("schedule name %q is reserved", ReportScheduleName)
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("duplicate schedule %q", s.Name)
		}
		names[s.Name] = struct{}{}
	}
	return nil
}

// ApplyTo merges the SLA windows and probe inputs of the plan into cfg
func (p *Plan) ApplyTo(cfg *config.RestConfig) {
	if p.SLA.Critical > 0 {
		cfg.SLA.Critical = p.SLA.Critical
	}
	if p.SLA.High > 0 {
		cfg.SLA.High = p.SLA.High
	}
	if p.SLA.Medium > 0 {
		cfg.SLA.Medium = p.SLA.Medium
	}
	if p.SLA.Low > 0 {
		cfg.SLA.Low = p.SLA.Low
	}
	if p.Probe != nil {
		cfg.Scanners.Probe.Params = p.Probe.Params
		cfg.Scanners.Probe.ProtectedPaths = p.Probe.ProtectedPaths
		cfg.Scanners.Probe.LoginPath = p.Probe.LoginPath
	}
}

// resolveTarget maps a target name onto its URL for DAST tools and its path otherwise
func (p *Plan) resolveTarget(name string, kind scans.Kind) string {
	for _, t := range p.Targets {
		if t.Name != name {
			continue
		}
		if kind == scans.KindDAST && t.URL != "" {
			return t.URL
		}
		if t.Path != "" {
			return t.Path
		}
		return t.URL
	}
	return name
}

// PolicyFromSettings builds the SLA policy, zero windows keep the defaults
func PolicyFromSettings(settings config.SLASettings) *sla.Policy {
	policy := sla.DefaultPolicy()
	overrideWindows(policy, settings.Critical, settings.High, settings.Medium, settings.Low)
	return policy
}

func overrideWindows(policy *sla.Policy, critical, high, medium, low time.Duration) {
	for sev, window := range map[findings.Severity]time.Duration{
		findings.SeverityCritical: critical,
		findings.SeverityHigh:     high,
		findings.SeverityMedium:   medium,
		findings.SeverityLow:      low,
	} {
		if window > 0 {
			// known severity with a positive window
			_ = policy.Override(sev, window)
		}
	}
}

// SyncPlan upserts the plan schedules by name, applies the SLA overrides to
// policy and registers the report cadence.
func SyncPlan(ctx context.Context, plan *Plan, scheduleService scans.ScheduleService, registry scans.ScannerRegistry, policy *sla.Policy, logger logger.Logger) error {
	overrideWindows(policy, plan.SLA.Critical, plan.SLA.High, plan.SLA.Medium, plan.SLA.Low)

	for _, ps := range plan.Schedules {
		scanner, ok := registry.Get(ps.Tool)
		if !ok {
			return fmt.Errorf("schedule %s: %w: %s", ps.Name, scans.ErrUnknownTool, ps.Tool)
		}
		enabled := ps.Enabled == nil || *ps.Enabled
		target := plan.resolveTarget(ps.Target, scanner.Kind())

		if _, err := scheduleService.Upsert(ctx, ps.Name, ps.Tool, target, ps.Cron, enabled); err != nil {
			return fmt.Errorf("failed to sync schedule %s: %w", ps.Name, err)
		}
	}

	if plan.Reports != nil {
		if _, err := scheduleService.Upsert(ctx, ReportScheduleName, scans.ReportTool, plan.Reports.Format, plan.Reports.Cadence, true); err != nil {
			return fmt.Errorf("failed to sync report cadence: %w", err)
		}
	}

	logger.Info("Synced plan with ", len(plan.Schedules), " schedules")
	return nil
}
