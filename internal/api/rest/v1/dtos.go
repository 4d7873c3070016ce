package v1

import (
	"errors"
	"fmt"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/pkg/validators"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is returned on every failed request
type ErrorResponse struct {
	Message string `json:"message"`
}

// InfoResponse carries a plain confirmation
type InfoResponse struct {
	Message string `json:"message"`
}

func validationMessage(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldErr := range validationErrors {
			messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
		}
		return fmt.Errorf("validation failed: %v", messages)
	}
	return fmt.Errorf("validation error: %w", err)
}

// TriggerScanRequest starts a scan of target with tool
type TriggerScanRequest struct {
	Tool   string `json:"tool" validate:"required,min=1,max=50"`
	Target string `json:"target" validate:"required,min=1,max=1024,startsnotwith=-"`
}

// Validate for validating TriggerScanRequest struct
func (r *TriggerScanRequest) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return validationMessage(err)
	}
	return nil
}

// ImportScanRequest holds the form fields of a report import
type ImportScanRequest struct {
	Tool   string `form:"tool" validate:"required,min=1,max=50"`
	Target string `form:"target" validate:"required,min=1,max=1024,startsnotwith=-"`
}

// Validate for validating ImportScanRequest struct
func (r *ImportScanRequest) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return validationMessage(err)
	}
	return nil
}

// UpdateFindingRequest moves a finding through its lifecycle
type UpdateFindingRequest struct {
	Status        string `json:"status" validate:"required,oneof=open resolved accepted false_positive"`
	Justification string `json:"justification" validate:"max=2048"`
}

// Validate for validating UpdateFindingRequest struct
func (r *UpdateFindingRequest) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return validationMessage(err)
	}
	return nil
}

// GenerateReportRequest selects the format and optionally narrows the findings covered
type GenerateReportRequest struct {
	Format   string `json:"format" validate:"required,oneof=json markdown sarif"`
	Tool     string `json:"tool,omitempty" validate:"omitempty,min=1,max=50"`
	Severity string `json:"severity,omitempty" validate:"omitempty,oneof=CRITICAL HIGH MEDIUM LOW INFO"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=open resolved accepted false_positive"`
	Target   string `json:"target,omitempty" validate:"omitempty,max=1024"`
}

// Validate for validating GenerateReportRequest struct
func (r *GenerateReportRequest) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return validationMessage(err)
	}
	return nil
}

// Query returns the finding filter or nil when the report covers everything
func (r *GenerateReportRequest) Query() *findings.FindingQuery {
	if r.Tool == "" && r.Severity == "" && r.Status == "" && r.Target == "" {
		return nil
	}
	return &findings.FindingQuery{Tool: r.Tool, Severity: r.Severity, Status: r.Status, Target: r.Target}
}

// CreateScheduleRequest registers a recurring scan or report
type CreateScheduleRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Tool    string `json:"tool" validate:"required,min=1,max=50"`
	Target  string `json:"target" validate:"required,min=1,max=1024,startsnotwith=-"`
	Cron    string `json:"cron" validate:"required,cronExpr"`
	Enabled *bool  `json:"enabled"`
}

// Validate for validating CreateScheduleRequest struct
func (r *CreateScheduleRequest) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("cronExpr", validators.CronExprValidation); err != nil {
		return fmt.Errorf("failed to register custom validator: %w", err)
	}
	if err := validate.Struct(r); err != nil {
		return validationMessage(err)
	}
	return nil
}

// IsEnabled defaults to true
func (r *CreateScheduleRequest) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// ScanJobResponse is the API view of a scan job
type ScanJobResponse struct {
	ID            string     `json:"id"`
	Tool          string     `json:"tool"`
	Kind          string     `json:"kind"`
	Target        string     `json:"target"`
	Status        string     `json:"status"`
	Trigger       string     `json:"trigger"`
	ScheduleID    *string    `json:"schedule_id,omitempty"`
	QueuedAt      time.Time  `json:"queued_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	FindingCount  int        `json:"finding_count"`
	NewCount      int        `json:"new_count"`
	ResolvedCount int        `json:"resolved_count"`
	Error         string     `json:"error,omitempty"`
}

func toScanJobResponse(j *scans.ScanJob) ScanJobResponse {
	return ScanJobResponse{
		ID:            j.ID,
		Tool:          j.Tool,
		Kind:          string(j.Kind),
		Target:        j.Target,
		Status:        string(j.Status),
		Trigger:       string(j.Trigger),
		ScheduleID:    j.ScheduleID,
		QueuedAt:      j.QueuedAt,
		StartedAt:     j.StartedAt,
		FinishedAt:    j.FinishedAt,
		FindingCount:  j.FindingCount,
		NewCount:      j.NewCount,
		ResolvedCount: j.ResolvedCount,
		Error:         j.Error,
	}
}

// SeverityCountResponse is one cell of the severity x status matrix
type SeverityCountResponse struct {
	Severity string `json:"severity"`
	Status   string `json:"status"`
	Count    int64  `json:"count"`
}

// ReportMetaResponse is the API view of an archived report
type ReportMetaResponse struct {
	ID           string    `json:"id"`
	Format       string    `json:"format"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	SHA256       string    `json:"sha256"`
	Signature    string    `json:"signature"`
	FindingCount int       `json:"finding_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func toReportMetaResponse(m *reports.ReportMeta) ReportMetaResponse {
	return ReportMetaResponse{
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

// VerifyResponse reports the outcome of a signature check
type VerifyResponse struct {
	ID       string `json:"id"`
	Verified bool   `json:"verified"`
	Message  string `json:"message,omitempty"`
}

// ScheduleResponse is the API view of a schedule
type ScheduleResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Tool      string     `json:"tool"`
	Target    string     `json:"target"`
	Cron      string     `json:"cron"`
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"created_at"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
}

func toScheduleResponse(s *scans.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:        s.ID,
		Name:      s.Name,
		Tool:      s.Tool,
		Target:    s.Target,
		Cron:      s.CronExpr,
		Enabled:   s.Enabled,
		CreatedAt: s.CreatedAt,
		LastRunAt: s.LastRunAt,
		NextRunAt: s.NextRunAt,
	}
}

// ToolsResponse lists the registered scanners
type ToolsResponse struct {
	Tools []string `json:"tools"`
}
