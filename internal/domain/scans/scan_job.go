package scans

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Kind is the testing discipline a scanner belongs to
type Kind string

// Scan kinds
const (
	KindSAST Kind = "SAST"
	KindSCA  Kind = "SCA"
	KindDAST Kind = "DAST"
	KindIAC  Kind = "IAC"
)

// Status of a scan job
type Status string

// Scan job states
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Trigger tells what started a scan job
type Trigger string

// Scan triggers
const (
	TriggerManual   Trigger = "manual"
	TriggerSchedule Trigger = "schedule"
	TriggerImport   Trigger = "import"
)

// Sentinel errors
var (
	ErrNotFound          = errors.New("scan not found")
	ErrUnknownTool       = errors.New("unknown scanner tool")
	ErrThrottled         = errors.New("scan trigger throttled")
	ErrInvalidTransition = errors.New("invalid scan status transition")
	ErrInvalidReport     = errors.New("invalid tool report")
	ErrScheduleExists    = errors.New("schedule already exists")
	ErrInvalidTarget     = errors.New("invalid scan target")
	ErrImportOnly        = errors.New("tool only supports report imports")
)

// ValidateTarget rejects targets a tool would read as a command line flag.
func ValidateTarget(target string) error {
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	if strings.HasPrefix(target, "-") {
		return fmt.Errorf("%w: %q must not start with '-'", ErrInvalidTarget, target)
	}
	return nil
}

// ScanJob entity
type ScanJob struct {
	ID            string     `validate:"required,uuid4"`
	Tool          string     `validate:"required,min=1,max=50"`
	Kind          Kind       `validate:"required,oneof=SAST SCA DAST IAC"`
	Target        string     `validate:"required,min=1,max=1024,startsnotwith=-"`
	Status        Status     `validate:"required,oneof=queued running succeeded failed"`
	Trigger       Trigger    `validate:"required,oneof=manual schedule import"`
	ScheduleID    *string    `validate:"omitempty,uuid4"`
	QueuedAt      time.Time  `validate:"required"`
	StartedAt     *time.Time `validate:"omitempty"`
	FinishedAt    *time.Time `validate:"omitempty"`
	FindingCount  int        `validate:"min=0"`
	NewCount      int        `validate:"min=0"`
	ResolvedCount int        `validate:"min=0"`
	Error         string     `validate:"max=4096"`
}

// Validate for validating ScanJob struct
func (j *ScanJob) Validate() error {
	validate := validator.New()

	err := validate.Struct(j)
	if err != nil {
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

	return nil
}

// Start moves a queued job to running
func (j *ScanJob) Start(now time.Time) error {
	if j.Status != StatusQueued {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, StatusRunning)
	}
	j.Status = StatusRunning
	j.StartedAt = &now
	return nil
}

// Succeed moves a running job to succeeded
func (j *ScanJob) Succeed(now time.Time, total, created, resolved int) error {
	if j.Status != StatusRunning {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, StatusSucceeded)
	}
	j.Status = StatusSucceeded
	j.FinishedAt = &now
	j.FindingCount = total
	j.NewCount = created
	j.ResolvedCount = resolved
	return nil
}

// Fail moves a queued or running job to failed
func (j *ScanJob) Fail(now time.Time, cause error) error {
	if j.Status != StatusRunning && j.Status != StatusQueued {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, StatusFailed)
	}
	j.Status = StatusFailed
	j.FinishedAt = &now
	if cause != nil {
		msg := cause.Error()
		if len(msg) > 4096 {
			msg = msg[:4096]
		}
		j.Error = msg
	}
	return nil
}
