package scans

import (
	"errors"
	"fmt"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/pkg/validators"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// ReportTool is the pseudo tool name of schedules that generate reports instead of scans
const ReportTool = "report"

// Schedule entity describes a recurring scan or report
type Schedule struct {
	ID        string     `validate:"required,uuid4"`
	Name      string     `validate:"required,min=1,max=100"`
	Tool      string     `validate:"required,min=1,max=50"`
	Target    string     `validate:"required,min=1,max=1024,startsnotwith=-"`
	CronExpr  string     `validate:"required,cronExpr"`
	Enabled   bool
	CreatedAt time.Time  `validate:"required"`
	LastRunAt *time.Time `validate:"omitempty"`
	NextRunAt *time.Time `validate:"omitempty"`
}

// Validate for validating Schedule struct
func (s *Schedule) Validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("cronExpr", validators.CronExprValidation); err != nil {
		return fmt.Errorf("failed to register custom validator: %w", err)
	}

	err := validate.Struct(s)
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

// Next returns the first activation after from
func (s *Schedule) Next(from time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(s.CronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", s.CronExpr, err)
	}
	return sched.Next(from), nil
}
