package reports

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Report formats
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatSARIF    = "sarif"
)

// ErrNotFound is returned when a report does not exist
var ErrNotFound = errors.New("report not found")

// ErrUnsupportedFormat is returned for unknown report formats
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ErrSignatureMismatch is returned when an archived report fails verification
var ErrSignatureMismatch = errors.New("report signature mismatch")

// FileExtension returns the file extension used when archiving a format
func FileExtension(format string) (string, error) {
	switch format {
	case FormatJSON:
		return ".json", nil
	case FormatMarkdown:
		return ".md", nil
	case FormatSARIF:
		return ".sarif", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ReportMeta entity describes an archived, signed report
type ReportMeta struct {
	ID           string    `validate:"required,uuid4"`
	Format       string    `validate:"required,oneof=json markdown sarif"`
	Name         string    `validate:"required,min=1,max=255"`
	Size         int64     `validate:"required,min=1"`
	SHA256       string    `validate:"required,len=64,hexadecimal"`
	Signature    string    `validate:"required,hexadecimal"`
	FindingCount int       `validate:"min=0"`
	CreatedAt    time.Time `validate:"required"`
}

// Validate for validating ReportMeta struct
func (r *ReportMeta) Validate() error {
	validate := validator.New()

	err := validate.Struct(r)
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
