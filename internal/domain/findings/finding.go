package findings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Severity is the normalized severity of a finding
type Severity string

// Severity levels ordered from most to least severe
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Severities lists all severities from most to least severe
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// Rank returns a comparable weight, higher means more severe
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseSeverity maps tool specific severity labels onto a Severity.
// Unknown labels map to SeverityInfo.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return SeverityCritical
	case "HIGH", "ERROR":
		return SeverityHigh
	case "MEDIUM", "MODERATE", "WARNING":
		return SeverityMedium
	case "LOW":
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// SeverityFromScore returns the CVSS v3 qualitative rating for a base score
func SeverityFromScore(score float64) Severity {
	switch {
	case score >= 9.0:
		return SeverityCritical
	case score >= 7.0:
		return SeverityHigh
	case score >= 4.0:
		return SeverityMedium
	case score > 0:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// Category groups findings by the kind of testing that produced them
type Category string

// Testing categories
const (
	CategorySAST Category = "SAST"
	CategoryDAST Category = "DAST"
	CategorySCA  Category = "SCA"
	CategoryIAC  Category = "IAC"
)

// Status is the remediation state of a finding
type Status string

// Finding states
const (
	StatusOpen          Status = "open"
	StatusResolved      Status = "resolved"
	StatusAccepted      Status = "accepted"
	StatusFalsePositive Status = "false_positive"
)

// Finding entity
type Finding struct {
	ID            string     `json:"id" validate:"required,uuid4"`
	ScanID        string     `json:"scan_id" validate:"required,uuid4"`
	Tool          string     `json:"tool" validate:"required,min=1,max=50"`
	Category      Category   `json:"category" validate:"required,oneof=SAST DAST SCA IAC"`
	RuleID        string     `json:"rule_id" validate:"required,min=1,max=255"`
	Title         string     `json:"title" validate:"required,min=1,max=512"`
	Message       string     `json:"message,omitempty" validate:"max=8192"`
	Severity      Severity   `json:"severity" validate:"required,oneof=CRITICAL HIGH MEDIUM LOW INFO"`
	CVSSVector    string     `json:"cvss_vector,omitempty" validate:"max=255"`
	CVSSScore     float64    `json:"cvss_score" validate:"min=0,max=10"`
	CWE           []string   `json:"cwe,omitempty" validate:"dive,min=1,max=20"`
	Target        string     `json:"target" validate:"required,min=1,max=1024"`
	FilePath      string     `json:"file_path,omitempty" validate:"max=1024"`
	StartLine     int        `json:"start_line" validate:"min=0"`
	EndLine       int        `json:"end_line" validate:"min=0"`
	HelpURI       string     `json:"help_uri,omitempty" validate:"max=2048"`
	Fingerprint   string     `json:"fingerprint" validate:"required,len=64,hexadecimal"`
	Status        Status     `json:"status" validate:"required,oneof=open resolved accepted false_positive"`
	FirstSeen     time.Time  `json:"first_seen" validate:"required"`
	LastSeen      time.Time  `json:"last_seen" validate:"required"`
	DueAt         *time.Time `json:"due_at,omitempty" validate:"omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty" validate:"omitempty"`
	Justification string     `json:"justification,omitempty" validate:"max=2048"`
}

// Validate for validating Finding struct
func (f *Finding) Validate() error {
	validate := validator.New()

	err := validate.Struct(f)
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

// IsOverdue reports whether an open finding has passed its due date
func (f *Finding) IsOverdue(now time.Time) bool {
	return f.Status == StatusOpen && f.DueAt != nil && now.After(*f.DueAt)
}
