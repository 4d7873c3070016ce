package findings

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FindingQuery filters, sorts and paginates findings
type FindingQuery struct {
	Tool      string `validate:"omitempty,min=1,max=50"`
	Category  string `validate:"omitempty,oneof=SAST DAST SCA IAC"`
	Severity  string `validate:"omitempty,oneof=CRITICAL HIGH MEDIUM LOW INFO"`
	Status    string `validate:"omitempty,oneof=open resolved accepted false_positive"`
	Target    string `validate:"omitempty,max=1024"`
	Overdue   bool
	Limit     int    `validate:"omitempty,gt=0"`
	Offset    int    `validate:"omitempty,gte=0"`
	SortBy    string `validate:"omitempty,oneof=first_seen last_seen due_at cvss_score severity"`
	SortOrder string `validate:"omitempty,oneof=asc desc"`
}

// NewFindingQuery creates a FindingQuery with default values
func NewFindingQuery() *FindingQuery {
	return &FindingQuery{}
}

// Validate validates the FindingQuery struct based on the defined rules
func (q *FindingQuery) Validate() error {
	validate := validator.New()

	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
