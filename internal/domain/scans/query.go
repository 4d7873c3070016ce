package scans

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ScanQuery filters, sorts and paginates scan jobs
type ScanQuery struct {
	Tool      string `validate:"omitempty,min=1,max=50"`
	Kind      string `validate:"omitempty,oneof=SAST SCA DAST IAC"`
	Status    string `validate:"omitempty,oneof=queued running succeeded failed"`
	Target    string `validate:"omitempty,max=1024"`
	Limit     int    `validate:"omitempty,gt=0"`
	Offset    int    `validate:"omitempty,gte=0"`
	SortBy    string `validate:"omitempty,oneof=queued_at started_at finished_at finding_count"`
	SortOrder string `validate:"omitempty,oneof=asc desc"`
}

// NewScanQuery creates a ScanQuery with default values
func NewScanQuery() *ScanQuery {
	return &ScanQuery{}
}

// Validate validates the ScanQuery struct based on the defined rules
func (q *ScanQuery) Validate() error {
	validate := validator.New()

	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
