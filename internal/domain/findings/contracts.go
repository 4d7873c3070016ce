package findings

import (
	"context"
)

// SeverityStatusCount is one cell of the severity x status matrix
type SeverityStatusCount struct {
	Severity Severity
	Status   Status
	Count    int64
}

// IngestResult summarizes how a batch of scanner findings changed the tracked set
type IngestResult struct {
	New          int
	Updated      int
	Reopened     int
	AutoResolved int
}

// FindingRepository defines the interface for Finding-related operations
type FindingRepository interface {
	// Create adds a new Finding to the database
	Create(ctx context.Context, finding *Finding) error
	// List lists Findings in the database with optional filter
	List(ctx context.Context, query *FindingQuery) ([]*Finding, error)
	// GetByID retrieves a Finding by ID
	GetByID(ctx context.Context, findingID string) (*Finding, error)
	// GetByFingerprint retrieves a Finding by its deduplication fingerprint
	GetByFingerprint(ctx context.Context, fingerprint string) (*Finding, error)
	// UpdateByID updates a Finding by ID
	UpdateByID(ctx context.Context, finding *Finding) error
	// ListOpenByToolTarget lists open findings reported by a tool for a target
	ListOpenByToolTarget(ctx context.Context, tool, target string) ([]*Finding, error)
	// CountBySeverityStatus aggregates the number of findings per severity and status
	CountBySeverityStatus(ctx context.Context) ([]SeverityStatusCount, error)
}

// FindingService defines methods for reading findings and moving them through their lifecycle.
type FindingService interface {
	// List retrieves findings considering a query filter when set.
	List(ctx context.Context, query *FindingQuery) ([]*Finding, error)

	// GetByID retrieves a finding by ID.
	GetByID(ctx context.Context, findingID string) (*Finding, error)

	// Counts returns the number of findings per severity and status.
	Counts(ctx context.Context) ([]SeverityStatusCount, error)

	// UpdateStatus applies a lifecycle transition to a finding.
	// It returns the updated finding or ErrInvalidTransition.
	UpdateStatus(ctx context.Context, findingID string, status Status, justification string) (*Finding, error)
}

// IngestService merges scanner output into the tracked findings
type IngestService interface {
	// Ingest deduplicates findings by fingerprint, reopens regressions and
	// resolves open findings of the same tool and target that are no longer reported when autoResolve is set.
	Ingest(ctx context.Context, scanID, tool, target string, batch []*Finding, autoResolve bool) (*IngestResult, error)
}
