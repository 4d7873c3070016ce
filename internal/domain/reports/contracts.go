package reports

import (
	"context"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
)

// ReportService defines methods for generating, archiving and verifying reports.
type ReportService interface {
	// Summary aggregates the current findings.
	Summary(ctx context.Context) (*Summary, error)

	// SLA evaluates remediation deadlines over the current findings.
	SLA(ctx context.Context) (*sla.Report, error)

	// Generate renders a report in the given format, signs it and archives it.
	Generate(ctx context.Context, format string, query *findings.FindingQuery) (*ReportMeta, error)

	// List retrieves all report metadata.
	List(ctx context.Context) ([]*ReportMeta, error)

	// GetByID retrieves report metadata by ID.
	GetByID(ctx context.Context, reportID string) (*ReportMeta, error)

	// Download returns the archived report content.
	Download(ctx context.Context, reportID string) ([]byte, error)

	// Verify re-hashes the archived report and checks its signature.
	Verify(ctx context.Context, reportID string) error

	// DeleteByID removes the archived report and its metadata.
	DeleteByID(ctx context.Context, reportID string) error
}

// ReportRepository defines the interface for ReportMeta-related operations
type ReportRepository interface {
	Create(ctx context.Context, report *ReportMeta) error
	List(ctx context.Context) ([]*ReportMeta, error)
	GetByID(ctx context.Context, reportID string) (*ReportMeta, error)
	DeleteByID(ctx context.Context, reportID string) error
}

// ReportConnector stores report artifacts.
// Implementations exist for the local filesystem and Azure Blob Storage.
type ReportConnector interface {
	// Upload stores data under name.
	Upload(ctx context.Context, name string, data []byte) error

	// Download retrieves the data stored under name.
	Download(ctx context.Context, name string) ([]byte, error)

	// Delete removes the data stored under name.
	Delete(ctx context.Context, name string) error
}

// Renderer turns a summary and findings into a report document
type Renderer interface {
	Render(format string, summary *Summary, list []*findings.Finding) ([]byte, error)
}

// Signer signs and verifies report digests
type Signer interface {
	Sign(message []byte) ([]byte, error)
	Verify(message, signature []byte) (bool, error)
}
