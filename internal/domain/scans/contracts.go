package scans

import (
	"context"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

// ScanService defines methods for triggering, importing and inspecting scan jobs.
type ScanService interface {
	// Trigger queues a scan of target with the named tool and runs it asynchronously.
	// It returns the queued job, ErrUnknownTool or ErrThrottled.
	Trigger(ctx context.Context, tool, target string, trigger Trigger, scheduleID *string) (*ScanJob, error)

	// Run executes a queued job synchronously and records its outcome.
	Run(ctx context.Context, job *ScanJob) error

	// Import ingests an existing tool report as a finished job.
	Import(ctx context.Context, tool, target string, report []byte) (*ScanJob, error)

	// List retrieves scan jobs considering a query filter when set.
	List(ctx context.Context, query *ScanQuery) ([]*ScanJob, error)

	// GetByID retrieves a scan job by ID.
	GetByID(ctx context.Context, jobID string) (*ScanJob, error)

	// Tools lists the registered scanner names.
	Tools() []string

	// Wait blocks until all in-flight jobs are finished.
	Wait()
}

// ScheduleService defines methods for managing recurring scans.
type ScheduleService interface {
	// Create validates and persists a schedule, registering it with the scheduler when enabled.
	Create(ctx context.Context, name, tool, target, cronExpr string, enabled bool) (*Schedule, error)

	// Upsert creates or replaces a schedule identified by name.
	Upsert(ctx context.Context, name, tool, target, cronExpr string, enabled bool) (*Schedule, error)

	// List retrieves all schedules.
	List(ctx context.Context) ([]*Schedule, error)

	// DeleteByID removes a schedule and unregisters it.
	DeleteByID(ctx context.Context, scheduleID string) error
}

// ScanRepository defines the interface for ScanJob-related operations
type ScanRepository interface {
	Create(ctx context.Context, job *ScanJob) error
	List(ctx context.Context, query *ScanQuery) ([]*ScanJob, error)
	GetByID(ctx context.Context, jobID string) (*ScanJob, error)
	UpdateByID(ctx context.Context, job *ScanJob) error
}

// ScheduleRepository defines the interface for Schedule-related operations
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *Schedule) error
	List(ctx context.Context) ([]*Schedule, error)
	GetByID(ctx context.Context, scheduleID string) (*Schedule, error)
	GetByName(ctx context.Context, name string) (*Schedule, error)
	UpdateByID(ctx context.Context, schedule *Schedule) error
	DeleteByID(ctx context.Context, scheduleID string) error
}

// Scanner runs one security tool and turns its report into findings
type Scanner interface {
	Name() string
	Kind() Kind
	// Scan executes the tool against the target and returns the parsed findings.
	Scan(ctx context.Context, target string) ([]*findings.Finding, error)
	// Parse converts a raw tool report into findings.
	Parse(report []byte) ([]*findings.Finding, error)
}

// ImportOnly is implemented by scanners that parse reports but cannot run the tool
type ImportOnly interface {
	ImportOnly() bool
}

// Runnable reports whether s can execute scans itself.
func Runnable(s Scanner) bool {
	only, ok := s.(ImportOnly)
	return !ok || !only.ImportOnly()
}

// ScannerRegistry resolves scanners by name
type ScannerRegistry interface {
	Get(name string) (Scanner, bool)
	Names() []string
}

// Throttle limits how often a key may trigger a scan
type Throttle interface {
	// Allow returns ErrThrottled once the key exceeded its budget for the current window.
	Allow(ctx context.Context, key string) error
}

// Scheduler registers cron entries for schedules
type Scheduler interface {
	Upsert(schedule *Schedule) error
	Remove(scheduleID string)
}
