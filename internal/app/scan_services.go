package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
	"github.com/google/uuid"
)

// scanService implements the ScanService interface
type scanService struct {
	registry      scans.ScannerRegistry
	scanRepo      scans.ScanRepository
	ingestService findings.IngestService
	throttle      scans.Throttle
	logger        logger.Logger
	now           func() time.Time

	// workers bounds concurrently running jobs
	workers chan struct{}
	wg      sync.WaitGroup

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewScanService creates a new instance of ScanService running at most workers jobs at once
func NewScanService(
	registry scans.ScannerRegistry,
	scanRepo scans.ScanRepository,
	ingestService findings.IngestService,
	throttle scans.Throttle,
	workers int,
	logger logger.Logger,
) (scans.ScanService, error) {
	if workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", workers)
	}
	return &scanService{
		registry:      registry,
		scanRepo:      scanRepo,
		ingestService: ingestService,
		throttle:      throttle,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		workers:       make(chan struct{}, workers),
		locks:         make(map[string]*sync.Mutex),
	}, nil
}

func throttleKey(tool, target string) string {
	return tool + "|" + target
}

// Trigger queues a scan of target with the named tool and runs it asynchronously.
func (s *scanService) Trigger(ctx context.Context, tool, target string, trigger scans.Trigger, scheduleID *string) (*scans.ScanJob, error) {
	scanner, ok := s.registry.Get(tool)
	if !ok {
		return nil, fmt.Errorf("%w: %s", scans.ErrUnknownTool, tool)
	}
	if !scans.Runnable(scanner) {
		return nil, fmt.Errorf("%w: %s", scans.ErrImportOnly, tool)
	}
	if err := scans.ValidateTarget(target); err != nil {
		return nil, err
	}
	if err := s.throttle.Allow(ctx, throttleKey(tool, target)); err != nil {
		return nil, err
	}

	job := &scans.ScanJob{
		ID:         uuid.New().String(),
		Tool:       tool,
		Kind:       scanner.Kind(),
		Target:     target,
		Status:     scans.StatusQueued,
		Trigger:    trigger,
		ScheduleID: scheduleID,
		QueuedAt:   s.now(),
	}
	if err := s.scanRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to queue scan: %w", err)
	}
	s.logger.Info("Queued ", tool, " scan ", job.ID, " of ", target)

	queued := *job
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.workers <- struct{}{}
		defer func() { <-s.workers }()

		// the request context ends with the HTTP call that queued the job
		if err := s.Run(context.Background(), &queued); err != nil {
			s.logger.Error("Scan ", queued.ID, " failed: ", err)
		}
	}()

	return job, nil
}

// Run executes a queued job synchronously. Findings of a failed run are discarded.
func (s *scanService) Run(ctx context.Context, job *scans.ScanJob) error {
	scanner, ok := s.registry.Get(job.Tool)
	if !ok {
		return s.fail(ctx, job, fmt.Errorf("%w: %s", scans.ErrUnknownTool, job.Tool))
	}

	if err := job.Start(s.now()); err != nil {
		return err
	}
	if err := s.scanRepo.UpdateByID(ctx, job); err != nil {
		return fmt.Errorf("failed to mark scan running: %w", err)
	}

	list, err := scanner.Scan(ctx, job.Target)
	if err != nil {
		return s.fail(ctx, job, err)
	}

	result, err := s.ingest(ctx, job, list, true)
	if err != nil {
		return s.fail(ctx, job, err)
	}

	if err := job.Succeed(s.now(), len(list), result.New+result.Reopened, result.AutoResolved); err != nil {
		return err
	}
	if err := s.scanRepo.UpdateByID(ctx, job); err != nil {
		return fmt.Errorf("failed to mark scan succeeded: %w", err)
	}

	s.logger.With("job", job.ID, "tool", job.Tool).Info("Scan succeeded with ", len(list), " findings")
	return nil
}

// Import ingests an existing tool report as a finished job. Imports never auto-resolve.
func (s *scanService) Import(ctx context.Context, tool, target string, report []byte) (*scans.ScanJob, error) {
	scanner, ok := s.registry.Get(tool)
	if !ok {
		return nil, fmt.Errorf("%w: %s", scans.ErrUnknownTool, tool)
	}
	if err := scans.ValidateTarget(target); err != nil {
		return nil, err
	}

	list, err := scanner.Parse(report)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scans.ErrInvalidReport, err)
	}

	now := s.now()
	job := &scans.ScanJob{
		ID:       uuid.New().String(),
		Tool:     tool,
		Kind:     scanner.Kind(),
		Target:   target,
		Status:   scans.StatusQueued,
		Trigger:  scans.TriggerImport,
		QueuedAt: now,
	}
	if err := job.Start(now); err != nil {
		return nil, err
	}
	if err := s.scanRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}

	result, err := s.ingest(ctx, job, list, false)
	if err != nil {
		return nil, s.fail(ctx, job, err)
	}

	if err := job.Succeed(s.now(), len(list), result.New+result.Reopened, 0); err != nil {
		return nil, err
	}
	if err := s.scanRepo.UpdateByID(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to finish import job: %w", err)
	}

	s.logger.Info("Imported ", len(list), " ", tool, " findings for ", target, " as job ", job.ID)
	return job, nil
}

// ingest serializes ingestion per tool and target so that auto-resolve sees a consistent snapshot
func (s *scanService) ingest(ctx context.Context, job *scans.ScanJob, list []*findings.Finding, autoResolve bool) (*findings.IngestResult, error) {
	lock := s.lockFor(throttleKey(job.Tool, job.Target))
	lock.Lock()
	defer lock.Unlock()

	return s.ingestService.Ingest(ctx, job.ID, job.Tool, job.Target, list, autoResolve)
}

func (s *scanService) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func (s *scanService) fail(ctx context.Context, job *scans.ScanJob, cause error) error {
	if err := job.Fail(s.now(), cause); err != nil {
		return fmt.Errorf("%v: %w", cause, err)
	}
	if err := s.scanRepo.UpdateByID(ctx, job); err != nil {
		return fmt.Errorf("failed to mark scan failed: %w", err)
	}
	return cause
}

// List retrieves scan jobs considering a query filter when set.
func (s *scanService) List(ctx context.Context, query *scans.ScanQuery) ([]*scans.ScanJob, error) {
	jobs, err := s.scanRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return jobs, nil
}

// GetByID retrieves a scan job by ID.
func (s *scanService) GetByID(ctx context.Context, jobID string) (*scans.ScanJob, error) {
	job, err := s.scanRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	return job, nil
}

// Tools lists the registered scanner names.
func (s *scanService) Tools() []string {
	return s.registry.Names()
}

// Wait blocks until all in-flight jobs are finished.
func (s *scanService) Wait() {
	s.wg.Wait()
}
