// Package scheduler fires recurring scans and reports on cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ScanTrigger queues scans
type ScanTrigger interface {
	Trigger(ctx context.Context, tool, target string, trigger scans.Trigger, scheduleID *string) (*scans.ScanJob, error)
}

// ReportGenerator produces archived reports
type ReportGenerator interface {
	Generate(ctx context.Context, format string, query *findings.FindingQuery) (*reports.ReportMeta, error)
}

// CronScheduler implements scans.Scheduler on robfig/cron
type CronScheduler struct {
	cron     *cron.Cron
	scans    ScanTrigger
	reports  ReportGenerator
	repo     scans.ScheduleRepository
	logger   logger.Logger
	fireTime time.Duration

	mu      sync.Mutex
	entries map[string]cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc
}

// defaultFireTimeout bounds a single fire, which only queues work
const defaultFireTimeout = time.Minute

// NewCronScheduler creates a stopped scheduler. reportGenerator may be nil when report schedules are not used.
func NewCronScheduler(scanTrigger ScanTrigger, reportGenerator ReportGenerator, repo scans.ScheduleRepository, logger logger.Logger) *CronScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cl := &cronLogger{logger: logger}
	return &CronScheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		scans:    scanTrigger,
		reports:  reportGenerator,
		repo:     repo,
		logger:   logger,
		fireTime: defaultFireTimeout,
		entries:  make(map[string]cron.EntryID),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers all enabled schedules and starts the cron loop
func (s *CronScheduler) Start(ctx context.Context) error {
	list, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schedules: %w", err)
	}
	for _, sched := range list {
		if err := s.Upsert(sched); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("Scheduler started with ", s.Len(), " active schedules")
	return nil
}

// Stop halts the cron loop and waits for running callbacks or ctx
func (s *CronScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	defer s.cancel()

	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler did not stop in time: %w", ctx.Err())
	}
}

// Upsert replaces the cron entry of schedule. Disabled schedules are only removed.
func (s *CronScheduler) Upsert(schedule *scans.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(schedule.ID)
	if !schedule.Enabled {
		return nil
	}

	scheduleID := schedule.ID
	entryID, err := s.cron.AddFunc(schedule.CronExpr, func() {
		s.fire(scheduleID)
	})
	if err != nil {
		return fmt.Errorf("failed to register schedule %s: %w", schedule.Name, err)
	}
	s.entries[scheduleID] = entryID

	s.logger.Info("Schedule ", schedule.Name, " registered (", schedule.CronExpr, ")")
	return nil
}

// Remove unregisters a schedule, unknown IDs are ignored
func (s *CronScheduler) Remove(scheduleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(scheduleID)
}

func (s *CronScheduler) removeLocked(scheduleID string) {
	if entryID, ok := s.entries[scheduleID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, scheduleID)
	}
}

// Len returns the number of registered schedules
func (s *CronScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// fire runs one activation. The schedule is reloaded so that edits since registration apply.
func (s *CronScheduler) fire(scheduleID string) {
	ctx, cancel := context.WithTimeout(s.ctx, s.fireTime)
	defer cancel()

	schedule, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		s.logger.Error("Failed to load schedule ", scheduleID, ": ", err)
		return
	}
	if !schedule.Enabled {
		return
	}

	if schedule.Tool == scans.ReportTool {
		if s.reports == nil {
			s.logger.Error("Schedule ", schedule.Name, " generates reports but no report generator is configured")
		} else if meta, err := s.reports.Generate(ctx, schedule.Target, nil); err != nil {
			s.logger.Error("Scheduled report ", schedule.Name, " failed: ", err)
		} else {
			s.logger.Info("Scheduled report ", schedule.Name, " generated ", meta.Name)
		}
	} else {
		if job, err := s.scans.Trigger(ctx, schedule.Tool, schedule.Target, scans.TriggerSchedule, &schedule.ID); err != nil {
			s.logger.Error("Scheduled scan ", schedule.Name, " failed: ", err)
		} else {
			s.logger.Info("Scheduled scan ", schedule.Name, " queued job ", job.ID)
		}
	}

	now := time.Now().UTC()
	schedule.LastRunAt = &now
	if next, err := schedule.Next(now); err == nil {
		schedule.NextRunAt = &next
	}
	if err := s.repo.UpdateByID(ctx, schedule); err != nil {
		s.logger.Error("Failed to update schedule ", schedule.Name, ": ", err)
	}
}

// cronLogger adapts logger.Logger to cron.Logger
type cronLogger struct {
	logger logger.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(append([]interface{}{"cron: ", msg, " "}, keysAndValues...)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(append([]interface{}{"cron: ", msg, ": ", err, " "}, keysAndValues...)...)
}
