package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
	"github.com/google/uuid"
)

// scheduleService implements the ScheduleService interface
type scheduleService struct {
	scheduleRepo scans.ScheduleRepository
	registry     scans.ScannerRegistry
	scheduler    scans.Scheduler
	logger       logger.Logger
	now          func() time.Time
}

// NewScheduleService creates a new instance of ScheduleService. scheduler may be nil when schedules are only persisted.
func NewScheduleService(scheduleRepo scans.ScheduleRepository, registry scans.ScannerRegistry, scheduler scans.Scheduler, logger logger.Logger) (scans.ScheduleService, error) {
	return &scheduleService{
		scheduleRepo: scheduleRepo,
		registry:     registry,
		scheduler:    scheduler,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// checkTarget rejects unknown or import-only tools, flag-like targets and report formats that do not exist
func (s *scheduleService) checkTarget(tool, target string) error {
	if tool == scans.ReportTool {
		_, err := reports.FileExtension(target)
		return err
	}
	scanner, ok := s.registry.Get(tool)
	if !ok {
		return fmt.Errorf("%w: %s", scans.ErrUnknownTool, tool)
	}
	if !scans.Runnable(scanner) {
		return fmt.Errorf("%w: %s", scans.ErrImportOnly, tool)
	}
	return scans.ValidateTarget(target)
}

// Create validates and persists a schedule, registering it with the scheduler when enabled.
func (s *scheduleService) Create(ctx context.Context, name, tool, target, cronExpr string, enabled bool) (*scans.Schedule, error) {
	if err := s.checkTarget(tool, target); err != nil {
		return nil, err
	}

	if _, err := s.scheduleRepo.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: %s", scans.ErrScheduleExists, name)
	} else if !errors.Is(err, scans.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up schedule: %w", err)
	}

	schedule := &scans.Schedule{
		ID:        uuid.New().String(),
		Name:      name,
		Tool:      tool,
		Target:    target,
		CronExpr:  cronExpr,
		Enabled:   enabled,
		CreatedAt: s.now(),
	}
	if err := s.save(ctx, schedule, true); err != nil {
		return nil, err
	}

	s.logger.Info("Created schedule ", name, " for ", tool, " on ", target)
	return schedule, nil
}

// Upsert creates or replaces a schedule identified by name.
func (s *scheduleService) Upsert(ctx context.Context, name, tool, target, cronExpr string, enabled bool) (*scans.Schedule, error) {
	if err := s.checkTarget(tool, target); err != nil {
		return nil, err
	}

	schedule, err := s.scheduleRepo.GetByName(ctx, name)
	if errors.Is(err, scans.ErrNotFound) {
		return s.Create(ctx, name, tool, target, cronExpr, enabled)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up schedule: %w", err)
	}

	schedule.Tool = tool
	schedule.Target = target
	schedule.CronExpr = cronExpr
	schedule.Enabled = enabled
	if err := s.save(ctx, schedule, false); err != nil {
		return nil, err
	}

	s.logger.Info("Updated schedule ", name)
	return schedule, nil
}

func (s *scheduleService) save(ctx context.Context, schedule *scans.Schedule, create bool) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	schedule.NextRunAt = nil
	if schedule.Enabled {
		next, err := schedule.Next(s.now())
		if err != nil {
			return err
		}
		schedule.NextRunAt = &next
	}

	var err error
	if create {
		err = s.scheduleRepo.Create(ctx, schedule)
	} else {
		err = s.scheduleRepo.UpdateByID(ctx, schedule)
	}
	if err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}

	if s.scheduler != nil {
		if err := s.scheduler.Upsert(schedule); err != nil {
			return fmt.Errorf("failed to register schedule: %w", err)
		}
	}
	return nil
}

// List retrieves all schedules.
func (s *scheduleService) List(ctx context.Context) ([]*scans.Schedule, error) {
	list, err := s.scheduleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return list, nil
}

// DeleteByID removes a schedule and unregisters it.
func (s *scheduleService) DeleteByID(ctx context.Context, scheduleID string) error {
	if err := s.scheduleRepo.DeleteByID(ctx, scheduleID); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if s.scheduler != nil {
		s.scheduler.Remove(scheduleID)
	}

	s.logger.Info("Deleted schedule ", scheduleID)
	return nil
}
