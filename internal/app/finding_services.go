package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
)

// findingService implements the FindingService interface
type findingService struct {
	findingRepo findings.FindingRepository
	policy      *sla.Policy
	logger      logger.Logger
	now         func() time.Time
}

// NewFindingService creates a new instance of FindingService
func NewFindingService(findingRepo findings.FindingRepository, policy *sla.Policy, logger logger.Logger) (findings.FindingService, error) {
	if policy == nil {
		return nil, fmt.Errorf("finding service needs an SLA policy")
	}
	return &findingService{
		findingRepo: findingRepo,
		policy:      policy,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// List retrieves findings considering a query filter when set.
func (s *findingService) List(ctx context.Context, query *findings.FindingQuery) ([]*findings.Finding, error) {
	list, err := s.findingRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	return list, nil
}

// GetByID retrieves a finding by ID.
func (s *findingService) GetByID(ctx context.Context, findingID string) (*findings.Finding, error) {
	f, err := s.findingRepo.GetByID(ctx, findingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get finding: %w", err)
	}
	return f, nil
}

// Counts returns the number of findings per severity and status.
func (s *findingService) Counts(ctx context.Context) ([]findings.SeverityStatusCount, error) {
	counts, err := s.findingRepo.CountBySeverityStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count findings: %w", err)
	}
	return counts, nil
}

// UpdateStatus applies a lifecycle transition to a finding. Reopening restarts its SLA window.
func (s *findingService) UpdateStatus(ctx context.Context, findingID string, status findings.Status, justification string) (*findings.Finding, error) {
	f, err := s.findingRepo.GetByID(ctx, findingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get finding: %w", err)
	}

	from := f.Status
	now := s.now()
	if err := findings.Transition(f, status, justification, now); err != nil {
		return nil, err
	}
	if status == findings.StatusOpen {
		f.DueAt = s.policy.DueAt(f.Severity, now)
	}

	if err := s.findingRepo.UpdateByID(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to update finding: %w", err)
	}

	s.logger.Info("Finding ", f.ID, " moved from ", from, " to ", status)
	return f, nil
}
