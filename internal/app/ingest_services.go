package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
	"github.com/google/uuid"
)

// ingestService implements the IngestService interface
type ingestService struct {
	findingRepo findings.FindingRepository
	policy      *sla.Policy
	logger      logger.Logger
	now         func() time.Time
}

// NewIngestService creates a new instance of IngestService
func NewIngestService(findingRepo findings.FindingRepository, policy *sla.Policy, logger logger.Logger) (findings.IngestService, error) {
	return &ingestService{
		findingRepo: findingRepo,
		policy:      policy,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Ingest merges batch into the tracked findings. Findings that fail validation are skipped with a warning.
func (s *ingestService) Ingest(ctx context.Context, scanID, tool, target string, batch []*findings.Finding, autoResolve bool) (*findings.IngestResult, error) {
	now := s.now()
	result := &findings.IngestResult{}
	seen := make(map[string]struct{}, len(batch))

	for _, f := range batch {
		if f == nil {
			continue
		}
		if f.Tool == "" {
			f.Tool = tool
		}
		f.Target = target
		f.FilePath = findings.NormalizePath(f.FilePath)
		f.Fingerprint = findings.Fingerprint(f.Tool, f.RuleID, target, f.FilePath, f.Title)

		// some tools repeat an issue per dependency path
		if _, dup := seen[f.Fingerprint]; dup {
			continue
		}
		seen[f.Fingerprint] = struct{}{}

		findings.ApplyScore(f)

		existing, err := s.findingRepo.GetByFingerprint(ctx, f.Fingerprint)
		switch {
		case errors.Is(err, findings.ErrNotFound):
			created, err := s.create(ctx, scanID, f, now)
			if err != nil {
				return result, err
			}
			if created {
				result.New++
			}
		case err != nil:
			return result, fmt.Errorf("failed to look up finding: %w", err)
		default:
			reopened, updated, err := s.refresh(ctx, scanID, existing, f, now)
			if err != nil {
				return result, err
			}
			switch {
			case reopened:
				result.Reopened++
			case updated:
				result.Updated++
			}
		}
	}

	if autoResolve {
		resolved, err := s.autoResolve(ctx, tool, target, seen, now)
		result.AutoResolved = resolved
		if err != nil {
			return result, err
		}
	}

	s.logger.Info("Ingested ", len(batch), " findings of ", tool, " for ", target,
		": new=", result.New, " updated=", result.Updated,
		" reopened=", result.Reopened, " auto_resolved=", result.AutoResolved)
	return result, nil
}

func (s *ingestService) create(ctx context.Context, scanID string, f *findings.Finding, now time.Time) (bool, error) {
	f.ID = uuid.New().String()
	f.ScanID = scanID
	f.Status = findings.StatusOpen
	f.FirstSeen = now
	f.LastSeen = now
	f.ResolvedAt = nil
	f.DueAt = s.policy.DueAt(f.Severity, now)

	if err := f.Validate(); err != nil {
		s.logger.Warn("Skipping invalid ", f.Tool, " finding ", f.RuleID, ": ", err)
		return false, nil
	}
	if err := s.findingRepo.Create(ctx, f); err != nil {
		return false, fmt.Errorf("failed to create finding: %w", err)
	}
	return true, nil
}

// refresh copies the latest scanner data onto a tracked finding and reopens it when it was resolved
func (s *ingestService) refresh(ctx context.Context, scanID string, existing, f *findings.Finding, now time.Time) (reopened, updated bool, err error) {
	severityChanged := existing.Severity != f.Severity

	existing.ScanID = scanID
	existing.Category = f.Category
	existing.Message = f.Message
	existing.Severity = f.Severity
	existing.CVSSVector = f.CVSSVector
	existing.CVSSScore = f.CVSSScore
	existing.CWE = f.CWE
	existing.StartLine = f.StartLine
	existing.EndLine = f.EndLine
	existing.HelpURI = f.HelpURI
	existing.LastSeen = now

	if existing.Status == findings.StatusResolved {
		if err := findings.Transition(existing, findings.StatusOpen, "", now); err != nil {
			return false, false, err
		}
		// a regression gets a fresh remediation window
		existing.DueAt = s.policy.DueAt(existing.Severity, now)
		reopened = true
	} else if severityChanged {
		existing.DueAt = s.policy.DueAt(existing.Severity, existing.FirstSeen)
	}

	if err := existing.Validate(); err != nil {
		s.logger.Warn("Skipping invalid update of finding ", existing.ID, ": ", err)
		return false, false, nil
	}
	if err := s.findingRepo.UpdateByID(ctx, existing); err != nil {
		return false, false, fmt.Errorf("failed to update finding: %w", err)
	}
	return reopened, !reopened, nil
}

func (s *ingestService) autoResolve(ctx context.Context, tool, target string, seen map[string]struct{}, now time.Time) (int, error) {
	open, err := s.findingRepo.ListOpenByToolTarget(ctx, tool, target)
	if err != nil {
		return 0, fmt.Errorf("failed to list open findings: %w", err)
	}

	resolved := 0
	for _, f := range open {
		if _, ok := seen[f.Fingerprint]; ok {
			continue
		}
		if err := findings.Transition(f, findings.StatusResolved, "", now); err != nil {
			return resolved, err
		}
		if err := s.findingRepo.UpdateByID(ctx, f); err != nil {
			return resolved, fmt.Errorf("failed to resolve finding: %w", err)
		}
		resolved++
	}
	return resolved, nil
}
