package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
	"github.com/google/uuid"
)

// SignatureSuffix is appended to a report name to store its detached signature
const SignatureSuffix = ".sig"

// reportService implements the ReportService interface
type reportService struct {
	findingRepo     findings.FindingRepository
	reportRepo      reports.ReportRepository
	reportConnector reports.ReportConnector
	renderer        reports.Renderer
	signer          reports.Signer
	policy          *sla.Policy
	logger          logger.Logger
	now             func() time.Time
}

// NewReportService creates a new instance of ReportService
func NewReportService(
	findingRepo findings.FindingRepository,
	reportRepo reports.ReportRepository,
	reportConnector reports.ReportConnector,
	renderer reports.Renderer,
	signer reports.Signer,
	policy *sla.Policy,
	logger logger.Logger,
) (reports.ReportService, error) {
	return &reportService{
		findingRepo:     findingRepo,
		reportRepo:      reportRepo,
		reportConnector: reportConnector,
		renderer:        renderer,
		signer:          signer,
		policy:          policy,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *reportService) all(ctx context.Context) ([]*findings.Finding, error) {
	list, err := s.findingRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	return list, nil
}

// Summary aggregates the current findings.
func (s *reportService) Summary(ctx context.Context) (*reports.Summary, error) {
	list, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return reports.Summarize(list, s.policy, s.now(), reports.DefaultTopN), nil
}

// SLA evaluates remediation deadlines over the current findings.
func (s *reportService) SLA(ctx context.Context) (*sla.Report, error) {
	list, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return s.policy.Evaluate(list, s.now()), nil
}

// Generate renders a report in the given format, signs it and archives it.
// The summary covers the findings selected by query.
func (s *reportService) Generate(ctx context.Context, format string, query *findings.FindingQuery) (*reports.ReportMeta, error) {
	ext, err := reports.FileExtension(format)
	if err != nil {
		return nil, err
	}

	list, err := s.findingRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}

	now := s.now()
	summary := reports.Summarize(list, s.policy, now, reports.DefaultTopN)
	reports.SortByPriority(list)

	data, err := s.renderer.Render(format, summary, list)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s report: %w", format, err)
	}

	signature, err := s.signer.Sign(data)
	if err != nil {
		return nil, fmt.Errorf("failed to sign report: %w", err)
	}

	digest := sha256.Sum256(data)
	id := uuid.New().String()
	meta := &reports.ReportMeta{
		ID:           id,
		Format:       format,
		Name:         fmt.Sprintf("report-%s-%s%s", now.Format("20060102T150405Z"), id[:8], ext),
		Size:         int64(len(data)),
		SHA256:       hex.EncodeToString(digest[:]),
		Signature:    hex.EncodeToString(signature),
		FindingCount: len(list),
		CreatedAt:    now,
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	if err := s.reportConnector.Upload(ctx, meta.Name, data); err != nil {
		return nil, fmt.Errorf("failed to archive report: %w", err)
	}
	if err := s.reportConnector.Upload(ctx, meta.Name+SignatureSuffix, []byte(meta.Signature)); err != nil {
		s.cleanup(ctx, meta.Name)
		return nil, fmt.Errorf("failed to archive report signature: %w", err)
	}
	if err := s.reportRepo.Create(ctx, meta); err != nil {
		s.cleanup(ctx, meta.Name, meta.Name+SignatureSuffix)
		return nil, fmt.Errorf("failed to save report metadata: %w", err)
	}

	s.logger.Info("Generated ", format, " report ", meta.Name, " with ", meta.FindingCount, " findings")
	return meta, nil
}

func (s *reportService) cleanup(ctx context.Context, names ...string) {
	for _, name := range names {
		if err := s.reportConnector.Delete(ctx, name); err != nil && !errors.Is(err, reports.ErrNotFound) {
			s.logger.Warn("Failed to remove archived ", name, ": ", err)
		}
	}
}

// List retrieves all report metadata.
func (s *reportService) List(ctx context.Context) ([]*reports.ReportMeta, error) {
	list, err := s.reportRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return list, nil
}

// GetByID retrieves report metadata by ID.
func (s *reportService) GetByID(ctx context.Context, reportID string) (*reports.ReportMeta, error) {
	meta, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return meta, nil
}

// Download returns the archived report content.
func (s *reportService) Download(ctx context.Context, reportID string) ([]byte, error) {
	meta, err := s.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	data, err := s.reportConnector.Download(ctx, meta.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to download report: %w", err)
	}
	return data, nil
}

// Verify re-hashes the archived report and checks its signature.
// Tampering with the content, the stored signature or the metadata yields ErrSignatureMismatch.
func (s *reportService) Verify(ctx context.Context, reportID string) error {
	meta, err := s.GetByID(ctx, reportID)
	if err != nil {
		return err
	}

	data, err := s.reportConnector.Download(ctx, meta.Name)
	if err != nil {
		return fmt.Errorf("failed to download report: %w", err)
	}
	digest := sha256.Sum256(data)
	if hex.EncodeToString(digest[:]) != meta.SHA256 {
		return fmt.Errorf("%w: digest of %s changed", reports.ErrSignatureMismatch, meta.Name)
	}

	storedSig, err := s.reportConnector.Download(ctx, meta.Name+SignatureSuffix)
	if err != nil {
		return fmt.Errorf("failed to download report signature: %w", err)
	}
	if strings.TrimSpace(string(storedSig)) != meta.Signature {
		return fmt.Errorf("%w: stored signature of %s differs from metadata", reports.ErrSignatureMismatch, meta.Name)
	}

	signature, err := hex.DecodeString(meta.Signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not hex encoded", reports.ErrSignatureMismatch)
	}
	valid, err := s.signer.Verify(data, signature)
	if err != nil {
		return fmt.Errorf("failed to verify report: %w", err)
	}
	if !valid {
		return fmt.Errorf("%w: %s", reports.ErrSignatureMismatch, meta.Name)
	}

	s.logger.Info("Report ", meta.Name, " verified")
	return nil
}

// DeleteByID removes the archived report and its metadata.
func (s *reportService) DeleteByID(ctx context.Context, reportID string) error {
	meta, err := s.GetByID(ctx, reportID)
	if err != nil {
		return err
	}

	s.cleanup(ctx, meta.Name, meta.Name+SignatureSuffix)
	if err := s.reportRepo.DeleteByID(ctx, reportID); err != nil {
		return fmt.Errorf("failed to delete report metadata: %w", err)
	}

	s.logger.Info("Deleted report ", meta.Name)
	return nil
}
