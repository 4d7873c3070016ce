package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"

	"gorm.io/gorm"
)

// findingSortColumns maps validated sort keys onto columns
var findingSortColumns = map[string]string{
	"first_seen": "first_seen",
	"last_seen":  "last_seen",
	"due_at":     "due_at",
	"cvss_score": "cvss_score",
	"severity":   "severity_rank",
}

type gormFindingRepository struct {
	db     *gorm.DB
	logger logger.Logger
	now    func() time.Time
}

// NewGormFindingRepository creates a new GORM-based FindingRepository implementation
func NewGormFindingRepository(db *gorm.DB, logger logger.Logger) (findings.FindingRepository, error) {
	return &gormFindingRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (r *gormFindingRepository) Create(ctx context.Context, finding *findings.Finding) error {
	if err := finding.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.FindingModel{}
	model.FromDomain(finding)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create finding: %w", err)
	}

	r.logger.Debug("Created finding with id ", finding.ID)
	return nil
}

func (r *gormFindingRepository) List(ctx context.Context, query *findings.FindingQuery) ([]*findings.Finding, error) {
	if query == nil {
		query = findings.NewFindingQuery()
	}
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query parameters: %w", err)
	}

	var modelList []*models.FindingModel
	dbQuery := r.db.WithContext(ctx).Model(&models.FindingModel{})

	if query.Tool != "" {
		dbQuery = dbQuery.Where("tool = ?", query.Tool)
	}
	if query.Category != "" {
		dbQuery = dbQuery.Where("category = ?", query.Category)
	}
	if query.Severity != "" {
		dbQuery = dbQuery.Where("severity = ?", query.Severity)
	}
	if query.Status != "" {
		dbQuery = dbQuery.Where("status = ?", query.Status)
	}
	if query.Target != "" {
		dbQuery = dbQuery.Where("target = ?", query.Target)
	}
	if query.Overdue {
		dbQuery = dbQuery.Where("status = ? AND due_at IS NOT NULL AND due_at < ?", findings.StatusOpen, r.now())
	}

	if query.SortBy != "" {
		order := query.SortOrder
		if order == "" {
			order = "asc"
		}
		dbQuery = dbQuery.Order(fmt.Sprintf("%s %s", findingSortColumns[query.SortBy], order))
	}

	if query.Limit > 0 {
		dbQuery = dbQuery.Limit(query.Limit)
	}
	if query.Offset > 0 {
		dbQuery = dbQuery.Offset(query.Offset)
	}

	if err := dbQuery.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch findings: %w", err)
	}

	return toFindings(modelList), nil
}

func (r *gormFindingRepository) GetByID(ctx context.Context, findingID string) (*findings.Finding, error) {
	var model models.FindingModel
	if err := r.db.WithContext(ctx).Where("id = ?", findingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %s", findings.ErrNotFound, findingID)
		}
		return nil, fmt.Errorf("failed to fetch finding: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *gormFindingRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*findings.Finding, error) {
	var model models.FindingModel
	if err := r.db.WithContext(ctx).Where("fingerprint = ?", fingerprint).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: fingerprint %s", findings.ErrNotFound, fingerprint)
		}
		return nil, fmt.Errorf("failed to fetch finding: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *gormFindingRepository) UpdateByID(ctx context.Context, finding *findings.Finding) error {
	if err := finding.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.FindingModel{}
	model.FromDomain(finding)

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to update finding: %w", err)
	}

	r.logger.Debug("Updated finding with id ", finding.ID)
	return nil
}

func (r *gormFindingRepository) ListOpenByToolTarget(ctx context.Context, tool, target string) ([]*findings.Finding, error) {
	var modelList []*models.FindingModel
	err := r.db.WithContext(ctx).
		Where("tool = ? AND target = ? AND status = ?", tool, target, findings.StatusOpen).
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open findings: %w", err)
	}
	return toFindings(modelList), nil
}

func (r *gormFindingRepository) CountBySeverityStatus(ctx context.Context) ([]findings.SeverityStatusCount, error) {
	var rows []struct {
		Severity string
		Status   string
		Count    int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.FindingModel{}).
		Select("severity, status, COUNT(*) AS count").
		Group("severity, status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count findings: %w", err)
	}

	counts := make([]findings.SeverityStatusCount, len(rows))
	for i, row := range rows {
		counts[i] = findings.SeverityStatusCount{
			Severity: findings.Severity(row.Severity),
			Status:   findings.Status(row.Status),
			Count:    row.Count,
		}
	}
	return counts, nil
}

func toFindings(modelList []*models.FindingModel) []*findings.Finding {
	domainList := make([]*findings.Finding, len(modelList))
	for i, model := range modelList {
		domainList[i] = model.ToDomain()
	}
	return domainList
}
