package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"

	"gorm.io/gorm"
)

type gormScanRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormScanRepository creates a new GORM-based ScanRepository implementation
func NewGormScanRepository(db *gorm.DB, logger logger.Logger) (scans.ScanRepository, error) {
	return &gormScanRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormScanRepository) Create(ctx context.Context, job *scans.ScanJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.ScanJobModel{}
	model.FromDomain(job)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create scan job: %w", err)
	}

	r.logger.Info("Created scan job with id ", job.ID)
	return nil
}

func (r *gormScanRepository) List(ctx context.Context, query *scans.ScanQuery) ([]*scans.ScanJob, error) {
	if query == nil {
		query = scans.NewScanQuery()
	}
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query parameters: %w", err)
	}

	var modelList []*models.ScanJobModel
	dbQuery := r.db.WithContext(ctx).Model(&models.ScanJobModel{})

	if query.Tool != "" {
		dbQuery = dbQuery.Where("tool = ?", query.Tool)
	}
	if query.Kind != "" {
		dbQuery = dbQuery.Where("kind = ?", query.Kind)
	}
	if query.Status != "" {
		dbQuery = dbQuery.Where("status = ?", query.Status)
	}
	if query.Target != "" {
		dbQuery = dbQuery.Where("target = ?", query.Target)
	}

	if query.SortBy != "" {
		order := query.SortOrder
		if order == "" {
			order = "asc"
		}
		dbQuery = dbQuery.Order(fmt.Sprintf("%s %s", query.SortBy, order))
	} else {
		dbQuery = dbQuery.Order("queued_at desc")
	}

	if query.Limit > 0 {
		dbQuery = dbQuery.Limit(query.Limit)
	}
	if query.Offset > 0 {
		dbQuery = dbQuery.Offset(query.Offset)
	}

	if err := dbQuery.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch scan jobs: %w", err)
	}

	domainList := make([]*scans.ScanJob, len(modelList))
	for i, model := range modelList {
		domainList[i] = model.ToDomain()
	}
	return domainList, nil
}

func (r *gormScanRepository) GetByID(ctx context.Context, jobID string) (*scans.ScanJob, error) {
	var model models.ScanJobModel
	if err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %s", scans.ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to fetch scan job: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *gormScanRepository) UpdateByID(ctx context.Context, job *scans.ScanJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.ScanJobModel{}
	model.FromDomain(job)

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to update scan job: %w", err)
	}

	r.logger.Info("Updated scan job ", job.ID, " to status ", job.Status)
	return nil
}
