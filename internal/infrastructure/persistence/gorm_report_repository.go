package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"

	"gorm.io/gorm"
)

type gormReportRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormReportRepository creates a new GORM-based ReportRepository implementation
func NewGormReportRepository(db *gorm.DB, logger logger.Logger) (reports.ReportRepository, error) {
	return &gormReportRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormReportRepository) Create(ctx context.Context, report *reports.ReportMeta) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.ReportModel{}
	model.FromDomain(report)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create report metadata: %w", err)
	}

	r.logger.Info("Created report metadata with id ", report.ID)
	return nil
}

func (r *gormReportRepository) List(ctx context.Context) ([]*reports.ReportMeta, error) {
	var modelList []*models.ReportModel
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch report metadata: %w", err)
	}

	domainList := make([]*reports.ReportMeta, len(modelList))
	for i, model := range modelList {
		domainList[i] = model.ToDomain()
	}
	return domainList, nil
}

func (r *gormReportRepository) GetByID(ctx context.Context, reportID string) (*reports.ReportMeta, error) {
	var model models.ReportModel
	if err := r.db.WithContext(ctx).Where("id = ?", reportID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %s", reports.ErrNotFound, reportID)
		}
		return nil, fmt.Errorf("failed to fetch report metadata: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *gormReportRepository) DeleteByID(ctx context.Context, reportID string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", reportID).Delete(&models.ReportModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete report metadata: %w", err)
	}

	r.logger.Info("Deleted report metadata with id ", reportID)
	return nil
}
