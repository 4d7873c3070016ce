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

type gormScheduleRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormScheduleRepository creates a new GORM-based ScheduleRepository implementation
func NewGormScheduleRepository(db *gorm.DB, logger logger.Logger) (scans.ScheduleRepository, error) {
	return &gormScheduleRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormScheduleRepository) Create(ctx context.Context, schedule *scans.Schedule) error {
	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.ScheduleModel{}
	model.FromDomain(schedule)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	r.logger.Info("Created schedule ", schedule.Name, " with id ", schedule.ID)
	return nil
}

func (r *gormScheduleRepository) List(ctx context.Context) ([]*scans.Schedule, error) {
	var modelList []*models.ScheduleModel
	if err := r.db.WithContext(ctx).Order("name asc").Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch schedules: %w", err)
	}

	domainList := make([]*scans.Schedule, len(modelList))
	for i, model := range modelList {
		domainList[i] = model.ToDomain()
	}
	return domainList, nil
}

func (r *gormScheduleRepository) GetByID(ctx context.Context, scheduleID string) (*scans.Schedule, error) {
	return r.first(ctx, "id = ?", scheduleID)
}

func (r *gormScheduleRepository) GetByName(ctx context.Context, name string) (*scans.Schedule, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *gormScheduleRepository) first(ctx context.Context, cond string, arg string) (*scans.Schedule, error) {
	var model models.ScheduleModel
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: schedule %s", scans.ErrNotFound, arg)
		}
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *gormScheduleRepository) UpdateByID(ctx context.Context, schedule *scans.Schedule) error {
	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.ScheduleModel{}
	model.FromDomain(schedule)

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	r.logger.Debug("Updated schedule with id ", schedule.ID)
	return nil
}

func (r *gormScheduleRepository) DeleteByID(ctx context.Context, scheduleID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", scheduleID).Delete(&models.ScheduleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: schedule %s", scans.ErrNotFound, scheduleID)
	}

	r.logger.Info("Deleted schedule with id ", scheduleID)
	return nil
}
