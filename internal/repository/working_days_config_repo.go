package repository

import (
	"context"
	"errors"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/recon"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkingDaysConfigRepository interface {
	// Get возвращает конфигурацию сотрудника, при пустом userID - глобальную.
	// nil, nil если записи нет.
	Get(ctx context.Context, year, month int, userID string) (*models.WorkingDaysConfig, error)
	Upsert(ctx context.Context, cfg *models.WorkingDaysConfig) error
	// Delete удаляет персональную конфигурацию; отсутствие записи не ошибка.
	Delete(ctx context.Context, year, month int, userID string) (bool, error)
	ListUserConfigs(ctx context.Context, year, month int) ([]*models.WorkingDaysConfig, error)
}

type GormWorkingDaysConfigRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormWorkingDaysConfigRepository(db *gorm.DB, logger *logrus.Logger) (*GormWorkingDaysConfigRepository, error) {
	if err := db.AutoMigrate(&models.WorkingDaysConfig{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate working_days_configs table")
		return nil, err
	}

	logger.Debug("Working days config repository initialized")
	return &GormWorkingDaysConfigRepository{db: db, logger: logger}, nil
}

func scopeOf(userID string) recon.Scope {
	if userID == "" {
		return recon.ScopeGlobal
	}
	return recon.ScopeUser
}

func (r *GormWorkingDaysConfigRepository) Get(ctx context.Context, year, month int, userID string) (*models.WorkingDaysConfig, error) {
	var cfg models.WorkingDaysConfig
	err := r.db.WithContext(ctx).
		Where("scope = ? AND user_id = ? AND year = ? AND month = ?", string(scopeOf(userID)), userID, year, month).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert сохраняет конфигурацию; на каждую пару (scope, user, year, month)
// в базе остается одна запись.
func (r *GormWorkingDaysConfigRepository) Upsert(ctx context.Context, cfg *models.WorkingDaysConfig) error {
	if !cfg.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"scope":   cfg.Scope,
			"user_id": cfg.UserID,
			"year":    cfg.Year,
			"month":   cfg.Month,
		}).Warn("Invalid working days config")
		return ErrInvalidData
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope"}, {Name: "user_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"default_working_days_of_week", "working_days", "daily_hours", "updated_at",
		}),
	}).Create(cfg).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to upsert working days config")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"scope":   cfg.Scope,
		"user_id": cfg.UserID,
		"year":    cfg.Year,
		"month":   cfg.Month,
	}).Info("Working days config saved")
	return nil
}

func (r *GormWorkingDaysConfigRepository) Delete(ctx context.Context, year, month int, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("scope = ? AND user_id = ? AND year = ? AND month = ?", string(recon.ScopeUser), userID, year, month).
		Delete(&models.WorkingDaysConfig{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormWorkingDaysConfigRepository) ListUserConfigs(ctx context.Context, year, month int) ([]*models.WorkingDaysConfig, error) {
	var cfgs []*models.WorkingDaysConfig
	err := r.db.WithContext(ctx).
		Where("scope = ? AND year = ? AND month = ?", string(recon.ScopeUser), year, month).
		Find(&cfgs).Error
	if err != nil {
		return nil, err
	}
	return cfgs, nil
}
