package repository

import (
	"context"
	"errors"
	"time"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/recon"
	"attendance-reconciler/pkg/calendar"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type HolidayRepository interface {
	Create(ctx context.Context, holiday *models.Holiday) error
	Update(ctx context.Context, holiday *models.Holiday) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Holiday, error)
	// List возвращает праздники, пересекающиеся с годом (month == 0)
	// или месяцем, плюс все повторяющиеся праздники.
	List(ctx context.Context, year, month int) ([]*models.Holiday, error)
	ExistsOn(ctx context.Context, name string, date calendar.Date) (bool, error)
}

type GormHolidayRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormHolidayRepository(db *gorm.DB, logger *logrus.Logger) (*GormHolidayRepository, error) {
	if err := db.AutoMigrate(&models.Holiday{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate holidays table")
		return nil, err
	}

	logger.Debug("Holiday repository initialized")
	return &GormHolidayRepository{db: db, logger: logger}, nil
}

func (r *GormHolidayRepository) Create(ctx context.Context, holiday *models.Holiday) error {
	if !holiday.IsValid() {
		r.logger.WithField("name", holiday.Name).Warn("Invalid holiday data")
		return ErrInvalidData
	}

	if err := r.db.WithContext(ctx).Create(holiday).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create holiday")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":           holiday.ID,
		"name":         holiday.Name,
		"holiday_type": holiday.HolidayType,
	}).Info("Holiday created")
	return nil
}

func (r *GormHolidayRepository) Update(ctx context.Context, holiday *models.Holiday) error {
	if !holiday.IsValid() {
		return ErrInvalidData
	}

	existing, err := r.GetByID(ctx, holiday.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	return r.db.WithContext(ctx).Save(holiday).Error
}

func (r *GormHolidayRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Holiday{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	r.logger.WithField("id", id).Info("Holiday deleted")
	return nil
}

func (r *GormHolidayRepository) GetByID(ctx context.Context, id string) (*models.Holiday, error) {
	var holiday models.Holiday
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&holiday).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &holiday, nil
}

func (r *GormHolidayRepository) List(ctx context.Context, year, month int) ([]*models.Holiday, error) {
	from, to := period(year, month)

	var holidays []*models.Holiday
	err := r.db.WithContext(ctx).
		Where(
			r.db.Where("holiday_type = ? AND date BETWEEN ? AND ?", string(recon.HolidaySingleDay), from, to).
				Or("holiday_type = ? AND start_date <= ? AND end_date >= ?", string(recon.HolidayMultipleDay), to, from).
				Or("is_recurring = ?", true),
		).
		Order("date, start_date, name").
		Find(&holidays).Error
	if err != nil {
		return nil, err
	}
	return holidays, nil
}

func (r *GormHolidayRepository) ExistsOn(ctx context.Context, name string, date calendar.Date) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Holiday{}).
		Where("name = ? AND (date = ? OR start_date = ?)", name, date, date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// period - первый и последний день года (month == 0) или месяца
func period(year, month int) (calendar.Date, calendar.Date) {
	if month == 0 {
		return calendar.New(year, time.January, 1), calendar.New(year, time.December, 31)
	}
	m := time.Month(month)
	return calendar.New(year, m, 1), calendar.New(year, m, calendar.DaysIn(year, m))
}
