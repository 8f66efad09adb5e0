package repository

import (
	"context"
	"errors"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/pkg/calendar"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AttendanceFilter - границы включительно, нулевые даты не ограничивают
type AttendanceFilter struct {
	UserID string
	From   calendar.Date
	To     calendar.Date
}

type AttendanceRepository interface {
	// Save создает или обновляет отметку за день
	Save(ctx context.Context, record *models.AttendanceRecord) error
	GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	GetByUserAndDate(ctx context.Context, userID string, date calendar.Date) (*models.AttendanceRecord, error)
	List(ctx context.Context, filter AttendanceFilter) ([]*models.AttendanceRecord, error)
}

type GormAttendanceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAttendanceRepository(db *gorm.DB, logger *logrus.Logger) (*GormAttendanceRepository, error) {
	if err := db.AutoMigrate(&models.AttendanceRecord{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate attendance_records table")
		return nil, err
	}

	logger.Debug("Attendance repository initialized")
	return &GormAttendanceRepository{db: db, logger: logger}, nil
}

func (r *GormAttendanceRepository) Save(ctx context.Context, record *models.AttendanceRecord) error {
	record.UpdateCalculatedFields()

	if !record.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"user_id": record.UserID,
			"date":    record.Date.String(),
		}).Warn("Invalid attendance record")
		return ErrInvalidData
	}

	if record.ID == "" {
		existing, err := r.GetByUserAndDate(ctx, record.UserID, record.Date)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyExists
		}
		if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
			r.logger.WithError(err).Error("Failed to create attendance record")
			return err
		}
	} else if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		r.logger.WithError(err).Error("Failed to update attendance record")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      record.ID,
		"user_id": record.UserID,
		"date":    record.Date.String(),
		"status":  record.Status,
	}).Info("Attendance record saved")
	return nil
}

func (r *GormAttendanceRepository) GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormAttendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date calendar.Date) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := r.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormAttendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]*models.AttendanceRecord, error) {
	q := r.db.WithContext(ctx).Model(&models.AttendanceRecord{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if !filter.From.IsZero() {
		q = q.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("date <= ?", filter.To)
	}

	var records []*models.AttendanceRecord
	if err := q.Order("date, user_id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
