package repository

import (
	"context"
	"errors"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/recon"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LeaveFilter - пустые поля не ограничивают выборку. Month без Year
// игнорируется.
type LeaveFilter struct {
	UserID   string
	Year     int
	Month    int
	Statuses []recon.LeaveStatus
}

type LeaveRepository interface {
	Create(ctx context.Context, leave *models.Leave) error
	Update(ctx context.Context, leave *models.Leave) error
	GetByID(ctx context.Context, id string) (*models.Leave, error)
	List(ctx context.Context, filter LeaveFilter) ([]*models.Leave, error)
}

type GormLeaveRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormLeaveRepository(db *gorm.DB, logger *logrus.Logger) (*GormLeaveRepository, error) {
	if err := db.AutoMigrate(&models.Leave{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate leaves table")
		return nil, err
	}

	logger.Debug("Leave repository initialized")
	return &GormLeaveRepository{db: db, logger: logger}, nil
}

func (r *GormLeaveRepository) Create(ctx context.Context, leave *models.Leave) error {
	if !leave.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"user_id":        leave.UserID,
			"leave_category": leave.LeaveCategory,
		}).Warn("Invalid leave data")
		return ErrInvalidData
	}

	if err := r.db.WithContext(ctx).Create(leave).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create leave")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":             leave.ID,
		"user_id":        leave.UserID,
		"leave_category": leave.LeaveCategory,
		"status":         leave.Status,
	}).Info("Leave created")
	return nil
}

func (r *GormLeaveRepository) Update(ctx context.Context, leave *models.Leave) error {
	if !leave.IsValid() {
		return ErrInvalidData
	}

	existing, err := r.GetByID(ctx, leave.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		r.logger.WithField("id", leave.ID).Warn("Leave not found for update")
		return ErrNotFound
	}

	return r.db.WithContext(ctx).Save(leave).Error
}

func (r *GormLeaveRepository) GetByID(ctx context.Context, id string) (*models.Leave, error) {
	var leave models.Leave
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&leave).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *GormLeaveRepository) List(ctx context.Context, filter LeaveFilter) ([]*models.Leave, error) {
	q := r.db.WithContext(ctx).Model(&models.Leave{})

	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where("status IN ?", statuses)
	}
	if filter.Year != 0 {
		from, to := period(filter.Year, filter.Month)
		q = q.Where(
			r.db.Where("leave_category = ? AND start_date <= ? AND end_date >= ?", string(recon.LeaveMultipleDay), to, from).
				Or("leave_category <> ? AND date BETWEEN ? AND ?", string(recon.LeaveMultipleDay), from, to),
		)
	}

	var leaves []*models.Leave
	if err := q.Order("created_at").Find(&leaves).Error; err != nil {
		return nil, err
	}
	return leaves, nil
}
