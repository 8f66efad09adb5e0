package repository

import (
	"context"
	"errors"

	"attendance-reconciler/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	GetAdmins(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
}

type GormUserRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormUserRepository(db *gorm.DB, logger *logrus.Logger) (*GormUserRepository, error) {
	// Автомиграция - создает таблицы если их нет
	if err := db.AutoMigrate(&models.User{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate users table")
		return nil, err
	}

	logger.Debug("User repository initialized")
	return &GormUserRepository{db: db, logger: logger}, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	existing, err := r.GetByChatID(ctx, user.ChatID)
	if err != nil {
		return err
	}
	if existing != nil {
		r.logger.WithField("chat_id", user.ChatID).Warn("User already exists")
		return ErrAlreadyExists
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create user")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      user.ID,
		"chat_id": user.ChatID,
	}).Info("User created")
	return nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	existing, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	return r.db.WithContext(ctx).Save(user).Error
}

func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAll возвращает сотрудников в стабильном порядке, от него зависит
// порядок строк в отчетах
func (r *GormUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Order("first_name, last_name, id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) GetAdmins(ctx context.Context) ([]*models.User, error) {
	var admins []*models.User
	if err := r.db.WithContext(ctx).Where("role = ?", string(models.RoleAdmin)).Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *GormUserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("role", string(role))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
