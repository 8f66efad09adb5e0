package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/recon"
	"attendance-reconciler/internal/repository"

	"github.com/sirupsen/logrus"
)

type UserService struct {
	repo   repository.UserRepository
	logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Register создает сотрудника с ролью employee по умолчанию
func (s *UserService) Register(ctx context.Context, chatID int64, username, firstName, lastName string) (*models.User, error) {
	if strings.TrimSpace(firstName) == "" && username == "" {
		return nil, fmt.Errorf("%w: имя не может быть пустым", ErrInvalidInput)
	}
	if firstName == "" {
		firstName = username
	}

	user := &models.User{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Role:      string(models.RoleEmployee),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return user, nil
}

// GetByChatID возвращает сотрудника по чату Telegram
func (s *UserService) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	user, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Find ищет сотрудника по ID, @username или chat ID
func (s *UserService) Find(ctx context.Context, ref string) (*models.User, error) {
	ref = strings.TrimSpace(ref)
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == ref || (u.Username != "" && "@"+u.Username == ref) || fmt.Sprint(u.ChatID) == ref {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *UserService) All(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAll(ctx)
}

// Refs - сотрудники в виде, нужном для сводок
func (s *UserService) Refs(ctx context.Context) ([]recon.UserRef, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]recon.UserRef, 0, len(users))
	for _, u := range users {
		out = append(out, recon.UserRef{ID: u.ID, Name: u.FullName()})
	}
	return out, nil
}

// IsAdmin проверяет, является ли пользователь администратором
func (s *UserService) IsAdmin(ctx context.Context, chatID int64) (bool, error) {
	user, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsAdmin(), nil
}

// SetRole меняет роль сотрудника. Главного администратора из конфига
// понизить нельзя.
func (s *UserService) SetRole(ctx context.Context, ref string, role models.Role, protectedChatID int64) (*models.User, error) {
	user, err := s.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && protectedChatID != 0 && user.ChatID == protectedChatID {
		return nil, ErrForbidden
	}
	if err := s.repo.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("ошибка изменения роли: %w", err)
	}
	user.SetRole(role)

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    role,
	}).Info("User role changed")
	return user, nil
}

func (s *UserService) Admins(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAdmins(ctx)
}

// InitializeAdmin назначает администратора из конфига
func (s *UserService) InitializeAdmin(ctx context.Context, adminChatID int64) error {
	if adminChatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(ctx, adminChatID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.repo.UpdateRole(ctx, existing.ID, models.RoleAdmin)
	}

	return s.repo.Create(ctx, &models.User{
		ChatID:    adminChatID,
		Username:  "admin",
		FirstName: "Администратор",
		Role:      string(models.RoleAdmin),
	})
}

// FormatUserInfo форматирует профиль для вывода
func (s *UserService) FormatUserInfo(user *models.User) string {
	var lines []string

	lines = append(lines, "👤 Профиль сотрудника:")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("🆔 ID: %s", user.ID))
	if user.Username != "" {
		lines = append(lines, fmt.Sprintf("📛 Никнейм: @%s", user.Username))
	}
	lines = append(lines, fmt.Sprintf("👨‍💼 Имя: %s", user.FullName()))

	roleEmoji := "👤"
	if user.IsAdmin() {
		roleEmoji = "👑"
	}
	lines = append(lines, fmt.Sprintf("%s Роль: %s", roleEmoji, user.Role))

	return strings.Join(lines, "\n")
}
