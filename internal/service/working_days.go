package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/recon"
	"attendance-reconciler/internal/repository"
	"attendance-reconciler/pkg/calendar"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// bulkLimit - сколько сотрудников сбрасываются на глобальный график одновременно
const bulkLimit = 4

// SaveWorkingDaysRequest - новый график на месяц. Пустой UserID - глобальный.
type SaveWorkingDaysRequest struct {
	UserID                   string              `validate:"omitempty,max=36"`
	Year                     int                 `validate:"gte=2000,lte=2100"`
	Month                    int                 `validate:"gte=1,lte=12"`
	DefaultWorkingDaysOfWeek []int               `validate:"max=7,dive,gte=0,lte=6"`
	WorkingDays              []recon.DayOverride `validate:"max=31"`
	DailyHours               float64             `validate:"gt=0,lte=24"`
}

// BulkResult - итог массового сброса. Ошибка одного сотрудника не
// прерывает остальных.
type BulkResult struct {
	Succeeded []string
	Failed    map[string]error
}

type WorkingDaysService struct {
	configRepo        repository.WorkingDaysConfigRepository
	userRepo          repository.UserRepository
	validate          *validator.Validate
	defaultDailyHours float64
	logger            *logrus.Logger
}

func NewWorkingDaysService(
	configRepo repository.WorkingDaysConfigRepository,
	userRepo repository.UserRepository,
	defaultDailyHours float64,
	logger *logrus.Logger,
) *WorkingDaysService {
	if defaultDailyHours <= 0 || defaultDailyHours > 24 {
		defaultDailyHours = recon.DefaultDailyHours
	}
	return &WorkingDaysService{
		configRepo:        configRepo,
		userRepo:          userRepo,
		validate:          validator.New(validator.WithRequiredStructEnabled()),
		defaultDailyHours: defaultDailyHours,
		logger:            logger,
	}
}

// Resolve возвращает действующий график: персональный, иначе глобальный
// (IsGlobal), иначе встроенный (IsDefault). Отсутствие записей не ошибка.
func (s *WorkingDaysService) Resolve(ctx context.Context, year int, month time.Month, userID string) (*recon.WorkingDaysConfig, error) {
	if userID != "" {
		cfg, err := s.configRepo.Get(ctx, year, int(month), userID)
		if err != nil {
			return nil, fmt.Errorf("get user working days: %w", err)
		}
		if cfg != nil {
			return cfg.ToRecon(), nil
		}
	}

	global, err := s.configRepo.Get(ctx, year, int(month), "")
	if err != nil {
		return nil, fmt.Errorf("get global working days: %w", err)
	}
	if global != nil {
		out := global.ToRecon()
		out.IsGlobal = true
		return out, nil
	}

	s.logger.WithFields(logrus.Fields{
		"year":    year,
		"month":   int(month),
		"user_id": userID,
	}).Debug("No working days config stored, using default")

	out := recon.DefaultConfig(year, month)
	out.DailyHours = s.defaultDailyHours
	return out, nil
}

// UserOverrides - персональные графики месяца по ID сотрудника
func (s *WorkingDaysService) UserOverrides(ctx context.Context, year int, month time.Month) (map[string]*recon.WorkingDaysConfig, error) {
	cfgs, err := s.configRepo.ListUserConfigs(ctx, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("list user working days: %w", err)
	}
	out := make(map[string]*recon.WorkingDaysConfig, len(cfgs))
	for _, c := range cfgs {
		out[c.UserID] = c.ToRecon()
	}
	return out, nil
}

// Save проверяет и сохраняет график. Повторные отметки одного числа
// схлопываются, побеждает последняя.
func (s *WorkingDaysService) Save(ctx context.Context, req SaveWorkingDaysRequest) (*recon.WorkingDaysConfig, error) {
	if err := s.validate.Struct(req); err != nil {
		s.logger.WithError(err).Warn("Invalid working days request")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	days := calendar.DaysIn(req.Year, time.Month(req.Month))
	overrides := make(map[int]bool, len(req.WorkingDays))
	for _, o := range req.WorkingDays {
		if o.Day < 1 || o.Day > days {
			return nil, fmt.Errorf("%w: в месяце нет %d-го числа", ErrInvalidInput, o.Day)
		}
		overrides[o.Day] = o.IsWorkingDay
	}
	merged := make([]recon.DayOverride, 0, len(overrides))
	for day, working := range overrides {
		merged = append(merged, recon.DayOverride{Day: day, IsWorkingDay: working})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Day < merged[j].Day })

	weekdays := uniqueWeekdays(req.DefaultWorkingDaysOfWeek)

	scope := recon.ScopeGlobal
	if req.UserID != "" {
		scope = recon.ScopeUser
		user, err := s.userRepo.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
	}

	record := models.WorkingDaysConfigFromRecon(&recon.WorkingDaysConfig{
		Scope:                    scope,
		UserID:                   req.UserID,
		Year:                     req.Year,
		Month:                    time.Month(req.Month),
		DefaultWorkingDaysOfWeek: weekdays,
		WorkingDays:              merged,
		DailyHours:               req.DailyHours,
	})
	if err := s.configRepo.Upsert(ctx, record); err != nil {
		if errors.Is(err, repository.ErrInvalidData) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"scope":     scope,
		"user_id":   req.UserID,
		"year":      req.Year,
		"month":     req.Month,
		"weekdays":  len(weekdays),
		"overrides": len(merged),
	}).Info("Working days saved")

	return s.Resolve(ctx, req.Year, time.Month(req.Month), req.UserID)
}

// ApplyGlobalToUser удаляет персональный график; повторный вызов ничего не меняет
func (s *WorkingDaysService) ApplyGlobalToUser(ctx context.Context, userID string, year int, month time.Month) error {
	deleted, err := s.configRepo.Delete(ctx, year, int(month), userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to revert user to global working days")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"year":    year,
		"month":   int(month),
		"deleted": deleted,
	}).Info("User reverted to global working days")
	return nil
}

// ApplyGlobal сбрасывает перечисленных сотрудников на глобальный график
func (s *WorkingDaysService) ApplyGlobal(ctx context.Context, userIDs []string, year int, month time.Month) BulkResult {
	result := BulkResult{Failed: make(map[string]error)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(bulkLimit)
	for _, id := range userIDs {
		id := id
		g.Go(func() error {
			err := s.ApplyGlobalToUser(ctx, id, year, month)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[id] = err
			} else {
				result.Succeeded = append(result.Succeeded, id)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.Succeeded)
	s.logger.WithFields(logrus.Fields{
		"year":      year,
		"month":     int(month),
		"succeeded": len(result.Succeeded),
		"failed":    len(result.Failed),
	}).Info("Bulk revert to global working days finished")
	return result
}

// ApplyGlobalToAllUsers - ApplyGlobal для всех сотрудников
func (s *WorkingDaysService) ApplyGlobalToAllUsers(ctx context.Context, year int, month time.Month) (BulkResult, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return BulkResult{}, fmt.Errorf("list users: %w", err)
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return s.ApplyGlobal(ctx, ids, year, month), nil
}

func uniqueWeekdays(days []int) []time.Weekday {
	seen := make(map[int]bool, len(days))
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, time.Weekday(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
