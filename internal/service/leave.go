package service

import (
	"context"
	"fmt"
	"time"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/recon"
	"attendance-reconciler/internal/repository"
	"attendance-reconciler/pkg/calendar"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// CreateLeaveRequest - заявка на отпуск. Для hourly заполняются Date,
// StartTime и EndTime (12-часовой формат), для single-day - Date,
// для multiple-day - Start и End.
type CreateLeaveRequest struct {
	UserID     string `validate:"required"`
	Type       string `validate:"required,oneof=sick annual emergency unpaid maternity paternity custom"`
	CustomType string `validate:"required_if=Type custom,max=100"`
	Category   string `validate:"required,oneof=hourly single-day multiple-day"`
	Date       calendar.Date
	Start      calendar.Date
	End        calendar.Date
	StartTime  string
	EndTime    string
	Reason     string `validate:"max=1000"`
}

type LeaveService struct {
	repo     repository.LeaveRepository
	userRepo repository.UserRepository
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewLeaveService(repo repository.LeaveRepository, userRepo repository.UserRepository, logger *logrus.Logger) *LeaveService {
	return &LeaveService{
		repo:     repo,
		userRepo: userRepo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Create сохраняет заявку в статусе pending. Часы почасового отпуска
// считаются по времени начала и окончания.
func (s *LeaveService) Create(ctx context.Context, req CreateLeaveRequest) (*recon.Leave, error) {
	if err := s.validate.Struct(req); err != nil {
		s.logger.WithError(err).Warn("Invalid leave request")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	record := &models.Leave{
		UserID:        req.UserID,
		LeaveType:     req.Type,
		LeaveCategory: req.Category,
		Status:        string(recon.LeavePending),
		Reason:        req.Reason,
	}
	if req.Type == string(recon.LeaveCustom) {
		record.CustomLeaveType = req.CustomType
	}

	switch recon.LeaveCategory(req.Category) {
	case recon.LeaveHourly:
		if req.Date.IsZero() {
			return nil, fmt.Errorf("%w: не указана дата", ErrInvalidInput)
		}
		start, err := calendar.ParseClock(req.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		end, err := calendar.ParseClock(req.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		hours := calendar.HoursBetween(start, end)
		if hours <= 0 {
			return nil, ErrInvalidRange
		}
		record.Date = req.Date
		record.StartTime = start.String()
		record.EndTime = end.String()
		record.HoursCount = recon.Round2(hours)

	case recon.LeaveSingleDay:
		if req.Date.IsZero() {
			return nil, fmt.Errorf("%w: не указана дата", ErrInvalidInput)
		}
		record.Date = req.Date

	case recon.LeaveMultipleDay:
		if req.Start.IsZero() || req.End.IsZero() {
			return nil, fmt.Errorf("%w: не указан период", ErrInvalidInput)
		}
		if req.End.Before(req.Start) {
			return nil, ErrInvalidRange
		}
		record.StartDate = req.Start
		record.EndDate = req.End
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	out := record.ToRecon()
	return &out, nil
}

// Approve и Reject применимы только к заявкам в ожидании
func (s *LeaveService) Approve(ctx context.Context, id, reviewerID string) (*recon.Leave, error) {
	return s.review(ctx, id, reviewerID, recon.LeaveApproved)
}

func (s *LeaveService) Reject(ctx context.Context, id, reviewerID string) (*recon.Leave, error) {
	return s.review(ctx, id, reviewerID, recon.LeaveRejected)
}

func (s *LeaveService) review(ctx context.Context, id, reviewerID string, status recon.LeaveStatus) (*recon.Leave, error) {
	record, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.IsPending() {
		return nil, ErrLeaveNotPending
	}

	record.Status = string(status)
	record.ReviewerID = reviewerID
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":          id,
		"reviewer_id": reviewerID,
		"status":      status,
	}).Info("Leave reviewed")

	out := record.ToRecon()
	return &out, nil
}

// Cancel - отзыв заявки владельцем, пока она активна
func (s *LeaveService) Cancel(ctx context.Context, id, userID string) (*recon.Leave, error) {
	record, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, ErrForbidden
	}
	if !recon.LeaveStatus(record.Status).Active() {
		return nil, ErrLeaveNotPending
	}

	record.Status = string(recon.LeaveCancelled)
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logger.WithField("id", id).Info("Leave cancelled")
	out := record.ToRecon()
	return &out, nil
}

func (s *LeaveService) get(ctx context.Context, id string) (*models.Leave, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrLeaveNotFound
	}
	return record, nil
}

func (s *LeaveService) List(ctx context.Context, filter repository.LeaveFilter) ([]recon.Leave, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	out := make([]recon.Leave, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToRecon())
	}
	return out, nil
}

// ForMonth - активные заявки (pending и approved), задевающие месяц
func (s *LeaveService) ForMonth(ctx context.Context, year int, month time.Month) ([]recon.Leave, error) {
	return s.List(ctx, repository.LeaveFilter{
		Year:     year,
		Month:    int(month),
		Statuses: []recon.LeaveStatus{recon.LeavePending, recon.LeaveApproved},
	})
}

// Pending - заявки, ожидающие решения администратора
func (s *LeaveService) Pending(ctx context.Context) ([]recon.Leave, error) {
	return s.List(ctx, repository.LeaveFilter{Statuses: []recon.LeaveStatus{recon.LeavePending}})
}
