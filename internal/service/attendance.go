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

// ManualEditRequest - правка отметки администратором. Nil-поля не меняются.
type ManualEditRequest struct {
	UserID      string `validate:"required"`
	Date        calendar.Date
	CheckIn     *time.Time
	CheckOut    *time.Time
	HoursWorked *float64 `validate:"omitempty,gte=0,lte=24"`
	Status      string   `validate:"omitempty,oneof=not-checked-in checked-in checked-out"`
	AdminNotes  string   `validate:"max=1000"`
}

type AttendanceService struct {
	repo     repository.AttendanceRepository
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
	logger   *logrus.Logger
}

func NewAttendanceService(repo repository.AttendanceRepository, now func() time.Time, loc *time.Location, logger *logrus.Logger) *AttendanceService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
		loc:      loc,
		logger:   logger,
	}
}

// CheckIn отмечает приход. День определяется в часовом поясе компании.
func (s *AttendanceService) CheckIn(ctx context.Context, userID string) (*models.AttendanceRecord, error) {
	now := s.now()
	today := calendar.Today(now, s.loc)

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"date":    today.String(),
	}).Info("User checking in")

	record, err := s.repo.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &models.AttendanceRecord{UserID: userID, Date: today}
	}
	if record.CheckIn != nil {
		return nil, ErrAlreadyCheckedIn
	}

	record.CheckIn = &now
	if err := s.repo.Save(ctx, record); err != nil {
		s.logger.WithError(err).Error("Failed to save check in")
		return nil, err
	}
	return record, nil
}

// CheckOut отмечает уход и пересчитывает отработанные часы
func (s *AttendanceService) CheckOut(ctx context.Context, userID string) (*models.AttendanceRecord, error) {
	now := s.now()
	today := calendar.Today(now, s.loc)

	record, err := s.repo.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if record == nil || record.CheckIn == nil {
		return nil, ErrNotCheckedIn
	}
	if record.CheckOut != nil {
		return nil, ErrAlreadyCheckedOut
	}

	record.CheckOut = &now
	if err := s.repo.Save(ctx, record); err != nil {
		s.logger.WithError(err).Error("Failed to save check out")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":      userID,
		"hours_worked": record.HoursWorked,
	}).Info("User checked out")
	return record, nil
}

// Today - отметка сотрудника за сегодня, nil если ее нет
func (s *AttendanceService) Today(ctx context.Context, userID string) (*models.AttendanceRecord, error) {
	return s.repo.GetByUserAndDate(ctx, userID, calendar.Today(s.now(), s.loc))
}

// ManualEdit выставляет значения вручную; такие часы больше не
// пересчитываются по времени прихода и ухода
func (s *AttendanceService) ManualEdit(ctx context.Context, req ManualEditRequest) (*models.AttendanceRecord, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: не указана дата", ErrInvalidInput)
	}
	if req.CheckIn != nil && req.CheckOut != nil && req.CheckOut.Before(*req.CheckIn) {
		return nil, ErrInvalidRange
	}

	record, err := s.repo.GetByUserAndDate(ctx, req.UserID, req.Date)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &models.AttendanceRecord{UserID: req.UserID, Date: req.Date}
	}

	if req.CheckIn != nil {
		record.CheckIn = req.CheckIn
	}
	if req.CheckOut != nil {
		record.CheckOut = req.CheckOut
	}
	if req.AdminNotes != "" {
		record.AdminNotes = req.AdminNotes
	}

	record.ManuallyEdited = true
	switch {
	case req.HoursWorked != nil:
		hours := recon.Round2(*req.HoursWorked)
		record.HoursWorked = &hours
	default:
		if hours, ok := record.SpanHours(); ok {
			record.HoursWorked = &hours
		}
	}
	record.Status = req.Status
	if record.Status == "" {
		record.Status = record.DeriveStatus()
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": req.UserID,
		"date":    req.Date.String(),
		"status":  record.Status,
	}).Info("Attendance edited manually")
	return record, nil
}

// ForPeriod - отметки всех сотрудников за период включительно
func (s *AttendanceService) ForPeriod(ctx context.Context, from, to calendar.Date) ([]recon.AttendanceRecord, error) {
	records, err := s.repo.List(ctx, repository.AttendanceFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	out := make([]recon.AttendanceRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToRecon())
	}
	return out, nil
}
