package service

import (
	"context"
	"fmt"
	"time"

	"attendance-reconciler/internal/recon"
	"attendance-reconciler/pkg/calendar"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// yearLimit - сколько месяцев годового отчета собираются одновременно
const yearLimit = 3

// ReportService собирает данные для сводок и вызывает агрегатор.
// Сам расчет чистый и живет в пакете recon.
type ReportService struct {
	users       *UserService
	workingDays *WorkingDaysService
	holidays    *HolidayService
	leaves      *LeaveService
	attendance  *AttendanceService
	tracker     *RequestTracker
	now         func() time.Time
	loc         *time.Location
	logger      *logrus.Logger
}

func NewReportService(
	users *UserService,
	workingDays *WorkingDaysService,
	holidays *HolidayService,
	leaves *LeaveService,
	attendance *AttendanceService,
	now func() time.Time,
	loc *time.Location,
	logger *logrus.Logger,
) *ReportService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		users:       users,
		workingDays: workingDays,
		holidays:    holidays,
		leaves:      leaves,
		attendance:  attendance,
		tracker:     NewRequestTracker(),
		now:         now,
		loc:         loc,
		logger:      logger,
	}
}

// Tracker - общий для сервиса трекер последних запросов
func (s *ReportService) Tracker() *RequestTracker {
	return s.tracker
}

// Location - часовой пояс, в котором считаются "сегодня" и будущие дни
func (s *ReportService) Location() *time.Location {
	return s.loc
}

// Today - текущий календарный день компании
func (s *ReportService) Today() calendar.Date {
	return calendar.Today(s.now(), s.loc)
}

// MonthReport - сводка за месяц по всем сотрудникам
func (s *ReportService) MonthReport(ctx context.Context, year int, month time.Month) (recon.MonthSummary, error) {
	users, err := s.users.Refs(ctx)
	if err != nil {
		return recon.MonthSummary{}, fmt.Errorf("list users: %w", err)
	}
	return s.report(ctx, year, month, users)
}

// UserMonthReport - сводка за месяц по одному сотруднику
func (s *ReportService) UserMonthReport(ctx context.Context, userID string, year int, month time.Month) (recon.MonthSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return recon.MonthSummary{}, err
	}
	return s.report(ctx, year, month, []recon.UserRef{{ID: user.ID, Name: user.FullName()}})
}

// YearReport - двенадцать независимых месячных сводок
func (s *ReportService) YearReport(ctx context.Context, year int) ([12]recon.MonthSummary, error) {
	var out [12]recon.MonthSummary

	users, err := s.users.Refs(ctx)
	if err != nil {
		return out, fmt.Errorf("list users: %w", err)
	}

	var inputs [12]recon.MonthInput
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(yearLimit)
	for i := range inputs {
		i := i
		g.Go(func() error {
			in, err := s.monthInput(gctx, year, time.Month(i+1), users)
			if err != nil {
				return err
			}
			inputs[i] = in
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}

	out = recon.AggregateYear(inputs)
	s.logger.WithFields(logrus.Fields{
		"year":  year,
		"users": len(users),
	}).Debug("Year report built")
	return out, nil
}

// LatestMonthReport - MonthReport с правилом "побеждает последний запрос"
// по ключу вызывающего
func (s *ReportService) LatestMonthReport(ctx context.Context, key string, year int, month time.Month) (recon.MonthSummary, error) {
	return Latest(s.tracker, ctx, key, func(ctx context.Context) (recon.MonthSummary, error) {
		return s.MonthReport(ctx, year, month)
	})
}

// CalendarMonth - разметка дней месяца для сотрудника. В отличие от
// отчетов, здесь видны и заявки, ожидающие решения.
func (s *ReportService) CalendarMonth(ctx context.Context, userID string, year int, month time.Month) ([]recon.DayClassification, error) {
	var (
		cfg      *recon.WorkingDaysConfig
		holidays []recon.Holiday
		leaves   []recon.Leave
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cfg, err = s.workingDays.Resolve(gctx, year, month, userID)
		return err
	})
	g.Go(func() (err error) {
		holidays, err = s.holidays.ForMonth(gctx, year, month)
		return err
	})
	g.Go(func() (err error) {
		leaves, err = s.leaves.ForMonth(gctx, year, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if userID != "" {
		leaves = recon.ByUser(leaves)[userID]
	}
	return recon.ClassifyMonth(year, month, cfg, holidays, leaves), nil
}

func (s *ReportService) report(ctx context.Context, year int, month time.Month, users []recon.UserRef) (recon.MonthSummary, error) {
	in, err := s.monthInput(ctx, year, month, users)
	if err != nil {
		return recon.MonthSummary{}, err
	}

	summary := recon.AggregateMonth(in)
	s.logger.WithFields(logrus.Fields{
		"year":         year,
		"month":        int(month),
		"users":        len(users),
		"working_days": summary.WorkingDaysCount,
	}).Debug("Month report built")
	return summary, nil
}

// monthInput параллельно читает все, что нужно агрегатору за месяц
func (s *ReportService) monthInput(ctx context.Context, year int, month time.Month, users []recon.UserRef) (recon.MonthInput, error) {
	in := recon.MonthInput{
		Year:     year,
		Month:    month,
		Users:    users,
		AsOf:     s.now(),
		Location: s.loc,
	}
	first := calendar.New(year, month, 1)
	last := calendar.New(year, month, calendar.DaysIn(year, month))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.GlobalConfig, err = s.workingDays.Resolve(gctx, year, month, "")
		return err
	})
	g.Go(func() (err error) {
		in.UserConfigs, err = s.workingDays.UserOverrides(gctx, year, month)
		return err
	})
	g.Go(func() (err error) {
		in.Holidays, err = s.holidays.ForMonth(gctx, year, month)
		return err
	})
	g.Go(func() (err error) {
		in.Leaves, err = s.leaves.ForMonth(gctx, year, month)
		return err
	})
	g.Go(func() (err error) {
		in.Attendance, err = s.attendance.ForPeriod(gctx, first, last)
		return err
	})
	if err := g.Wait(); err != nil {
		return recon.MonthInput{}, fmt.Errorf("load month %d-%02d: %w", year, int(month), err)
	}
	return in, nil
}
