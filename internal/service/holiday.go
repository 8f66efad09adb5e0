package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/recon"
	"attendance-reconciler/internal/repository"
	"attendance-reconciler/pkg/calendar"
	"attendance-reconciler/pkg/holidayfile"

	"github.com/go-playground/validator/v10"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/us"
	"github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

// nationalCalendars - встроенные государственные календари для импорта
var nationalCalendars = map[string][]*cal.Holiday{
	"de":    de.Holidays,
	"de-bw": de.HolidaysBW,
	"us":    us.Holidays,
}

// NationalCalendars - коды календарей, доступных для импорта
func NationalCalendars() []string {
	out := make([]string, 0, len(nationalCalendars))
	for code := range nationalCalendars {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// CreateHolidayRequest - нулевой End означает однодневный праздник
type CreateHolidayRequest struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=1000"`
	Type        string `validate:"omitempty,oneof=company national religious custom"`
	IsRecurring bool
	Start       calendar.Date
	End         calendar.Date
}

type ImportResult struct {
	Created int
	Skipped int
}

type HolidayService struct {
	repo     repository.HolidayRepository
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewHolidayService(repo repository.HolidayRepository, logger *logrus.Logger) *HolidayService {
	return &HolidayService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (s *HolidayService) toModel(req CreateHolidayRequest) (*models.Holiday, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.Start.IsZero() {
		return nil, fmt.Errorf("%w: не указана дата", ErrInvalidInput)
	}
	if !req.End.IsZero() && req.End.Before(req.Start) {
		return nil, ErrInvalidRange
	}

	h := recon.Holiday{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Type:        recon.HolidayType(req.Type),
		IsRecurring: req.IsRecurring,
		Span:        recon.SingleDayHoliday{Date: req.Start},
	}
	if !req.End.IsZero() && req.End.After(req.Start) {
		h.Span = recon.MultipleDayHoliday{Start: req.Start, End: req.End}
	}
	return models.HolidayFromRecon(h), nil
}

func (s *HolidayService) Create(ctx context.Context, req CreateHolidayRequest) (*recon.Holiday, error) {
	record, err := s.toModel(req)
	if err != nil {
		s.logger.WithError(err).Warn("Invalid holiday request")
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	out := record.ToRecon()
	return &out, nil
}

func (s *HolidayService) Update(ctx context.Context, id string, req CreateHolidayRequest) (*recon.Holiday, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrHolidayNotFound
	}

	record, err := s.toModel(req)
	if err != nil {
		return nil, err
	}
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logger.WithField("id", id).Info("Holiday updated")
	out := record.ToRecon()
	return &out, nil
}

func (s *HolidayService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrHolidayNotFound
	}
	return err
}

// ForMonth - праздники, задевающие месяц. Повторяющиеся праздники
// переносятся на нужный год.
func (s *HolidayService) ForMonth(ctx context.Context, year int, month time.Month) ([]recon.Holiday, error) {
	first := calendar.New(year, month, 1)
	last := calendar.New(year, month, calendar.DaysIn(year, month))
	return s.list(ctx, year, int(month), first, last)
}

// ForYear - праздники, задевающие год
func (s *HolidayService) ForYear(ctx context.Context, year int) ([]recon.Holiday, error) {
	return s.list(ctx, year, 0, calendar.New(year, time.January, 1), calendar.New(year, time.December, 31))
}

func (s *HolidayService) list(ctx context.Context, year, month int, first, last calendar.Date) ([]recon.Holiday, error) {
	records, err := s.repo.List(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}

	var out []recon.Holiday
	for _, r := range records {
		h := r.ToRecon()
		if !h.IsRecurring {
			out = append(out, h)
			continue
		}
		// многодневный праздник из прошлого года может заходить в январь
		for _, y := range []int{year - 1, year} {
			occ, ok := Occurrence(h, y)
			if !ok {
				continue
			}
			start, end := occ.Bounds()
			if !end.Before(first) && !start.After(last) {
				out = append(out, occ)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Bounds()
		b, _ := out[j].Bounds()
		return a.Before(b)
	})
	return out, nil
}

// Occurrence переносит повторяющийся праздник на год. Праздник 29
// февраля в невисокосный год не наступает.
func Occurrence(h recon.Holiday, year int) (recon.Holiday, bool) {
	start, end := h.Bounds()
	if start.IsZero() {
		return recon.Holiday{}, false
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.YEARLY,
		Dtstart: start.Time(time.UTC),
	})
	if err != nil {
		return recon.Holiday{}, false
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	occ := rule.Between(from, to, true)
	if len(occ) == 0 {
		return recon.Holiday{}, false
	}

	newStart := calendar.FromTime(occ[0], time.UTC)
	out := h
	switch h.Span.(type) {
	case recon.MultipleDayHoliday:
		out.Span = recon.MultipleDayHoliday{Start: newStart, End: newStart.AddDays(calendar.DaysBetween(start, end) - 1)}
	default:
		out.Span = recon.SingleDayHoliday{Date: newStart}
	}
	return out, true
}

// ImportFile загружает производственный календарь. Обычные выходные
// календаря (суббота и воскресенье) пропускаются, подряд идущие
// праздничные дни сохраняются одним многодневным праздником.
func (s *HolidayService) ImportFile(ctx context.Context, r io.Reader, name string) (ImportResult, error) {
	file, err := holidayfile.Parse(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if name == "" {
		name = "Производственный календарь"
	}

	var result ImportResult
	for _, span := range file.Spans(holidayfile.Weekend(time.Saturday, time.Sunday)) {
		created, err := s.importOne(ctx, CreateHolidayRequest{
			Name:  name,
			Type:  string(recon.HolidayNational),
			Start: span.Start,
			End:   span.End,
		})
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"year":    file.Year,
		"created": result.Created,
		"skipped": result.Skipped,
	}).Info("Production calendar imported")
	return result, nil
}

// ImportNational добавляет государственные праздники страны за год
func (s *HolidayService) ImportNational(ctx context.Context, code string, year int) (ImportResult, error) {
	holidays, ok := nationalCalendars[strings.ToLower(code)]
	if !ok {
		return ImportResult{}, fmt.Errorf("%w: неизвестный календарь %q", ErrInvalidInput, code)
	}

	var result ImportResult
	for _, h := range holidays {
		actual, observed := h.Calc(year)
		day := observed
		if day.IsZero() {
			day = actual
		}
		if day.IsZero() {
			continue
		}

		created, err := s.importOne(ctx, CreateHolidayRequest{
			Name:  h.Name,
			Type:  string(recon.HolidayNational),
			Start: calendar.FromTime(day, day.Location()),
		})
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"calendar": code,
		"year":     year,
		"created":  result.Created,
		"skipped":  result.Skipped,
	}).Info("National holidays imported")
	return result, nil
}

// importOne не создает дубликат праздника с тем же названием и датой начала
func (s *HolidayService) importOne(ctx context.Context, req CreateHolidayRequest) (bool, error) {
	exists, err := s.repo.ExistsOn(ctx, req.Name, req.Start)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.Create(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}
