package handler

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/recon"
	"attendance-reconciler/internal/service"
	"attendance-reconciler/internal/view"
	"attendance-reconciler/pkg/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.February, 10, 12, 0, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	d, err := parseDate("05.02.2024")
	require.NoError(t, err)
	assert.Equal(t, calendar.New(2024, time.February, 5), d)

	d, err = parseDate("2024-02-05")
	require.NoError(t, err)
	assert.Equal(t, calendar.New(2024, time.February, 5), d)

	_, err = parseDate("31.02.2024")
	assert.ErrorIs(t, err, errBadArgs)
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		in         string
		start, end string
	}{
		{"05.02.2024", "2024-02-05", ""},
		{"2024-02-05", "2024-02-05", ""},
		{"01.07.2024-14.07.2024", "2024-07-01", "2024-07-14"},
		{"2024-07-01..2024-07-14", "2024-07-01", "2024-07-14"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			start, end, err := parseDateRange(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.start, start.String())
			if tt.end == "" {
				assert.True(t, end.IsZero())
			} else {
				assert.Equal(t, tt.end, end.String())
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in    string
		year  int
		month time.Month
	}{
		{"", 2024, time.February},
		{"03.2023", 2023, time.March},
		{"3.2023", 2023, time.March},
		{"2025-11", 2025, time.November},
		{"7", 2024, time.July},
	}
	for _, tt := range tests {
		y, m, err := parseMonth(tt.in, now)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.year, y, tt.in)
		assert.Equal(t, tt.month, m, tt.in)
	}

	_, _, err := parseMonth("13", now)
	assert.ErrorIs(t, err, errBadArgs)
}

func TestParseYear(t *testing.T) {
	y, err := parseYear("", now)
	require.NoError(t, err)
	assert.Equal(t, 2024, y)

	_, err = parseYear("1999", now)
	assert.ErrorIs(t, err, errBadArgs)
}

func TestParseWeekdaysAndOverrides(t *testing.T) {
	days, err := parseWeekdays("0,1, 2,6")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 6}, days)

	_, err = parseWeekdays("1,7")
	assert.ErrorIs(t, err, errBadArgs)

	o, ok := parseOverride("+9")
	require.True(t, ok)
	assert.Equal(t, recon.DayOverride{Day: 9, IsWorkingDay: true}, o)

	o, ok = parseOverride("-14")
	require.True(t, ok)
	assert.False(t, o.IsWorkingDay)

	for _, bad := range []string{"14", "+", "+32", "@anna"} {
		_, ok := parseOverride(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseLeaveArgs(t *testing.T) {
	t.Run("multiple day", func(t *testing.T) {
		req, err := parseLeaveArgs("u1", "annual 01.07.2024-14.07.2024 Море и горы")
		require.NoError(t, err)
		assert.Equal(t, "multiple-day", req.Category)
		assert.Equal(t, "2024-07-14", req.End.String())
		assert.Equal(t, "Море и горы", req.Reason)
	})

	t.Run("hourly", func(t *testing.T) {
		req, err := parseLeaveArgs("u1", "emergency 05.02.2024 9:00AM-12:00PM Врач")
		require.NoError(t, err)
		assert.Equal(t, "hourly", req.Category)
		assert.Equal(t, "09:00 AM", req.StartTime)
		assert.Equal(t, "12:00 PM", req.EndTime)
		assert.Equal(t, "Врач", req.Reason)
	})

	t.Run("single day", func(t *testing.T) {
		req, err := parseLeaveArgs("u1", "SICK 05.02.2024")
		require.NoError(t, err)
		assert.Equal(t, "sick", req.Type)
		assert.Equal(t, "single-day", req.Category)
		assert.Equal(t, "2024-02-05", req.Date.String())
	})

	t.Run("custom", func(t *testing.T) {
		req, err := parseLeaveArgs("u1", "custom:Hajj_trip 01.06.2024-20.06.2024")
		require.NoError(t, err)
		assert.Equal(t, "custom", req.Type)
		assert.Equal(t, "Hajj trip", req.CustomType)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := parseLeaveArgs("u1", "annual")
		assert.ErrorIs(t, err, errBadArgs)
	})
}

func TestSplitArgs(t *testing.T) {
	period, ref := splitArgs("02.2024 @anna")
	assert.Equal(t, "02.2024", period)
	assert.Equal(t, "@anna", ref)

	period, ref = splitArgs("all")
	assert.Empty(t, period)
	assert.Equal(t, "all", ref)
}

func TestAuthorize(t *testing.T) {
	employee := &models.User{ID: "u1", Role: string(models.RoleEmployee)}
	admin := &models.User{ID: "a1", Role: string(models.RoleAdmin)}

	p := view.Params{View: view.Settings, Mode: view.ModeGlobal, Year: 2024, Month: time.February}

	got := authorize(employee, p)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, view.ModeUser, got.Mode)

	assert.Equal(t, p, authorize(admin, p))
}

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("wrap: %w", service.ErrLeaveNotPending)
	assert.Equal(t, "Ошибка: wrap: заявка уже рассмотрена", userMessage("Ошибка", err))
	assert.Equal(t, "Ошибка: внутренняя ошибка, попробуйте позже", userMessage("Ошибка", errors.New("db is down")))
}

func TestFormatMonthReport(t *testing.T) {
	s := recon.MonthSummary{
		Year:             2024,
		Month:            time.February,
		WorkingDaysCount: 21,
		DailyHours:       8,
		Users: []recon.UserSummary{{
			Name:          "Amira",
			RequiredHours: 168,
			WorkingDays:   21,
			Hours: recon.Reconciliation{
				RawHours: 16, LeaveHours: 3, ActualHours: 13, DeductedHours: 3, HasDeduction: true,
			},
		}},
	}

	text := formatMonthReport(s)
	assert.Contains(t, text, "Февраль 2024")
	assert.Contains(t, text, "Рабочих дней: 21")
	assert.Contains(t, text, "👤 Amira")
	assert.Contains(t, text, "отработано 16 ч, отпуск −3 ч, итого 13 ч из 168 ч")
}

func TestFormatCalendar(t *testing.T) {
	cfg := recon.DefaultConfig(2024, time.February)
	holidays := []recon.Holiday{{Name: "Founders day", Span: recon.SingleDayHoliday{Date: calendar.New(2024, time.February, 14)}}}
	days := recon.ClassifyMonth(2024, time.February, cfg, holidays, nil)

	text := formatCalendar(2024, time.February, days, calendar.New(2024, time.February, 10))
	assert.Contains(t, text, "🎉 14 Ср Праздник: Founders day")
	assert.Contains(t, text, "💤 02 Пт Выходной")
	assert.Contains(t, text, "10 Сб Рабочий день 👈")
	assert.Contains(t, text, "Рабочих дней: 24")
}

func TestFormatBulkResult(t *testing.T) {
	r := service.BulkResult{
		Succeeded: []string{"u1"},
		Failed:    map[string]error{"u2": service.ErrUserNotFound},
	}
	text := formatBulkResult(2024, "Февраль", r, map[string]string{"u2": "Boss"})
	assert.Contains(t, text, "✅ Успешно: 1")
	assert.Contains(t, text, "Boss: не удалось: пользователь не найден")
}
