package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"attendance-reconciler/internal/recon"
	"attendance-reconciler/pkg/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolidayService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	single, err := env.holidays.Create(ctx, CreateHolidayRequest{Name: "Founders day", Start: calendar.MustParse("2024-02-22")})
	require.NoError(t, err)
	assert.Equal(t, recon.HolidaySingleDay, single.Category())
	assert.Equal(t, recon.HolidayCompany, single.Type)

	multi, err := env.holidays.Create(ctx, CreateHolidayRequest{
		Name: "Eid", Type: "religious",
		Start: calendar.MustParse("2024-04-09"), End: calendar.MustParse("2024-04-12"),
	})
	require.NoError(t, err)
	assert.Equal(t, recon.HolidayMultipleDay, multi.Category())

	_, err = env.holidays.Create(ctx, CreateHolidayRequest{
		Name: "broken", Start: calendar.MustParse("2024-04-12"), End: calendar.MustParse("2024-04-09"),
	})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = env.holidays.Create(ctx, CreateHolidayRequest{Start: calendar.MustParse("2024-04-12")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.holidays.Create(ctx, CreateHolidayRequest{Name: "odd", Type: "party", Start: calendar.MustParse("2024-04-12")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	april, err := env.holidays.ForMonth(ctx, 2024, time.April)
	require.NoError(t, err)
	require.Len(t, april, 1)
	assert.Equal(t, "Eid", april[0].Name)
}

func TestHolidayService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	h, err := env.holidays.Create(ctx, CreateHolidayRequest{Name: "Retreat", Start: calendar.MustParse("2024-02-20")})
	require.NoError(t, err)

	updated, err := env.holidays.Update(ctx, h.ID, CreateHolidayRequest{
		Name: "Retreat", Start: calendar.MustParse("2024-02-20"), End: calendar.MustParse("2024-02-22"),
	})
	require.NoError(t, err)
	assert.Equal(t, h.ID, updated.ID)
	assert.Equal(t, recon.HolidayMultipleDay, updated.Category())

	require.NoError(t, env.holidays.Delete(ctx, h.ID))
	assert.ErrorIs(t, env.holidays.Delete(ctx, h.ID), ErrHolidayNotFound)

	_, err = env.holidays.Update(ctx, h.ID, CreateHolidayRequest{Name: "x", Start: calendar.MustParse("2024-02-20")})
	assert.ErrorIs(t, err, ErrHolidayNotFound)
}

func TestHolidayService_RecurringExpansion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.holidays.Create(ctx, CreateHolidayRequest{
		Name: "National day", Type: "national", IsRecurring: true, Start: calendar.MustParse("2019-09-23"),
	})
	require.NoError(t, err)
	_, err = env.holidays.Create(ctx, CreateHolidayRequest{
		Name: "Winter break", IsRecurring: true,
		Start: calendar.MustParse("2020-12-30"), End: calendar.MustParse("2021-01-02"),
	})
	require.NoError(t, err)

	sep, err := env.holidays.ForMonth(ctx, 2024, time.September)
	require.NoError(t, err)
	require.Len(t, sep, 1)
	start, _ := sep[0].Bounds()
	assert.Equal(t, calendar.MustParse("2024-09-23"), start)

	// разрыв через Новый год: январь видит хвост прошлогоднего праздника
	jan, err := env.holidays.ForMonth(ctx, 2024, time.January)
	require.NoError(t, err)
	require.Len(t, jan, 1)
	s, e := jan[0].Bounds()
	assert.Equal(t, calendar.MustParse("2023-12-30"), s)
	assert.Equal(t, calendar.MustParse("2024-01-02"), e)

	dec, err := env.holidays.ForMonth(ctx, 2024, time.December)
	require.NoError(t, err)
	require.Len(t, dec, 1)
	s, e = dec[0].Bounds()
	assert.Equal(t, calendar.MustParse("2024-12-30"), s)
	assert.Equal(t, calendar.MustParse("2025-01-02"), e)

	assert.True(t, recon.ClassifyDay(calendar.MustParse("2024-01-01"), nil, jan, nil).IsHoliday)
}

func TestOccurrence_LeapDay(t *testing.T) {
	h := recon.Holiday{Name: "Leap", IsRecurring: true, Span: recon.SingleDayHoliday{Date: calendar.MustParse("2024-02-29")}}

	_, ok := Occurrence(h, 2025)
	assert.False(t, ok)

	occ, ok := Occurrence(h, 2028)
	require.True(t, ok)
	start, _ := occ.Bounds()
	assert.Equal(t, calendar.MustParse("2028-02-29"), start)

	_, ok = Occurrence(h, 2020)
	assert.False(t, ok, "no occurrences before the first one")
}

func TestHolidayService_ImportFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	body := `{"year": 2025, "months": [
		{"month": 1, "days": "1,2,3,4,5,6,7,8,11,12"},
		{"month": 5, "days": "1,2,3,4,8,9,10,11"}
	]}`

	res, err := env.holidays.ImportFile(ctx, strings.NewReader(body), "")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 4}, res)

	again, err := env.holidays.ImportFile(ctx, strings.NewReader(body), "")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 4}, again)

	jan, err := env.holidays.ForMonth(ctx, 2025, time.January)
	require.NoError(t, err)
	require.Len(t, jan, 2)
	s, e := jan[0].Bounds()
	assert.Equal(t, calendar.MustParse("2025-01-01"), s)
	assert.Equal(t, calendar.MustParse("2025-01-03"), e)
	assert.Equal(t, recon.HolidayNational, jan[0].Type)

	_, err = env.holidays.ImportFile(ctx, strings.NewReader(`{`), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHolidayService_ImportNational(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.holidays.ImportNational(ctx, "us", 2024)
	require.NoError(t, err)
	assert.Greater(t, res.Created, 5)

	again, err := env.holidays.ImportNational(ctx, "US", 2024)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, res.Created, again.Skipped)

	_, err = env.holidays.ImportNational(ctx, "atlantis", 2024)
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Contains(t, NationalCalendars(), "de")
}
