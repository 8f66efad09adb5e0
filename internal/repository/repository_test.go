package repository

import (
	"context"
	"io"
	"testing"
	"time"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/recon"
	"attendance-reconciler/pkg/calendar"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestWorkingDaysConfigRepository_UpsertKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormWorkingDaysConfigRepository(newTestDB(t), quietLogger())
	require.NoError(t, err)

	cfg := &models.WorkingDaysConfig{
		Scope:                    string(recon.ScopeGlobal),
		Year:                     2024,
		Month:                    2,
		DefaultWorkingDaysOfWeek: []int{0, 1, 2, 3, 4, 6},
		DailyHours:               8,
	}
	require.NoError(t, repo.Upsert(ctx, cfg))

	again := &models.WorkingDaysConfig{
		Scope:                    string(recon.ScopeGlobal),
		Year:                     2024,
		Month:                    2,
		DefaultWorkingDaysOfWeek: []int{0, 1, 2, 3, 4},
		WorkingDays:              []recon.DayOverride{{Day: 3, IsWorkingDay: true}},
		DailyHours:               7,
	}
	require.NoError(t, repo.Upsert(ctx, again))

	got, err := repo.Get(ctx, 2024, 2, "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7.0, got.DailyHours)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, []int(got.DefaultWorkingDaysOfWeek))
	assert.Equal(t, []recon.DayOverride{{Day: 3, IsWorkingDay: true}}, []recon.DayOverride(got.WorkingDays))

	var count int64
	require.NoError(t, repo.db.Model(&models.WorkingDaysConfig{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWorkingDaysConfigRepository_GetMissing(t *testing.T) {
	repo, err := NewGormWorkingDaysConfigRepository(newTestDB(t), quietLogger())
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), 2024, 2, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestWorkingDaysConfigRepository_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormWorkingDaysConfigRepository(newTestDB(t), quietLogger())
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, &models.WorkingDaysConfig{
		Scope: string(recon.ScopeUser), UserID: "u1", Year: 2024, Month: 2,
		DefaultWorkingDaysOfWeek: []int{1, 2, 3}, DailyHours: 6,
	}))

	deleted, err := repo.Delete(ctx, 2024, 2, "u1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, 2024, 2, "u1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestWorkingDaysConfigRepository_RejectsInvalid(t *testing.T) {
	repo, err := NewGormWorkingDaysConfigRepository(newTestDB(t), quietLogger())
	require.NoError(t, err)

	err = repo.Upsert(context.Background(), &models.WorkingDaysConfig{Scope: string(recon.ScopeUser), Year: 2024, Month: 13, DailyHours: 8})
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestHolidayRepository_ListByMonth(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormHolidayRepository(newTestDB(t), quietLogger())
	require.NoError(t, err)

	for _, h := range []*models.Holiday{
		{Name: "Founders day", Type: "company", HolidayType: "single-day", Date: calendar.MustParse("2024-02-22")},
		{Name: "New year break", Type: "company", HolidayType: "multiple-day",
			StartDate: calendar.MustParse("2024-01-30"), EndDate: calendar.MustParse("2024-02-02")},
		{Name: "March", Type: "company", HolidayType: "single-day", Date: calendar.MustParse("2024-03-01")},
		{Name: "National day", Type: "national", HolidayType: "single-day", IsRecurring: true, Date: calendar.MustParse("2019-09-23")},
	} {
		require.NoError(t, repo.Create(ctx, h))
	}

	got, err := repo.List(ctx, 2024, 2)
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, h := range got {
		names = append(names, h.Name)
	}
	assert.ElementsMatch(t, []string{"Founders day", "New year break", "National day"}, names)

	year, err := repo.List(ctx, 2024, 0)
	require.NoError(t, err)
	assert.Len(t, year, 4)

	exists, err := repo.ExistsOn(ctx, "Founders day", calendar.MustParse("2024-02-22"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHolidayRepository_RejectsInvertedRange(t *testing.T) {
	repo, err := NewGormHolidayRepository(newTestDB(t), quietLogger())
	require.NoError(t, err)

	err = repo.Create(context.Background(), &models.Holiday{
		Name: "broken", Type: "company", HolidayType: "multiple-day",
		StartDate: calendar.MustParse("2024-03-12"), EndDate: calendar.MustParse("2024-03-10"),
	})
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestLeaveRepository_List(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormLeaveRepository(newTestDB(t), quietLogger())
	require.NoError(t, err)

	leaves := []*models.Leave{
		{UserID: "u1", LeaveType: "annual", LeaveCategory: "multiple-day", Status: "approved",
			StartDate: calendar.MustParse("2024-01-29"), EndDate: calendar.MustParse("2024-02-02")},
		{UserID: "u1", LeaveType: "emergency", LeaveCategory: "hourly", Status: "pending",
			Date: calendar.MustParse("2024-02-05"), StartTime: "09:00 AM", EndTime: "12:00 PM", HoursCount: 3},
		{UserID: "u2", LeaveType: "sick", LeaveCategory: "single-day", Status: "approved",
			Date: calendar.MustParse("2024-03-05")},
	}
	for _, l := range leaves {
		require.NoError(t, repo.Create(ctx, l))
	}
	assert.Equal(t, 5, leaves[0].DaysCount)

	feb, err := repo.List(ctx, LeaveFilter{Year: 2024, Month: 2})
	require.NoError(t, err)
	assert.Len(t, feb, 2)

	approved, err := repo.List(ctx, LeaveFilter{Year: 2024, Statuses: []recon.LeaveStatus{recon.LeaveApproved}})
	require.NoError(t, err)
	assert.Len(t, approved, 2)

	u2, err := repo.List(ctx, LeaveFilter{UserID: "u2"})
	require.NoError(t, err)
	require.Len(t, u2, 1)
	assert.Equal(t, "sick", u2[0].LeaveType)

	hourly := feb[1].ToRecon()
	if feb[0].LeaveCategory == "hourly" {
		hourly = feb[0].ToRecon()
	}
	assert.Equal(t, 3.0, hourly.HoursCount())
}

func TestAttendanceRepository_SaveDerivesHours(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormAttendanceRepository(newTestDB(t), quietLogger())
	require.NoError(t, err)

	in := time.Date(2024, 2, 5, 8, 0, 0, 0, time.UTC)
	out := in.Add(7*time.Hour + 30*time.Minute)
	rec := &models.AttendanceRecord{UserID: "u1", Date: calendar.MustParse("2024-02-05"), CheckIn: &in}
	require.NoError(t, repo.Save(ctx, rec))
	assert.Equal(t, string(recon.AttendanceCheckedIn), rec.Status)

	rec.CheckOut = &out
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.GetByUserAndDate(ctx, "u1", calendar.MustParse("2024-02-05"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, string(recon.AttendanceCheckedOut), got.Status)
	require.NotNil(t, got.HoursWorked)
	assert.Equal(t, 7.5, *got.HoursWorked)

	dup := &models.AttendanceRecord{UserID: "u1", Date: calendar.MustParse("2024-02-05")}
	assert.ErrorIs(t, repo.Save(ctx, dup), ErrAlreadyExists)

	list, err := repo.List(ctx, AttendanceFilter{From: calendar.MustParse("2024-02-01"), To: calendar.MustParse("2024-02-29")})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	none, err := repo.List(ctx, AttendanceFilter{From: calendar.MustParse("2024-03-01")})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormUserRepository(newTestDB(t), quietLogger())
	require.NoError(t, err)

	u := &models.User{ChatID: 42, FirstName: "Amira"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.ErrorIs(t, repo.Create(ctx, &models.User{ChatID: 42, FirstName: "Dup"}), ErrAlreadyExists)

	require.NoError(t, repo.UpdateRole(ctx, u.ID, models.RoleAdmin))
	admins, err := repo.GetAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, u.ID, admins[0].ID)

	missing, err := repo.GetByChatID(ctx, 7)
	assert.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, repo.Delete(ctx, "nope"), ErrNotFound)
}
