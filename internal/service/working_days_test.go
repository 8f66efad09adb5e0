package service

import (
	"context"
	"testing"
	"time"

	"attendance-reconciler/internal/recon"
	"attendance-reconciler/pkg/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkingDaysService_FallbackChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, 1, "Amira")

	// ничего не сохранено - встроенный график, не ошибка
	cfg, err := env.workingDays.Resolve(ctx, 2024, time.February, u.ID)
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault)
	assert.Equal(t, recon.DefaultWorkingWeekdays(), cfg.DefaultWorkingDaysOfWeek)
	assert.Equal(t, 8.0, cfg.DailyHours)

	// глобальный график есть - сотрудник получает его с отметкой IsGlobal
	_, err = env.workingDays.Save(ctx, SaveWorkingDaysRequest{
		Year: 2024, Month: 2, DefaultWorkingDaysOfWeek: []int{0, 1, 2, 3, 4}, DailyHours: 7,
	})
	require.NoError(t, err)

	cfg, err = env.workingDays.Resolve(ctx, 2024, time.February, u.ID)
	require.NoError(t, err)
	assert.True(t, cfg.IsGlobal)
	assert.False(t, cfg.IsDefault)
	assert.Equal(t, recon.ScopeGlobal, cfg.Scope)
	assert.Equal(t, 7.0, cfg.DailyHours)

	// персональный график важнее глобального
	_, err = env.workingDays.Save(ctx, SaveWorkingDaysRequest{
		UserID: u.ID, Year: 2024, Month: 2, DefaultWorkingDaysOfWeek: []int{1, 2, 3}, DailyHours: 6,
	})
	require.NoError(t, err)

	cfg, err = env.workingDays.Resolve(ctx, 2024, time.February, u.ID)
	require.NoError(t, err)
	assert.False(t, cfg.IsGlobal)
	assert.Equal(t, recon.ScopeUser, cfg.Scope)
	assert.Equal(t, u.ID, cfg.UserID)
	assert.Equal(t, 6.0, cfg.DailyHours)

	// другой месяц не затронут
	march, err := env.workingDays.Resolve(ctx, 2024, time.March, u.ID)
	require.NoError(t, err)
	assert.True(t, march.IsDefault)

	// сброс на глобальный
	require.NoError(t, env.workingDays.ApplyGlobalToUser(ctx, u.ID, 2024, time.February))
	cfg, err = env.workingDays.Resolve(ctx, 2024, time.February, u.ID)
	require.NoError(t, err)
	assert.True(t, cfg.IsGlobal)

	// повторный сброс ничего не меняет
	require.NoError(t, env.workingDays.ApplyGlobalToUser(ctx, u.ID, 2024, time.February))
}

func TestWorkingDaysService_SaveMergesOverrides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cfg, err := env.workingDays.Save(ctx, SaveWorkingDaysRequest{
		Year: 2024, Month: 2,
		DefaultWorkingDaysOfWeek: []int{4, 0, 1, 0},
		WorkingDays: []recon.DayOverride{
			{Day: 9, IsWorkingDay: true},
			{Day: 3, IsWorkingDay: true},
			{Day: 9, IsWorkingDay: false},
		},
		DailyHours: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Monday, time.Thursday}, cfg.DefaultWorkingDaysOfWeek)
	assert.Equal(t, []recon.DayOverride{{Day: 3, IsWorkingDay: true}, {Day: 9, IsWorkingDay: false}}, cfg.WorkingDays)

	// повторное сохранение заменяет запись, а не добавляет
	_, err = env.workingDays.Save(ctx, SaveWorkingDaysRequest{Year: 2024, Month: 2, DefaultWorkingDaysOfWeek: []int{1}, DailyHours: 4})
	require.NoError(t, err)
	got, err := env.configRepo.Get(ctx, 2024, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.DailyHours)
	assert.Empty(t, got.WorkingDays)

	// классификация после сохранения видит новый график
	resolved, err := env.workingDays.Resolve(ctx, 2024, time.February, "")
	require.NoError(t, err)
	assert.True(t, recon.ClassifyDay(calendar.MustParse("2024-02-05"), resolved, nil, nil).IsWorkingDay)
	assert.False(t, recon.ClassifyDay(calendar.MustParse("2024-02-06"), resolved, nil, nil).IsWorkingDay)
}

func TestWorkingDaysService_SaveWithoutWeekdays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.workingDays.Save(ctx, SaveWorkingDaysRequest{
		Year: 2024, Month: 2,
		WorkingDays: []recon.DayOverride{{Day: 5, IsWorkingDay: true}},
		DailyHours:  8,
	})
	require.NoError(t, err)

	cfg, err := env.workingDays.Resolve(ctx, 2024, time.February, "")
	require.NoError(t, err)
	assert.NotNil(t, cfg.DefaultWorkingDaysOfWeek)
	assert.Empty(t, cfg.DefaultWorkingDaysOfWeek)

	working := 0
	for _, c := range recon.ClassifyMonth(2024, time.February, cfg, nil, nil) {
		if c.Scheduled() {
			working++
		}
	}
	assert.Equal(t, 1, working)
	assert.True(t, recon.ClassifyDay(calendar.MustParse("2024-02-05"), cfg, nil, nil).IsWorkingDay)
}

func TestWorkingDaysService_SaveRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  SaveWorkingDaysRequest
		want error
	}{
		{"month out of range", SaveWorkingDaysRequest{Year: 2024, Month: 13, DailyHours: 8}, ErrInvalidInput},
		{"weekday out of range", SaveWorkingDaysRequest{Year: 2024, Month: 2, DefaultWorkingDaysOfWeek: []int{7}, DailyHours: 8}, ErrInvalidInput},
		{"zero hours", SaveWorkingDaysRequest{Year: 2024, Month: 2, DailyHours: 0}, ErrInvalidInput},
		{"too many hours", SaveWorkingDaysRequest{Year: 2024, Month: 2, DailyHours: 25}, ErrInvalidInput},
		{"no such day", SaveWorkingDaysRequest{Year: 2024, Month: 2, WorkingDays: []recon.DayOverride{{Day: 30}}, DailyHours: 8}, ErrInvalidInput},
		{"unknown user", SaveWorkingDaysRequest{UserID: "ghost", Year: 2024, Month: 2, DailyHours: 8}, ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.workingDays.Save(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWorkingDaysService_ApplyGlobalToAllUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var ids []string
	for i, name := range []string{"Amira", "Omar", "Layla"} {
		u := env.register(t, int64(i+1), name)
		ids = append(ids, u.ID)
	}
	for _, id := range ids[:2] {
		_, err := env.workingDays.Save(ctx, SaveWorkingDaysRequest{UserID: id, Year: 2024, Month: 2, DefaultWorkingDaysOfWeek: []int{1}, DailyHours: 6})
		require.NoError(t, err)
	}

	res, err := env.workingDays.ApplyGlobalToAllUsers(ctx, 2024, time.February)
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 3, "user without override still counts as reverted")
	assert.Empty(t, res.Failed)

	overrides, err := env.workingDays.UserOverrides(ctx, 2024, time.February)
	require.NoError(t, err)
	assert.Empty(t, overrides)
}

func TestWorkingDaysService_ApplyGlobalCollectsFailures(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := env.workingDays.ApplyGlobal(ctx, []string{"a", "b", "c"}, 2024, time.February)
	assert.Empty(t, res.Succeeded)
	assert.Len(t, res.Failed, 3)
	for _, err := range res.Failed {
		assert.Error(t, err)
	}
}
