package service

import (
	"context"
	"io"
	"testing"
	"time"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// testEnv - сервисы поверх SQLite в памяти с фиксированными часами
type testEnv struct {
	users       *UserService
	workingDays *WorkingDaysService
	holidays    *HolidayService
	leaves      *LeaveService
	attendance  *AttendanceService
	reports     *ReportService

	configRepo *repository.GormWorkingDaysConfigRepository
	now        time.Time
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := quietLogger()

	db, err := repository.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", logger)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	userRepo, err := repository.NewGormUserRepository(db, logger)
	require.NoError(t, err)
	configRepo, err := repository.NewGormWorkingDaysConfigRepository(db, logger)
	require.NoError(t, err)
	holidayRepo, err := repository.NewGormHolidayRepository(db, logger)
	require.NoError(t, err)
	leaveRepo, err := repository.NewGormLeaveRepository(db, logger)
	require.NoError(t, err)
	attendanceRepo, err := repository.NewGormAttendanceRepository(db, logger)
	require.NoError(t, err)

	env := &testEnv{
		configRepo: configRepo,
		now:        time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }

	env.users = NewUserService(userRepo, logger)
	env.workingDays = NewWorkingDaysService(configRepo, userRepo, 8, logger)
	env.holidays = NewHolidayService(holidayRepo, logger)
	env.leaves = NewLeaveService(leaveRepo, userRepo, logger)
	env.attendance = NewAttendanceService(attendanceRepo, clock, time.UTC, logger)
	env.reports = NewReportService(env.users, env.workingDays, env.holidays, env.leaves, env.attendance, clock, time.UTC, logger)
	return env
}

func (e *testEnv) register(t *testing.T, chatID int64, name string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), chatID, "", name, "")
	require.NoError(t, err)
	return u
}
