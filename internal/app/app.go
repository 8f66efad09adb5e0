// Package app собирает репозитории и сервисы поверх одной базы.
// Используется ботом и CLI.
package app

import (
	"fmt"
	"time"

	"attendance-reconciler/internal/config"
	"attendance-reconciler/internal/repository"
	"attendance-reconciler/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type App struct {
	DB          *gorm.DB
	Users       *service.UserService
	WorkingDays *service.WorkingDaysService
	Holidays    *service.HolidayService
	Leaves      *service.LeaveService
	Attendance  *service.AttendanceService
	Reports     *service.ReportService
}

// New подключается к базе из cfg и создает сервисы. now == nil - системные часы.
func New(cfg *config.BotConfig, now func() time.Time, logger *logrus.Logger) (*App, error) {
	db, err := repository.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	a, err := Build(db, cfg, now, logger)
	if err != nil {
		_ = repository.Close(db)
		return nil, err
	}
	return a, nil
}

// Build создает репозитории (с миграцией) и сервисы поверх открытой базы
func Build(db *gorm.DB, cfg *config.BotConfig, now func() time.Time, logger *logrus.Logger) (*App, error) {
	userRepo, err := repository.NewGormUserRepository(db, logger)
	if err != nil {
		return nil, fmt.Errorf("create user repository: %w", err)
	}
	configRepo, err := repository.NewGormWorkingDaysConfigRepository(db, logger)
	if err != nil {
		return nil, fmt.Errorf("create working days repository: %w", err)
	}
	holidayRepo, err := repository.NewGormHolidayRepository(db, logger)
	if err != nil {
		return nil, fmt.Errorf("create holiday repository: %w", err)
	}
	leaveRepo, err := repository.NewGormLeaveRepository(db, logger)
	if err != nil {
		return nil, fmt.Errorf("create leave repository: %w", err)
	}
	attendanceRepo, err := repository.NewGormAttendanceRepository(db, logger)
	if err != nil {
		return nil, fmt.Errorf("create attendance repository: %w", err)
	}

	loc := cfg.Location()
	a := &App{DB: db}
	a.Users = service.NewUserService(userRepo, logger)
	a.WorkingDays = service.NewWorkingDaysService(configRepo, userRepo, cfg.DefaultDailyHours, logger)
	a.Holidays = service.NewHolidayService(holidayRepo, logger)
	a.Leaves = service.NewLeaveService(leaveRepo, userRepo, logger)
	a.Attendance = service.NewAttendanceService(attendanceRepo, now, loc, logger)
	a.Reports = service.NewReportService(a.Users, a.WorkingDays, a.Holidays, a.Leaves, a.Attendance, now, loc, logger)
	return a, nil
}

func (a *App) Close() error {
	return repository.Close(a.DB)
}
