package repository

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	ErrNotFound      = errors.New("запись не найдена")
	ErrInvalidData   = errors.New("некорректные данные")
	ErrAlreadyExists = errors.New("запись уже существует")
)

// Open подключается к базе. sqlite - файл или DSN, postgres - строка
// подключения pgx.
func Open(driver, dsn string, logger *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// SQLite по умолчанию не проверяет внешние ключи
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			logger.WithError(err).Warn("Failed to enable foreign keys")
		}
	}

	logger.WithField("driver", driver).Info("Database connected")
	return db, nil
}

// Close закрывает пул соединений
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
