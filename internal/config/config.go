package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type BotConfig struct {
	TelegramToken     string
	BaseAdminChatID   int64
	DatabaseDriver    string
	DatabaseURL       string
	LogLevel          string
	Timezone          string
	DefaultDailyHours float64
	BotDebug          bool
}

var instance *BotConfig
var once sync.Once

// GetBotConfig читает конфигурацию бота один раз; без токена или
// админского чата бот не запускается.
func GetBotConfig() *BotConfig {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Warnf("could not load .env file: %s", err.Error())
		}

		cfg, err := fromEnv()
		if err != nil {
			logrus.Fatal(err)
		}

		if cfg.TelegramToken == "" {
			logrus.Fatal("could not get bot token")
		}
		if cfg.BaseAdminChatID == -2 {
			logrus.Fatal("could not get admin chat id")
		}

		instance = cfg
	})

	return instance
}

// Load читает конфигурацию без требований к боту. Используется CLI.
func Load() (*BotConfig, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*BotConfig, error) {
	cfg := &BotConfig{
		TelegramToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		BaseAdminChatID:   getEnvAsInt("BASE_ADMIN_CHAT_ID", -2),
		DatabaseDriver:    getEnv("DATABASE_DRIVER", DriverSQLite),
		DatabaseURL:       getEnv("DATABASE_URL", "attendance.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Timezone:          getEnv("TIMEZONE", "UTC"),
		DefaultDailyHours: getEnvAsFloat("DEFAULT_DAILY_HOURS", 8),
		BotDebug:          getEnvAsBool("BOT_DEBUG", false),
	}

	if cfg.DatabaseDriver != DriverSQLite && cfg.DatabaseDriver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("could not get db url")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.DefaultDailyHours <= 0 || cfg.DefaultDailyHours > 24 {
		return nil, fmt.Errorf("invalid default daily hours %v", cfg.DefaultDailyHours)
	}

	return cfg, nil
}

// Location - часовой пояс компании, от него считаются "сегодня" и
// границы будущих дней в отчетах.
func (c *BotConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseFloat(valStr, 64); err == nil {
		return val
	}

	return defaultVal
}
