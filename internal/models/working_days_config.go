package models

import (
	"time"

	"attendance-reconciler/internal/recon"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WorkingDaysConfig - график рабочих дней на месяц.
// Глобальная запись хранится с пустым UserID, поэтому уникальный
// индекс (scope, user_id, year, month) работает и для нее.
type WorkingDaysConfig struct {
	ID                       string                                 `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Scope                    string                                 `gorm:"type:varchar(10);not null;uniqueIndex:idx_working_days_period" json:"scope"`
	UserID                   string                                 `gorm:"type:varchar(36);not null;default:'';uniqueIndex:idx_working_days_period" json:"user_id"`
	Year                     int                                    `gorm:"not null;uniqueIndex:idx_working_days_period" json:"year"`
	Month                    int                                    `gorm:"not null;check:month >= 1 AND month <= 12;uniqueIndex:idx_working_days_period" json:"month"`
	DefaultWorkingDaysOfWeek datatypes.JSONSlice[int]               `gorm:"not null" json:"default_working_days_of_week"`
	WorkingDays              datatypes.JSONSlice[recon.DayOverride] `json:"working_days"`
	DailyHours               float64                                `gorm:"not null;default:8" json:"daily_hours"`
	CreatedAt                time.Time                              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time                              `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WorkingDaysConfig) TableName() string {
	return "working_days_configs"
}

func (c *WorkingDaysConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsValid проверяет валидность данных
func (c *WorkingDaysConfig) IsValid() bool {
	if c.Scope != string(recon.ScopeGlobal) && c.Scope != string(recon.ScopeUser) {
		return false
	}
	if c.Scope == string(recon.ScopeUser) && c.UserID == "" {
		return false
	}
	if c.Scope == string(recon.ScopeGlobal) && c.UserID != "" {
		return false
	}
	if c.Year < 2000 || c.Year > 2100 {
		return false
	}
	if c.Month < 1 || c.Month > 12 {
		return false
	}
	if c.DailyHours <= 0 || c.DailyHours > 24 {
		return false
	}
	for _, wd := range c.DefaultWorkingDaysOfWeek {
		if wd < 0 || wd > 6 {
			return false
		}
	}
	for _, o := range c.WorkingDays {
		if o.Day < 1 || o.Day > 31 {
			return false
		}
	}
	return true
}

// ToRecon переводит запись в конфигурацию движка сверки
func (c *WorkingDaysConfig) ToRecon() *recon.WorkingDaysConfig {
	weekdays := make([]time.Weekday, 0, len(c.DefaultWorkingDaysOfWeek))
	for _, wd := range c.DefaultWorkingDaysOfWeek {
		weekdays = append(weekdays, time.Weekday(wd))
	}
	return &recon.WorkingDaysConfig{
		Scope:                    recon.Scope(c.Scope),
		UserID:                   c.UserID,
		Year:                     c.Year,
		Month:                    time.Month(c.Month),
		DefaultWorkingDaysOfWeek: weekdays,
		WorkingDays:              append([]recon.DayOverride(nil), c.WorkingDays...),
		DailyHours:               c.DailyHours,
	}
}

// WorkingDaysConfigFromRecon - обратное преобразование для сохранения
func WorkingDaysConfigFromRecon(cfg *recon.WorkingDaysConfig) *WorkingDaysConfig {
	weekdays := make([]int, 0, len(cfg.DefaultWorkingDaysOfWeek))
	for _, wd := range cfg.DefaultWorkingDaysOfWeek {
		weekdays = append(weekdays, int(wd))
	}
	return &WorkingDaysConfig{
		Scope:                    string(cfg.Scope),
		UserID:                   cfg.UserID,
		Year:                     cfg.Year,
		Month:                    int(cfg.Month),
		DefaultWorkingDaysOfWeek: weekdays,
		WorkingDays:              append([]recon.DayOverride(nil), cfg.WorkingDays...),
		DailyHours:               cfg.DailyHours,
	}
}
