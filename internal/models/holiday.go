package models

import (
	"time"

	"attendance-reconciler/internal/recon"
	"attendance-reconciler/pkg/calendar"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Holiday - праздник компании. Для single-day заполняется Date,
// для multiple-day - StartDate и EndDate. Даты хранятся как YYYY-MM-DD.
type Holiday struct {
	ID          string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string        `gorm:"not null" json:"name"`
	Description string        `json:"description"`
	Type        string        `gorm:"type:varchar(20);not null;default:'company'" json:"type"`
	HolidayType string        `gorm:"type:varchar(20);not null;index" json:"holiday_type"`
	IsRecurring bool          `gorm:"not null;default:false;index" json:"is_recurring"`
	Date        calendar.Date `gorm:"type:varchar(10);index" json:"date"`
	StartDate   calendar.Date `gorm:"type:varchar(10);index" json:"start_date"`
	EndDate     calendar.Date `gorm:"type:varchar(10);index" json:"end_date"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Holiday) TableName() string {
	return "holidays"
}

func (h *Holiday) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// IsValid проверяет валидность данных
func (h *Holiday) IsValid() bool {
	if h.Name == "" {
		return false
	}
	switch recon.HolidayType(h.Type) {
	case recon.HolidayCompany, recon.HolidayNational, recon.HolidayReligious, recon.HolidayCustom:
	default:
		return false
	}
	switch recon.HolidayCategory(h.HolidayType) {
	case recon.HolidaySingleDay:
		return !h.Date.IsZero()
	case recon.HolidayMultipleDay:
		return !h.StartDate.IsZero() && !h.EndDate.IsZero() && !h.EndDate.Before(h.StartDate)
	default:
		return false
	}
}

// ToRecon переводит запись в праздник движка сверки
func (h *Holiday) ToRecon() recon.Holiday {
	out := recon.Holiday{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		Type:        recon.HolidayType(h.Type),
		IsRecurring: h.IsRecurring,
	}
	if recon.HolidayCategory(h.HolidayType) == recon.HolidayMultipleDay {
		out.Span = recon.MultipleDayHoliday{Start: h.StartDate, End: h.EndDate}
	} else {
		out.Span = recon.SingleDayHoliday{Date: h.Date}
	}
	return out
}

// HolidayFromRecon - обратное преобразование для сохранения
func HolidayFromRecon(h recon.Holiday) *Holiday {
	out := &Holiday{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		Type:        string(h.Type),
		HolidayType: string(h.Category()),
		IsRecurring: h.IsRecurring,
	}
	switch s := h.Span.(type) {
	case recon.SingleDayHoliday:
		out.Date = s.Date
	case recon.MultipleDayHoliday:
		out.StartDate = s.Start
		out.EndDate = s.End
	}
	if out.Type == "" {
		out.Type = string(recon.HolidayCompany)
	}
	return out
}
