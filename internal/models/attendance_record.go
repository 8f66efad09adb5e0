package models

import (
	"fmt"
	"time"

	"attendance-reconciler/internal/recon"
	"attendance-reconciler/pkg/calendar"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttendanceRecord - отметка сотрудника за календарный день
type AttendanceRecord struct {
	ID     string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID string        `gorm:"type:varchar(36);not null;uniqueIndex:idx_attendance_user_date" json:"user_id"`
	Date   calendar.Date `gorm:"type:varchar(10);not null;uniqueIndex:idx_attendance_user_date;index" json:"date"`

	// Время прихода/ухода
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`

	Status         string   `gorm:"type:varchar(20);not null;default:'not-checked-in';index" json:"status"`
	HoursWorked    *float64 `json:"hours_worked"`
	ManuallyEdited bool     `gorm:"not null;default:false" json:"manually_edited"`

	Notes      string    `json:"notes"`
	AdminNotes string    `json:"admin_notes"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

func (a *AttendanceRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// UpdateCalculatedFields обновляет статус и отработанные часы.
// У записей, исправленных администратором, ничего не пересчитывается.
func (a *AttendanceRecord) UpdateCalculatedFields() {
	if a.ManuallyEdited {
		if a.Status == "" {
			a.Status = a.DeriveStatus()
		}
		return
	}

	a.Status = a.DeriveStatus()
	if hours, ok := a.SpanHours(); ok {
		a.HoursWorked = &hours
	}
}

// DeriveStatus - статус по отметкам прихода и ухода
func (a *AttendanceRecord) DeriveStatus() string {
	switch {
	case a.CheckIn != nil && a.CheckOut != nil:
		return string(recon.AttendanceCheckedOut)
	case a.CheckIn != nil:
		return string(recon.AttendanceCheckedIn)
	default:
		return string(recon.AttendanceNotCheckedIn)
	}
}

// SpanHours - часы между приходом и уходом, округленные до сотых
func (a *AttendanceRecord) SpanHours() (float64, bool) {
	if a.CheckIn == nil || a.CheckOut == nil {
		return 0, false
	}
	hours := recon.Round2(a.CheckOut.Sub(*a.CheckIn).Hours())
	if hours < 0 {
		hours = 0
	}
	return hours, true
}

// IsActive - сотрудник пришел и еще не ушел
func (a *AttendanceRecord) IsActive() bool {
	return a.Status == string(recon.AttendanceCheckedIn)
}

// FormatTime форматирует время для отображения
func (a *AttendanceRecord) FormatTime(loc *time.Location) string {
	if a.CheckIn == nil {
		return "⏰ Нет отметки"
	}
	in := a.CheckIn.In(loc).Format("15:04")
	if a.CheckOut == nil {
		return fmt.Sprintf("⏰ Пришел: %s", in)
	}
	return fmt.Sprintf("⏰ Пришел: %s | Ушел: %s", in, a.CheckOut.In(loc).Format("15:04"))
}

// IsValid проверяет валидность данных
func (a *AttendanceRecord) IsValid() bool {
	if a.UserID == "" || a.Date.IsZero() {
		return false
	}
	switch recon.AttendanceStatus(a.Status) {
	case recon.AttendanceNotCheckedIn, recon.AttendanceCheckedIn, recon.AttendanceCheckedOut:
	default:
		return false
	}
	if a.CheckIn != nil && a.CheckOut != nil && a.CheckOut.Before(*a.CheckIn) {
		return false
	}
	return true
}

// ToRecon переводит запись в отметку движка сверки
func (a *AttendanceRecord) ToRecon() recon.AttendanceRecord {
	return recon.AttendanceRecord{
		ID:             a.ID,
		UserID:         a.UserID,
		Date:           a.Date,
		CheckIn:        a.CheckIn,
		CheckOut:       a.CheckOut,
		Status:         recon.AttendanceStatus(a.Status),
		HoursWorked:    a.HoursWorked,
		ManuallyEdited: a.ManuallyEdited,
		Notes:          a.Notes,
		AdminNotes:     a.AdminNotes,
	}
}
