package models

import (
	"time"

	"attendance-reconciler/internal/recon"
	"attendance-reconciler/pkg/calendar"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Leave - заявка на отпуск. Набор заполненных полей зависит от
// LeaveCategory: hourly - Date, StartTime, EndTime, HoursCount;
// single-day - Date; multiple-day - StartDate, EndDate.
type Leave struct {
	ID              string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	LeaveType       string        `gorm:"type:varchar(20);not null" json:"leave_type"`
	CustomLeaveType string        `json:"custom_leave_type"`
	LeaveCategory   string        `gorm:"type:varchar(20);not null" json:"leave_category"`
	Status          string        `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Date            calendar.Date `gorm:"type:varchar(10);index" json:"date"`
	StartDate       calendar.Date `gorm:"type:varchar(10);index" json:"start_date"`
	EndDate         calendar.Date `gorm:"type:varchar(10);index" json:"end_date"`
	StartTime       string        `gorm:"type:varchar(10)" json:"start_time"`
	EndTime         string        `gorm:"type:varchar(10)" json:"end_time"`
	HoursCount      float64       `gorm:"not null;default:0" json:"hours_count"`
	DaysCount       int           `gorm:"not null;default:0" json:"days_count"`
	Reason          string        `json:"reason"`
	ReviewerID      string        `gorm:"type:varchar(36)" json:"reviewer_id"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Leave) TableName() string {
	return "leaves"
}

func (l *Leave) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave пересчитывает число дней отпуска
func (l *Leave) BeforeSave(tx *gorm.DB) error {
	l.DaysCount = l.ToRecon().DaysCount()
	return nil
}

// IsValid проверяет валидность данных
func (l *Leave) IsValid() bool {
	if l.UserID == "" {
		return false
	}
	switch recon.LeaveType(l.LeaveType) {
	case recon.LeaveSick, recon.LeaveAnnual, recon.LeaveEmergency, recon.LeaveUnpaid,
		recon.LeaveMaternity, recon.LeavePaternity:
	case recon.LeaveCustom:
		if l.CustomLeaveType == "" {
			return false
		}
	default:
		return false
	}
	switch recon.LeaveStatus(l.Status) {
	case recon.LeavePending, recon.LeaveApproved, recon.LeaveRejected, recon.LeaveCancelled:
	default:
		return false
	}
	switch recon.LeaveCategory(l.LeaveCategory) {
	case recon.LeaveHourly:
		return !l.Date.IsZero() && l.StartTime != "" && l.EndTime != ""
	case recon.LeaveSingleDay:
		return !l.Date.IsZero()
	case recon.LeaveMultipleDay:
		return !l.StartDate.IsZero() && !l.EndDate.IsZero() && !l.EndDate.Before(l.StartDate)
	default:
		return false
	}
}

// IsPending проверяет, ожидает ли заявка решения
func (l *Leave) IsPending() bool {
	return l.Status == string(recon.LeavePending)
}

// ToRecon переводит запись в отпуск движка сверки.
// Нераспознанное время почасового отпуска дает нулевые часы.
func (l *Leave) ToRecon() recon.Leave {
	out := recon.Leave{
		ID:         l.ID,
		UserID:     l.UserID,
		Type:       recon.LeaveType(l.LeaveType),
		CustomType: l.CustomLeaveType,
		Status:     recon.LeaveStatus(l.Status),
		Reason:     l.Reason,
	}
	switch recon.LeaveCategory(l.LeaveCategory) {
	case recon.LeaveHourly:
		start, _ := calendar.ParseClock(l.StartTime)
		end, _ := calendar.ParseClock(l.EndTime)
		out.Span = recon.HourlyLeave{Date: l.Date, Start: start, End: end, HoursCount: l.HoursCount}
	case recon.LeaveMultipleDay:
		out.Span = recon.MultipleDayLeave{Start: l.StartDate, End: l.EndDate}
	case recon.LeaveSingleDay:
		out.Span = recon.SingleDayLeave{Date: l.Date}
	}
	return out
}
