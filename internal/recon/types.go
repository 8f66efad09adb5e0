// Package recon сводит рабочий календарь, праздники, отпуска и отметки
// посещаемости в классификацию дней, фактически отработанные часы и
// статистику за месяц/год.
//
// Все функции пакета чистые: без ввода-вывода и общего изменяемого
// состояния, их можно вызывать параллельно.
package recon

import (
	"math"
	"time"

	"attendance-reconciler/pkg/calendar"
)

type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeUser   Scope = "user"
)

// DefaultDailyHours - норма часов в рабочий день, если она не задана.
const DefaultDailyHours = 8.0

// defaultWorkingWeekdays - последний резерв, когда конфигурации нет вообще:
// все дни кроме пятницы.
var defaultWorkingWeekdays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Saturday,
}

// DefaultWorkingWeekdays возвращает копию зашитого набора рабочих дней недели.
func DefaultWorkingWeekdays() []time.Weekday {
	out := make([]time.Weekday, len(defaultWorkingWeekdays))
	copy(out, defaultWorkingWeekdays)
	return out
}

// DayOverride - явная отметка конкретного числа месяца.
type DayOverride struct {
	Day          int  `json:"day"`
	IsWorkingDay bool `json:"isWorkingDay"`
}

// WorkingDaysConfig - эффективная конфигурация рабочих дней на месяц.
type WorkingDaysConfig struct {
	Scope  Scope
	UserID string
	Year   int
	Month  time.Month
	// DefaultWorkingDaysOfWeek: nil - не задано, действует зашитый набор;
	// пустой срез - рабочих дней недели нет, остаются только отметки.
	DefaultWorkingDaysOfWeek []time.Weekday
	WorkingDays              []DayOverride
	DailyHours               float64

	// IsGlobal - конфигурация пользователя унаследована от глобальной.
	IsGlobal bool
	// IsDefault - не настроено ни глобально, ни для пользователя.
	IsDefault bool
}

// DefaultConfig - зашитая конфигурация для месяца без настроек.
func DefaultConfig(year int, month time.Month) *WorkingDaysConfig {
	return &WorkingDaysConfig{
		Scope:                    ScopeGlobal,
		Year:                     year,
		Month:                    month,
		DefaultWorkingDaysOfWeek: DefaultWorkingWeekdays(),
		DailyHours:               DefaultDailyHours,
		IsGlobal:                 true,
		IsDefault:                true,
	}
}

// IsWorkingDay: явная отметка дня, затем дни недели по умолчанию,
// затем зашитый набор. Работает и для nil.
func (c *WorkingDaysConfig) IsWorkingDay(d calendar.Date) bool {
	if c == nil {
		return containsWeekday(defaultWorkingWeekdays, d.Weekday())
	}

	if c.appliesTo(d) {
		for _, o := range c.WorkingDays {
			if o.Day == d.Day {
				return o.IsWorkingDay
			}
		}
	}

	weekdays := c.DefaultWorkingDaysOfWeek
	if weekdays == nil {
		weekdays = defaultWorkingWeekdays
	}
	return containsWeekday(weekdays, d.Weekday())
}

// Hours - норма часов в день; некорректное значение заменяется на 8.
func (c *WorkingDaysConfig) Hours() float64 {
	if c == nil || math.IsNaN(c.DailyHours) || c.DailyHours <= 0 || c.DailyHours > 24 {
		return DefaultDailyHours
	}
	return c.DailyHours
}

// appliesTo - отметки по числам относятся только к месяцу конфигурации.
func (c *WorkingDaysConfig) appliesTo(d calendar.Date) bool {
	if c.Year == 0 || c.Month == 0 {
		return true
	}
	return c.Year == d.Year && c.Month == d.Month
}

func containsWeekday(set []time.Weekday, wd time.Weekday) bool {
	for _, w := range set {
		if w == wd {
			return true
		}
	}
	return false
}

type HolidayType string

const (
	HolidayCompany   HolidayType = "company"
	HolidayNational  HolidayType = "national"
	HolidayReligious HolidayType = "religious"
	HolidayCustom    HolidayType = "custom"
)

type HolidayCategory string

const (
	HolidaySingleDay   HolidayCategory = "single-day"
	HolidayMultipleDay HolidayCategory = "multiple-day"
)

// HolidaySpan - SingleDayHoliday или MultipleDayHoliday.
type HolidaySpan interface {
	holidaySpan()
}

type SingleDayHoliday struct {
	Date calendar.Date
}

// MultipleDayHoliday - диапазон включительно с обеих сторон.
type MultipleDayHoliday struct {
	Start calendar.Date
	End   calendar.Date
}

func (SingleDayHoliday) holidaySpan()   {}
func (MultipleDayHoliday) holidaySpan() {}

type Holiday struct {
	ID          string
	Name        string
	Description string
	Type        HolidayType
	IsRecurring bool
	Span        HolidaySpan
}

func (h Holiday) Category() HolidayCategory {
	switch h.Span.(type) {
	case SingleDayHoliday:
		return HolidaySingleDay
	case MultipleDayHoliday:
		return HolidayMultipleDay
	default:
		return ""
	}
}

// Covers сравнивает на уровне календарных дней.
func (h Holiday) Covers(d calendar.Date) bool {
	switch s := h.Span.(type) {
	case SingleDayHoliday:
		return s.Date.Equal(d)
	case MultipleDayHoliday:
		return d.InRange(s.Start, s.End)
	default:
		return false
	}
}

// Bounds - первый и последний день праздника.
func (h Holiday) Bounds() (calendar.Date, calendar.Date) {
	switch s := h.Span.(type) {
	case SingleDayHoliday:
		return s.Date, s.Date
	case MultipleDayHoliday:
		return s.Start, s.End
	default:
		return calendar.Date{}, calendar.Date{}
	}
}

type LeaveType string

const (
	LeaveSick      LeaveType = "sick"
	LeaveAnnual    LeaveType = "annual"
	LeaveEmergency LeaveType = "emergency"
	LeaveUnpaid    LeaveType = "unpaid"
	LeaveMaternity LeaveType = "maternity"
	LeavePaternity LeaveType = "paternity"
	LeaveCustom    LeaveType = "custom"
)

type LeaveStatus string

const (
	LeavePending   LeaveStatus = "pending"
	LeaveApproved  LeaveStatus = "approved"
	LeaveRejected  LeaveStatus = "rejected"
	LeaveCancelled LeaveStatus = "cancelled"
)

// Active - заявка еще может повлиять на календарь.
func (s LeaveStatus) Active() bool {
	return s == LeavePending || s == LeaveApproved
}

type LeaveCategory string

const (
	LeaveHourly      LeaveCategory = "hourly"
	LeaveSingleDay   LeaveCategory = "single-day"
	LeaveMultipleDay LeaveCategory = "multiple-day"
)

// LeaveSpan - HourlyLeave, SingleDayLeave или MultipleDayLeave.
type LeaveSpan interface {
	leaveSpan()
}

// HourlyLeave - часть одного дня. HoursCount хранится как есть и
// очищается при сверке часов.
type HourlyLeave struct {
	Date       calendar.Date
	Start      calendar.Clock
	End        calendar.Clock
	HoursCount float64
}

type SingleDayLeave struct {
	Date calendar.Date
}

type MultipleDayLeave struct {
	Start calendar.Date
	End   calendar.Date
}

func (HourlyLeave) leaveSpan()      {}
func (SingleDayLeave) leaveSpan()   {}
func (MultipleDayLeave) leaveSpan() {}

type Leave struct {
	ID         string
	UserID     string
	Type       LeaveType
	CustomType string
	Status     LeaveStatus
	Reason     string
	Span       LeaveSpan
}

func (l Leave) Category() LeaveCategory {
	switch l.Span.(type) {
	case HourlyLeave:
		return LeaveHourly
	case SingleDayLeave:
		return LeaveSingleDay
	case MultipleDayLeave:
		return LeaveMultipleDay
	default:
		return ""
	}
}

// Covers: почасовой и однодневный - по точной дате,
// многодневный - по диапазону включительно.
func (l Leave) Covers(d calendar.Date) bool {
	switch s := l.Span.(type) {
	case HourlyLeave:
		return s.Date.Equal(d)
	case SingleDayLeave:
		return s.Date.Equal(d)
	case MultipleDayLeave:
		return d.InRange(s.Start, s.End)
	default:
		return false
	}
}

// DaysCount - число календарных дней отпуска; почасовой дает 0.
func (l Leave) DaysCount() int {
	switch s := l.Span.(type) {
	case SingleDayLeave:
		return 1
	case MultipleDayLeave:
		return calendar.DaysBetween(s.Start, s.End)
	default:
		return 0
	}
}

// HoursCount - сырое значение часов почасового отпуска.
func (l Leave) HoursCount() float64 {
	if s, ok := l.Span.(HourlyLeave); ok {
		return s.HoursCount
	}
	return 0
}

func (l Leave) Bounds() (calendar.Date, calendar.Date) {
	switch s := l.Span.(type) {
	case HourlyLeave:
		return s.Date, s.Date
	case SingleDayLeave:
		return s.Date, s.Date
	case MultipleDayLeave:
		return s.Start, s.End
	default:
		return calendar.Date{}, calendar.Date{}
	}
}

// TypeName - название типа, для custom - пользовательское.
func (l Leave) TypeName() string {
	if l.Type == LeaveCustom && l.CustomType != "" {
		return l.CustomType
	}
	return string(l.Type)
}

type AttendanceStatus string

const (
	AttendanceNotCheckedIn AttendanceStatus = "not-checked-in"
	AttendanceCheckedIn    AttendanceStatus = "checked-in"
	AttendanceCheckedOut   AttendanceStatus = "checked-out"
)

type AttendanceRecord struct {
	ID             string
	UserID         string
	Date           calendar.Date
	CheckIn        *time.Time
	CheckOut       *time.Time
	Status         AttendanceStatus
	HoursWorked    *float64
	ManuallyEdited bool
	Notes          string
	AdminNotes     string
}

// Present - сотрудник отметился в этот день.
func (r AttendanceRecord) Present() bool {
	return r.Status == AttendanceCheckedIn || r.Status == AttendanceCheckedOut
}

// Hours - отработанные часы: сохраненное значение, иначе разница
// между приходом и уходом. Некорректные значения дают 0.
func (r AttendanceRecord) Hours() float64 {
	if r.HoursWorked != nil {
		return sanitizeRaw(*r.HoursWorked)
	}
	if r.CheckIn != nil && r.CheckOut != nil {
		return sanitizeRaw(r.CheckOut.Sub(*r.CheckIn).Hours())
	}
	return 0
}

// DayKind - приоритет оформления дня: праздник > отпуск > выходной > рабочий.
type DayKind int

const (
	DayWorking DayKind = iota
	DayNonWorking
	DayLeave
	DayHoliday
)

func (k DayKind) String() string {
	switch k {
	case DayHoliday:
		return "holiday"
	case DayLeave:
		return "leave"
	case DayNonWorking:
		return "non-working"
	default:
		return "working"
	}
}

// DayClassification вычисляется на лету и не кэшируется.
type DayClassification struct {
	Date           calendar.Date
	IsWorkingDay   bool
	IsHoliday      bool
	HasLeave       bool
	HasHourlyLeave bool
	Holiday        *Holiday
	Leaves         []Leave
	Kind           DayKind
	Label          string
}

// Scheduled - день, в который ждут на работе.
func (c DayClassification) Scheduled() bool {
	return c.IsWorkingDay && !c.IsHoliday
}
