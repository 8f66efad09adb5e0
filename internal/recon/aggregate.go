package recon

import (
	"time"

	"attendance-reconciler/pkg/calendar"

	"github.com/shopspring/decimal"
)

type UserRef struct {
	ID   string
	Name string
}

// MonthInput - все, что нужно для сводки за месяц.
// AsOf задается явно, чтобы граница "будущих" дней не зависела от часов машины.
type MonthInput struct {
	Year         int
	Month        time.Month
	Users        []UserRef
	Attendance   []AttendanceRecord
	GlobalConfig *WorkingDaysConfig
	// UserConfigs - персональные конфигурации, ключ - ID сотрудника.
	UserConfigs map[string]*WorkingDaysConfig
	Holidays    []Holiday
	Leaves      []Leave
	AsOf        time.Time
	Location    *time.Location
}

type DaySummary struct {
	Classification DayClassification
	IsFuture       bool
	ScheduledUsers int
	PresentCount   int
	OnLeaveCount   int
	// AttendanceRate имеет смысл только при HasRate (прошедший день).
	AttendanceRate float64
	HasRate        bool
}

type UserDay struct {
	Date           calendar.Date
	Scheduled      bool
	Present        bool
	OnLeave        bool
	IsFuture       bool
	Reconciliation Reconciliation
}

type UserSummary struct {
	UserID        string
	Name          string
	Config        *WorkingDaysConfig
	CustomConfig  bool
	WorkingDays   int
	DailyHours    float64
	RequiredHours float64
	AttendedDays  int
	AbsentDays    int
	LeaveDays     int
	// Hours - сверка на уровне месяца: сумма дневных сверок, поэтому
	// итог всегда равен сумме по дням.
	Hours          Reconciliation
	AttendanceRate float64
	Days           []UserDay
}

type MonthSummary struct {
	Year             int
	Month            time.Month
	Days             []DaySummary
	WorkingDaysCount int
	DailyHours       float64
	RequiredHours    float64
	Users            []UserSummary
	WorkedHours      float64
	ActualHours      float64
	DeductedHours    float64
	AttendanceRate   float64
}

// AggregateMonth сворачивает классификацию, сопоставление отпусков и
// сверку часов по всем дням месяца. Дни идут по возрастанию.
// Учитываются только одобренные отпуска.
func AggregateMonth(in MonthInput) MonthSummary {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	today := calendar.FromTime(in.AsOf, loc)

	first := calendar.New(in.Year, in.Month, 1)
	n := calendar.DaysIn(first.Year, first.Month)

	global := in.GlobalConfig
	if global == nil {
		global = DefaultConfig(first.Year, first.Month)
	}

	approved := FilterLeaves(in.Leaves, Approved)
	leavesByUser := ByUser(approved)
	records := indexAttendance(in.Attendance, first, n)

	summary := MonthSummary{
		Year:       first.Year,
		Month:      first.Month,
		Days:       make([]DaySummary, 0, n),
		DailyHours: global.Hours(),
		Users:      make([]UserSummary, 0, len(in.Users)),
	}

	users := make([]*userAcc, 0, len(in.Users))
	for _, u := range in.Users {
		cfg, custom := effectiveConfig(in.UserConfigs[u.ID], global)
		users = append(users, &userAcc{
			summary: UserSummary{
				UserID:       u.ID,
				Name:         u.Name,
				Config:       cfg,
				CustomConfig: custom,
				DailyHours:   cfg.Hours(),
				Days:         make([]UserDay, 0, n),
			},
			leaves: leavesByUser[u.ID],
		})
	}

	rateSum := decimal.Zero
	rateDays := 0

	for i := 0; i < n; i++ {
		d := first.AddDays(i)
		day := DaySummary{
			Classification: ClassifyDay(d, global, in.Holidays, approved),
			IsFuture:       d.After(today),
		}
		if day.Classification.Scheduled() {
			summary.WorkingDaysCount++
		}

		for _, u := range users {
			ud := u.visit(d, day.IsFuture, in.Holidays, records[recordKey{u.summary.UserID, d}])
			if ud.Scheduled && !ud.OnLeave {
				day.ScheduledUsers++
				if ud.Present {
					day.PresentCount++
				}
			}
			if ud.OnLeave {
				day.OnLeaveCount++
			}
		}

		if !day.IsFuture {
			day.HasRate = true
			day.AttendanceRate = rate(day.PresentCount, day.ScheduledUsers)
			rateSum = rateSum.Add(decimal.NewFromFloat(day.AttendanceRate))
			rateDays++
		}
		summary.Days = append(summary.Days, day)
	}

	worked, actual, deducted, required := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, u := range users {
		s := u.finish()
		worked = worked.Add(decimal.NewFromFloat(s.Hours.RawHours))
		actual = actual.Add(decimal.NewFromFloat(s.Hours.ActualHours))
		deducted = deducted.Add(decimal.NewFromFloat(s.Hours.DeductedHours))
		required = required.Add(decimal.NewFromFloat(s.RequiredHours))
		summary.Users = append(summary.Users, s)
	}

	summary.WorkedHours = round2(worked)
	summary.ActualHours = round2(actual)
	summary.DeductedHours = round2(deducted)
	summary.RequiredHours = round2(required)
	if rateDays > 0 {
		summary.AttendanceRate = rateSum.Div(decimal.NewFromInt(int64(rateDays))).Round(4).InexactFloat64()
	}
	return summary
}

// AggregateYear - двенадцать независимых месячных сводок.
func AggregateYear(months [12]MonthInput) [12]MonthSummary {
	var out [12]MonthSummary
	for i, in := range months {
		out[i] = AggregateMonth(in)
	}
	return out
}

type userAcc struct {
	summary  UserSummary
	leaves   []Leave
	hours    hoursAcc
	pastDays int
}

// hoursAcc складывает дневные сверки в месячную
type hoursAcc struct {
	raw, leave, actual, deducted decimal.Decimal
	overdrawn                    bool
}

func (a *hoursAcc) add(r Reconciliation) {
	a.raw = a.raw.Add(decimal.NewFromFloat(r.RawHours))
	a.leave = a.leave.Add(decimal.NewFromFloat(r.LeaveHours))
	a.actual = a.actual.Add(decimal.NewFromFloat(r.ActualHours))
	a.deducted = a.deducted.Add(decimal.NewFromFloat(r.DeductedHours))
	a.overdrawn = a.overdrawn || r.Overdrawn
}

func (a *hoursAcc) total() Reconciliation {
	return Reconciliation{
		RawHours:      round2(a.raw),
		LeaveHours:    round2(a.leave),
		ActualHours:   round2(a.actual),
		DeductedHours: round2(a.deducted),
		HasDeduction:  a.leave.IsPositive(),
		Overdrawn:     a.overdrawn,
	}
}

func (u *userAcc) visit(d calendar.Date, future bool, holidays []Holiday, recs []AttendanceRecord) UserDay {
	c := ClassifyDay(d, u.summary.Config, holidays, u.leaves)

	raw := decimal.Zero
	present := false
	for _, r := range recs {
		raw = raw.Add(decimal.NewFromFloat(r.Hours()))
		present = present || r.Present()
	}

	ud := UserDay{
		Date:      d,
		Scheduled: c.Scheduled(),
		Present:   present,
		OnLeave:   HasFullDayLeave(c.Leaves),
		IsFuture:  future,
	}
	// Почасовой отпуск в будущем еще не из чего вычитать
	var hourly []Leave
	if !future {
		hourly = FilterLeaves(c.Leaves, HourlyOnly)
	}
	ud.Reconciliation = ReconcileHours(raw.InexactFloat64(), hourly)
	u.hours.add(ud.Reconciliation)

	if ud.Scheduled {
		u.summary.WorkingDays++
		switch {
		case ud.OnLeave:
			u.summary.LeaveDays++
		case future:
		case present:
			u.summary.AttendedDays++
			u.pastDays++
		default:
			u.summary.AbsentDays++
			u.pastDays++
		}
	}

	u.summary.Days = append(u.summary.Days, ud)
	return ud
}

func (u *userAcc) finish() UserSummary {
	s := u.summary
	s.RequiredHours = round2(decimal.NewFromInt(int64(s.WorkingDays)).Mul(decimal.NewFromFloat(s.DailyHours)))
	s.Hours = u.hours.total()
	s.AttendanceRate = rate(s.AttendedDays, u.pastDays)
	return s
}

// effectiveConfig - персональная конфигурация или глобальная с отметкой IsGlobal.
func effectiveConfig(user, global *WorkingDaysConfig) (*WorkingDaysConfig, bool) {
	if user != nil {
		return user, true
	}
	inherited := *global
	inherited.IsGlobal = true
	return &inherited, false
}

type recordKey struct {
	userID string
	date   calendar.Date
}

func indexAttendance(records []AttendanceRecord, first calendar.Date, n int) map[recordKey][]AttendanceRecord {
	last := first.AddDays(n - 1)
	idx := make(map[recordKey][]AttendanceRecord)
	for _, r := range records {
		if !r.Date.InRange(first, last) {
			continue
		}
		k := recordKey{r.UserID, r.Date}
		idx[k] = append(idx[k], r)
	}
	return idx
}

// rate - доля, 0 при пустом знаменателе.
func rate(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(num)).Div(decimal.NewFromInt(int64(den))).Round(4).InexactFloat64()
}
