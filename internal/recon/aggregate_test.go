package recon

import (
	"testing"
	"time"
	_ "time/tzdata"

	"attendance-reconciler/pkg/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func worked(user, day string, h float64) AttendanceRecord {
	return AttendanceRecord{UserID: user, Date: date(day), Status: AttendanceCheckedOut, HoursWorked: &h}
}

func february2024() MonthInput {
	return MonthInput{
		Year:         2024,
		Month:        time.February,
		Users:        []UserRef{{ID: "u1", Name: "Amira"}},
		GlobalConfig: globalConfig(2024, time.February, DefaultWorkingWeekdays()...),
		Holidays: []Holiday{
			singleHoliday("Founders day", "2024-02-14"),
			rangeHoliday("Retreat", "2024-02-20", "2024-02-22"),
		},
		Leaves:     []Leave{hourlyLeave("l1", "u1", "2024-02-05", 3)},
		Attendance: []AttendanceRecord{worked("u1", "2024-02-05", 8)},
		AsOf:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestAggregateMonth_February2024Scenario(t *testing.T) {
	s := AggregateMonth(february2024())

	assert.Equal(t, 21, s.WorkingDaysCount)
	require.Len(t, s.Days, 29)
	require.Len(t, s.Users, 1)

	u := s.Users[0]
	assert.Equal(t, 21, u.WorkingDays)
	assert.Equal(t, 168.0, u.RequiredHours)
	assert.False(t, u.CustomConfig)
	assert.True(t, u.Config.IsGlobal)

	feb5 := u.Days[4]
	assert.Equal(t, date("2024-02-05"), feb5.Date)
	assert.Equal(t, 5.0, feb5.Reconciliation.ActualHours)
	assert.Equal(t, 3.0, feb5.Reconciliation.DeductedHours)
	assert.True(t, feb5.Reconciliation.HasDeduction)

	assert.Equal(t, 8.0, u.Hours.RawHours)
	assert.Equal(t, 5.0, u.Hours.ActualHours)
	assert.Equal(t, 3.0, u.Hours.DeductedHours)
	assert.Equal(t, 5.0, s.ActualHours)

	assert.True(t, s.Days[4].Classification.HasHourlyLeave)
	assert.Equal(t, 1, u.AttendedDays)
	assert.Equal(t, 20, u.AbsentDays)
}

func TestAggregateMonth_DaysAscending(t *testing.T) {
	s := AggregateMonth(february2024())
	for i, d := range s.Days {
		assert.Equal(t, calendar.New(2024, time.February, i+1), d.Classification.Date)
	}
}

func TestAggregateMonth_MonthlyEqualsDailySum(t *testing.T) {
	in := february2024()
	in.Attendance = nil
	in.Leaves = nil
	for day := 1; day <= 29; day++ {
		d := calendar.New(2024, time.February, day)
		if !in.GlobalConfig.IsWorkingDay(d) {
			continue
		}
		in.Attendance = append(in.Attendance, worked("u1", d.String(), 7.35+float64(day%3)*0.4))
		if day%4 == 0 {
			in.Leaves = append(in.Leaves, hourlyLeave("l", "u1", d.String(), 1.25))
		}
	}

	s := AggregateMonth(in)
	u := s.Users[0]

	assert.InDelta(t, dailyActualSum(u), u.Hours.ActualHours, 0.01)
	assert.True(t, u.Hours.HasDeduction)
}

func dailyActualSum(u UserSummary) float64 {
	sum := 0.0
	for _, d := range u.Days {
		sum += d.Reconciliation.ActualHours
	}
	return sum
}

func TestAggregateMonth_FutureHourlyLeaveNotDeducted(t *testing.T) {
	in := february2024()
	in.AsOf = time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	in.Leaves = append(in.Leaves, hourlyLeave("l2", "u1", "2024-02-26", 4))

	s := AggregateMonth(in)
	u := s.Users[0]

	assert.Equal(t, 5.0, u.Hours.ActualHours)
	assert.Equal(t, 3.0, u.Hours.DeductedHours)
	assert.Equal(t, 3.0, u.Hours.LeaveHours)
	assert.False(t, u.Hours.Overdrawn)
	assert.InDelta(t, dailyActualSum(u), u.Hours.ActualHours, 0.001)

	feb26 := u.Days[25]
	assert.True(t, feb26.IsFuture)
	assert.Equal(t, Reconciliation{}, feb26.Reconciliation)
	assert.True(t, s.Days[25].Classification.HasHourlyLeave)
}

func TestAggregateMonth_ClampedDaysKeepMonthlyTotal(t *testing.T) {
	in := february2024()
	// 6 февраля: 2 ч работы и 4 ч отпуска; 7 февраля: отпуск без отметки
	in.Attendance = append(in.Attendance, worked("u1", "2024-02-06", 2))
	in.Leaves = append(in.Leaves,
		hourlyLeave("l2", "u1", "2024-02-06", 4),
		hourlyLeave("l3", "u1", "2024-02-07", 2),
	)

	s := AggregateMonth(in)
	u := s.Users[0]

	assert.Equal(t, 0.0, u.Days[5].Reconciliation.ActualHours)
	assert.Equal(t, 2.0, u.Days[5].Reconciliation.DeductedHours)
	assert.True(t, u.Days[6].Reconciliation.Overdrawn)

	assert.Equal(t, 10.0, u.Hours.RawHours)
	assert.Equal(t, 9.0, u.Hours.LeaveHours)
	assert.Equal(t, 5.0, u.Hours.DeductedHours)
	assert.Equal(t, 5.0, u.Hours.ActualHours)
	assert.True(t, u.Hours.Overdrawn)
	assert.InDelta(t, dailyActualSum(u), u.Hours.ActualHours, 0.001)
	assert.Equal(t, 5.0, s.ActualHours)
}

func TestAggregateMonth_FutureDaysHaveNoRate(t *testing.T) {
	in := february2024()
	riyadh, err := time.LoadLocation("Asia/Riyadh")
	require.NoError(t, err)
	in.Location = riyadh
	// 2024-02-10 22:30 UTC - уже 11 февраля в Эр-Рияде
	in.AsOf = time.Date(2024, 2, 10, 22, 30, 0, 0, time.UTC)

	s := AggregateMonth(in)
	assert.False(t, s.Days[10].IsFuture, "Feb 11 is today in Riyadh")
	assert.True(t, s.Days[10].HasRate)
	assert.True(t, s.Days[11].IsFuture)
	assert.False(t, s.Days[11].HasRate)
	assert.Len(t, s.Days, 29, "future days are still emitted")

	u := s.Users[0]
	assert.Equal(t, 21, u.WorkingDays)
	assert.Equal(t, 1, u.AttendedDays)
	// 1-11 февраля: 9 рабочих дней (пятницы 2 и 9 - выходные)
	assert.Equal(t, 8, u.AbsentDays)
}

func TestAggregateMonth_AttendanceRate(t *testing.T) {
	in := MonthInput{
		Year:         2025,
		Month:        time.June,
		Users:        []UserRef{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}},
		GlobalConfig: globalConfig(2025, time.June, DefaultWorkingWeekdays()...),
		Attendance: []AttendanceRecord{
			worked("u1", "2025-06-01", 8),
			worked("u2", "2025-06-01", 6),
			{UserID: "u3", Date: date("2025-06-01"), Status: AttendanceNotCheckedIn},
		},
		Leaves: []Leave{
			{ID: "off", UserID: "u3", Type: LeaveSick, Status: LeaveApproved, Span: SingleDayLeave{Date: date("2025-06-02")}},
			{ID: "pending", UserID: "u2", Type: LeaveAnnual, Status: LeavePending, Span: SingleDayLeave{Date: date("2025-06-02")}},
		},
		AsOf: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	s := AggregateMonth(in)

	// 1 июня - воскресенье, рабочий день
	jun1 := s.Days[0]
	assert.Equal(t, 3, jun1.ScheduledUsers)
	assert.Equal(t, 2, jun1.PresentCount)
	assert.InDelta(t, 0.6667, jun1.AttendanceRate, 1e-4)

	// 2 июня: u3 на больничном и не учитывается, ожидающая заявка u2 - не отпуск
	jun2 := s.Days[1]
	assert.Equal(t, 2, jun2.ScheduledUsers)
	assert.Equal(t, 1, jun2.OnLeaveCount)
	assert.Equal(t, 0, jun2.PresentCount)
	assert.Equal(t, 0.0, jun2.AttendanceRate)

	// 6 июня - пятница: никого не ждут, деления на ноль нет
	jun6 := s.Days[5]
	assert.Equal(t, 0, jun6.ScheduledUsers)
	assert.True(t, jun6.HasRate)
	assert.Equal(t, 0.0, jun6.AttendanceRate)

	assert.Equal(t, 1, s.Users[2].LeaveDays)
}

func TestAggregateMonth_UserOverride(t *testing.T) {
	in := february2024()
	in.Users = append(in.Users, UserRef{ID: "u2", Name: "Omar"})
	in.UserConfigs = map[string]*WorkingDaysConfig{
		"u2": {
			Scope: ScopeUser, UserID: "u2", Year: 2024, Month: time.February,
			DefaultWorkingDaysOfWeek: []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday},
			DailyHours:               6,
		},
	}

	s := AggregateMonth(in)
	require.Len(t, s.Users, 2)

	u2 := s.Users[1]
	assert.True(t, u2.CustomConfig)
	assert.Equal(t, 6.0, u2.DailyHours)
	// без пятниц и суббот: 29 - 4 - 4 = 21, минус 4 праздничных дня
	assert.Equal(t, 17, u2.WorkingDays)
	assert.Equal(t, 102.0, u2.RequiredHours)
	assert.Equal(t, 21, s.WorkingDaysCount, "month count follows the global config")
	assert.Equal(t, 270.0, s.RequiredHours)
}

func TestAggregateMonth_NoConfigAnywhere(t *testing.T) {
	s := AggregateMonth(MonthInput{Year: 2025, Month: time.June, Users: []UserRef{{ID: "u1"}}, AsOf: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)})

	// июнь 2025: 30 дней, пятницы 6, 13, 20, 27
	assert.Equal(t, 26, s.WorkingDaysCount)
	assert.Equal(t, DefaultDailyHours, s.DailyHours)
	assert.True(t, s.Users[0].Config.IsDefault)
	assert.Equal(t, 208.0, s.Users[0].RequiredHours)
}

func TestAggregateYear_MonthsAreIndependent(t *testing.T) {
	var months [12]MonthInput
	for i := range months {
		m := time.Month(i + 1)
		months[i] = MonthInput{Year: 2024, Month: m, Users: []UserRef{{ID: "u1"}}, AsOf: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	}
	// в марте другая норма часов
	months[2].GlobalConfig = &WorkingDaysConfig{Scope: ScopeGlobal, Year: 2024, Month: time.March, DailyHours: 6}

	out := AggregateYear(months)
	for i, s := range out {
		assert.Equal(t, time.Month(i+1), s.Month)
	}
	assert.Equal(t, 6.0, out[2].DailyHours)
	assert.Equal(t, 8.0, out[3].DailyHours)
	assert.Equal(t, 25, out[1].WorkingDaysCount, "Feb 2024 without holidays: 29 days minus 4 Fridays")
}
