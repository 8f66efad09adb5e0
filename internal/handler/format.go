package handler

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"attendance-reconciler/internal/recon"
	"attendance-reconciler/internal/service"
	"attendance-reconciler/pkg/calendar"
)

func formatDate(d calendar.Date) string {
	return d.Time(time.UTC).Format("02.01.2006")
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + " ч"
}

func formatPercent(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', 1, 64) + "%"
}

// userErrors - ошибки, текст которых можно показать как есть
var userErrors = []error{
	service.ErrUserNotFound,
	service.ErrUserExists,
	service.ErrLeaveNotFound,
	service.ErrHolidayNotFound,
	service.ErrInvalidInput,
	service.ErrInvalidRange,
	service.ErrLeaveNotPending,
	service.ErrAlreadyCheckedIn,
	service.ErrNotCheckedIn,
	service.ErrAlreadyCheckedOut,
	service.ErrForbidden,
	errBadArgs,
}

func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func userMessage(prefix string, err error) string {
	if isUserError(err) {
		return prefix + ": " + err.Error()
	}
	return prefix + ": внутренняя ошибка, попробуйте позже"
}

var errBadArgs = errors.New("неверный формат команды")

// parseDate принимает "25.12.2024" и "2024-12-25"
func parseDate(s string) (calendar.Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("02.01.2006", s); err == nil {
		return calendar.FromTime(t, time.UTC), nil
	}
	d, err := calendar.Parse(s)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("%w: дата %q", errBadArgs, s)
	}
	return d, nil
}

// parseDateRange принимает одну дату или период "01.07.2024-14.07.2024"
// ("2024-07-01..2024-07-14" для ISO). Для одной даты end нулевой.
func parseDateRange(s string) (start, end calendar.Date, err error) {
	var from, to string
	switch {
	case strings.Contains(s, ".."):
		from, to, _ = strings.Cut(s, "..")
	case strings.Count(s, "-") == 1:
		from, to, _ = strings.Cut(s, "-")
	default:
		from = s
	}

	if start, err = parseDate(from); err != nil {
		return
	}
	if to != "" {
		end, err = parseDate(to)
	}
	return
}

// parseMonth принимает "02.2024", "2024-02" или номер месяца текущего года
func parseMonth(s string, now time.Time) (int, time.Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	for _, layout := range []string{"01.2006", "1.2006", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), t.Month(), nil
		}
	}
	if m, err := strconv.Atoi(s); err == nil && m >= 1 && m <= 12 {
		return now.Year(), time.Month(m), nil
	}
	return 0, 0, fmt.Errorf("%w: месяц %q", errBadArgs, s)
}

func parseYear(s string, now time.Time) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Year(), nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 2000 || y > 2100 {
		return 0, fmt.Errorf("%w: год %q", errBadArgs, s)
	}
	return y, nil
}

// parseClockRange разбирает "9:00AM-12:30PM" или "09:00-12:30"
func parseClockRange(s string) (string, string, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return "", "", fmt.Errorf("%w: время %q", errBadArgs, s)
	}
	start, err := calendar.ParseClock(from)
	if err != nil {
		return "", "", fmt.Errorf("%w: время %q", errBadArgs, from)
	}
	end, err := calendar.ParseClock(to)
	if err != nil {
		return "", "", fmt.Errorf("%w: время %q", errBadArgs, to)
	}
	return start.String(), end.String(), nil
}

// parseWeekdays разбирает "1,2,3,4,6" (0 - воскресенье)
func parseWeekdays(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: день недели %q", errBadArgs, part)
		}
		out = append(out, d)
	}
	return out, nil
}

// parseOverride разбирает "+9" (рабочий) и "-14" (выходной)
func parseOverride(s string) (recon.DayOverride, bool) {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return recon.DayOverride{}, false
	}
	day, err := strconv.Atoi(s[1:])
	if err != nil || day < 1 || day > 31 {
		return recon.DayOverride{}, false
	}
	return recon.DayOverride{Day: day, IsWorkingDay: s[0] == '+'}, true
}

func formatWeekdays(days []time.Weekday) string {
	if len(days) == 0 {
		return "нет"
	}
	sorted := append([]time.Weekday(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	names := make([]string, 0, len(sorted))
	for _, d := range sorted {
		names = append(names, calendar.WeekdayShort(d))
	}
	return strings.Join(names, ", ")
}

func formatConfig(cfg *recon.WorkingDaysConfig) string {
	var lines []string

	source := "👤 Персональный график"
	switch {
	case cfg.IsDefault:
		source = "⚙️ График по умолчанию (не настроен)"
	case cfg.IsGlobal:
		source = "🌐 Общий график"
	}

	lines = append(lines, fmt.Sprintf("📅 %s %d", calendar.MonthName(cfg.Month), cfg.Year))
	lines = append(lines, source)
	lines = append(lines, "")
	lines = append(lines, "🗓 Рабочие дни недели: "+formatWeekdays(cfg.DefaultWorkingDaysOfWeek))
	lines = append(lines, "⏳ Часов в день: "+formatHours(cfg.Hours()))

	if len(cfg.WorkingDays) > 0 {
		var on, off []string
		for _, o := range cfg.WorkingDays {
			if o.IsWorkingDay {
				on = append(on, strconv.Itoa(o.Day))
			} else {
				off = append(off, strconv.Itoa(o.Day))
			}
		}
		if len(on) > 0 {
			lines = append(lines, "✅ Рабочие числа: "+strings.Join(on, ", "))
		}
		if len(off) > 0 {
			lines = append(lines, "🚫 Выходные числа: "+strings.Join(off, ", "))
		}
	}
	return strings.Join(lines, "\n")
}

func dayEmoji(c recon.DayClassification) string {
	switch c.Kind {
	case recon.DayHoliday:
		return "🎉"
	case recon.DayLeave:
		if c.HasHourlyLeave && !recon.HasFullDayLeave(c.Leaves) {
			return "⏱"
		}
		return "🏖"
	case recon.DayNonWorking:
		return "💤"
	default:
		return "💼"
	}
}

func formatCalendar(year int, month time.Month, days []recon.DayClassification, today calendar.Date) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("📅 Календарь: %s %d", calendar.MonthName(month), year))
	lines = append(lines, "")

	working := 0
	for _, c := range days {
		if c.Scheduled() {
			working++
		}
		marker := ""
		if c.Date.Equal(today) {
			marker = " 👈"
		}
		lines = append(lines, fmt.Sprintf("%s %02d %s %s%s",
			dayEmoji(c), c.Date.Day, calendar.WeekdayShort(c.Date.Weekday()), c.Label, marker))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("💼 Рабочих дней: %d", working))
	return strings.Join(lines, "\n")
}

func formatReconciliation(r recon.Reconciliation) string {
	text := fmt.Sprintf("отработано %s", formatHours(r.RawHours))
	if r.HasDeduction {
		text += fmt.Sprintf(", отпуск −%s, итого %s", formatHours(r.DeductedHours), formatHours(r.ActualHours))
	}
	if r.Overdrawn {
		text += " ⚠️ часов отпуска больше, чем отработано"
	}
	return text
}

func formatMonthReport(s recon.MonthSummary) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("📊 Отчет: %s %d", calendar.MonthName(s.Month), s.Year))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("💼 Рабочих дней: %d", s.WorkingDaysCount))
	lines = append(lines, fmt.Sprintf("⏳ Норма в день: %s", formatHours(s.DailyHours)))
	lines = append(lines, fmt.Sprintf("📈 Посещаемость: %s", formatPercent(s.AttendanceRate)))

	if len(s.Users) > 1 {
		lines = append(lines, fmt.Sprintf("🧮 Всего: отработано %s, отпуск −%s, итого %s из %s",
			formatHours(s.WorkedHours), formatHours(s.DeductedHours),
			formatHours(s.ActualHours), formatHours(s.RequiredHours)))
	}

	for _, u := range s.Users {
		lines = append(lines, "")
		name := u.Name
		if u.CustomConfig {
			name += " (персональный график)"
		}
		lines = append(lines, "👤 "+name)
		lines = append(lines, fmt.Sprintf("   ⏳ %s из %s", formatReconciliation(u.Hours), formatHours(u.RequiredHours)))
		lines = append(lines, fmt.Sprintf("   ✅ %d  ❌ %d  🏖 %d из %d дней, посещаемость %s",
			u.AttendedDays, u.AbsentDays, u.LeaveDays, u.WorkingDays, formatPercent(u.AttendanceRate)))
	}

	if len(s.Users) == 0 {
		lines = append(lines, "")
		lines = append(lines, "👥 Сотрудников пока нет")
	}
	return strings.Join(lines, "\n")
}

func formatYearReport(year int, months [12]recon.MonthSummary) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("📊 Годовой отчет: %d", year))
	lines = append(lines, "")

	days, worked, actual := 0, 0.0, 0.0
	for _, m := range months {
		days += m.WorkingDaysCount
		worked += m.WorkedHours
		actual += m.ActualHours
		lines = append(lines, fmt.Sprintf("%-9s 💼 %2d  ⏳ %s / %s",
			calendar.MonthName(m.Month), m.WorkingDaysCount, formatHours(m.ActualHours), formatHours(m.RequiredHours)))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Итого: %d рабочих дней, отработано %s, с учетом отпусков %s",
		days, formatHours(recon.Round2(worked)), formatHours(recon.Round2(actual))))
	return strings.Join(lines, "\n")
}

func leaveStatusEmoji(s recon.LeaveStatus) string {
	switch s {
	case recon.LeaveApproved:
		return "✅"
	case recon.LeaveRejected:
		return "❌"
	case recon.LeaveCancelled:
		return "🚫"
	default:
		return "⏳"
	}
}

func formatLeavePeriod(l recon.Leave) string {
	switch span := l.Span.(type) {
	case recon.HourlyLeave:
		return fmt.Sprintf("%s %s-%s (%s)", formatDate(span.Date), span.Start, span.End, formatHours(l.HoursCount()))
	case recon.SingleDayLeave:
		return formatDate(span.Date)
	case recon.MultipleDayLeave:
		return fmt.Sprintf("%s - %s (%d дн.)", formatDate(span.Start), formatDate(span.End), l.DaysCount())
	default:
		return "?"
	}
}

func formatLeave(l recon.Leave, owner string) string {
	text := fmt.Sprintf("%s %s: %s", leaveStatusEmoji(l.Status), l.TypeName(), formatLeavePeriod(l))
	if owner != "" {
		text = owner + " - " + text
	}
	if l.Reason != "" {
		text += "\n   💬 " + l.Reason
	}
	return text
}

func formatHoliday(h recon.Holiday) string {
	start, end := h.Bounds()
	period := formatDate(start)
	if !end.Equal(start) {
		period += " - " + formatDate(end)
	}
	text := fmt.Sprintf("🎉 %s: %s", period, h.Name)
	if h.IsRecurring {
		text += " 🔁"
	}
	return text
}

// formatUserYearReport - годовой отчет одного сотрудника
func formatUserYearReport(year int, months [12]recon.MonthSummary, userID string) string {
	var lines []string
	name := ""
	actual, required := 0.0, 0.0

	for _, m := range months {
		for _, u := range m.Users {
			if u.UserID != userID {
				continue
			}
			name = u.Name
			actual += u.Hours.ActualHours
			required += u.RequiredHours
			lines = append(lines, fmt.Sprintf("%-9s 💼 %2d  ⏳ %s / %s",
				calendar.MonthName(m.Month), u.WorkingDays, formatHours(u.Hours.ActualHours), formatHours(u.RequiredHours)))
		}
	}

	header := []string{fmt.Sprintf("📊 Годовой отчет: %d", year)}
	if name != "" {
		header = append(header, "👤 "+name)
	}
	header = append(header, "")

	lines = append(header, lines...)
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Итого: %s из %s", formatHours(recon.Round2(actual)), formatHours(recon.Round2(required))))
	return strings.Join(lines, "\n")
}
