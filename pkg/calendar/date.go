// Package calendar содержит значение "календарный день" без часового пояса.
//
// Вся арифметика рабочего календаря ведется над Date (год, месяц, день),
// а не над time.Time: так сравнение диапазонов не зависит от смещения
// часового пояса и перехода на летнее время.
package calendar

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Date - календарный день. Нулевое значение означает "дата не задана".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New нормализует переполнение (31 февраля -> 2 или 3 марта) как time.Date.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 12, 0, 0, 0, time.UTC), time.UTC)
}

// FromTime возвращает календарный день момента t в часовом поясе loc.
// При loc == nil используется собственный пояс t.
func FromTime(t time.Time, loc *time.Location) Date {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today - сегодняшний день в поясе loc.
func Today(now time.Time, loc *time.Location) Date {
	return FromTime(now, loc)
}

// Parse разбирает дату в формате YYYY-MM-DD.
func Parse(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t, time.UTC), nil
}

// MustParse - Parse для тестов и констант.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time возвращает полночь дня в поясе loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

func (d Date) AddDays(n int) Date {
	return New(d.Year, d.Month, d.Day+n)
}

// Compare возвращает -1, 0 или 1.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d.Compare(other) == 0 }

// InRange - включающая проверка start <= d <= end.
// Перевернутый диапазон (end < start) не содержит ни одного дня.
func (d Date) InRange(start, end Date) bool {
	if end.Before(start) {
		return false
	}
	return !d.Before(start) && !d.After(end)
}

// DaysBetween - количество дней в диапазоне включительно, 0 для перевернутого.
func DaysBetween(start, end Date) int {
	if end.Before(start) {
		return 0
	}
	hours := end.Time(time.UTC).Sub(start.Time(time.UTC)).Hours()
	return int(hours/24) + 1
}

// DaysIn возвращает число дней в месяце.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value хранит дату строкой YYYY-MM-DD, пустая дата - NULL.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		// драйверы отдают DATE как полночь UTC, пояс не пересчитываем
		*d = FromTime(v, nil)
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into calendar.Date", src)
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// MonthName - название месяца для отчетов
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return fmt.Sprint(int(m))
	}
	return monthNames[m-1]
}

var weekdayShort = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// WeekdayShort - двухбуквенное сокращение дня недели
func WeekdayShort(d time.Weekday) string {
	return weekdayShort[d%7]
}
