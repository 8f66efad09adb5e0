// Package holidayfile читает производственный календарь в формате
// xmlcalendar (JSON): по месяцам перечислены нерабочие дни, "*" отмечает
// сокращенный рабочий день, "+" - перенесенный выходной.
package holidayfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"attendance-reconciler/pkg/calendar"
)

type fileJSON struct {
	Year        int          `json:"year"`
	Months      []monthJSON  `json:"months"`
	Transitions []Transition `json:"transitions"`
	Statistic   Statistic    `json:"statistic"`
}

type monthJSON struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

// Transition - перенос выходного, даты в формате "MM.DD"
type Transition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Statistic struct {
	Workdays int     `json:"workdays"`
	Holidays int     `json:"holidays"`
	Hours40  float64 `json:"hours40"`
	Hours36  float64 `json:"hours36"`
	Hours24  float64 `json:"hours24"`
}

type File struct {
	Year        int
	NonWorking  []calendar.Date
	Shortened   []calendar.Date
	Transferred []calendar.Date
	Transitions []Transition
	Statistic   Statistic
}

// Span - непрерывный отрезок дней, включительно
type Span struct {
	Start calendar.Date
	End   calendar.Date
}

func (s Span) Days() int {
	return calendar.DaysBetween(s.Start, s.End)
}

// ParseFile читает календарь с диска
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*File, error) {
	var raw fileJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if raw.Year < 1900 || raw.Year > 2200 {
		return nil, fmt.Errorf("invalid year %d", raw.Year)
	}

	out := &File{Year: raw.Year, Transitions: raw.Transitions, Statistic: raw.Statistic}

	for _, m := range raw.Months {
		if m.Month < 1 || m.Month > 12 {
			return nil, fmt.Errorf("invalid month %d", m.Month)
		}
		month := time.Month(m.Month)

		for _, token := range strings.Split(m.Days, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}

			shortened := strings.HasSuffix(token, "*")
			transferred := strings.HasSuffix(token, "+")
			token = strings.TrimRight(token, "*+")

			day, err := strconv.Atoi(token)
			if err != nil {
				return nil, fmt.Errorf("failed to parse day '%s' in month %d: %w", token, m.Month, err)
			}
			if day < 1 || day > calendar.DaysIn(raw.Year, month) {
				return nil, fmt.Errorf("day %d out of range in month %d", day, m.Month)
			}

			d := calendar.New(raw.Year, month, day)
			switch {
			case shortened:
				// сокращенный день остается рабочим
				out.Shortened = append(out.Shortened, d)
			case transferred:
				out.Transferred = append(out.Transferred, d)
				out.NonWorking = append(out.NonWorking, d)
			default:
				out.NonWorking = append(out.NonWorking, d)
			}
		}
	}

	sortDates(out.NonWorking)
	sortDates(out.Shortened)
	sortDates(out.Transferred)
	return out, nil
}

// NonWorkingInMonth - нерабочие дни одного месяца
func (f *File) NonWorkingInMonth(month time.Month) []calendar.Date {
	var out []calendar.Date
	for _, d := range f.NonWorking {
		if d.Month == month {
			out = append(out, d)
		}
	}
	return out
}

// Spans склеивает подряд идущие нерабочие дни в отрезки. Дни, для
// которых skip возвращает true, в отрезки не попадают и разрывают их.
func (f *File) Spans(skip func(calendar.Date) bool) []Span {
	var out []Span
	for _, d := range f.NonWorking {
		if skip != nil && skip(d) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End.AddDays(1).Equal(d) {
			out[n-1].End = d
			continue
		}
		out = append(out, Span{Start: d, End: d})
	}
	return out
}

// Weekend - пропуск обычных выходных календаря, чтобы остались
// только праздники и переносы
func Weekend(days ...time.Weekday) func(calendar.Date) bool {
	return func(d calendar.Date) bool {
		wd := d.Weekday()
		for _, w := range days {
			if w == wd {
				return true
			}
		}
		return false
	}
}

func sortDates(ds []calendar.Date) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].Before(ds[j]) })
}
