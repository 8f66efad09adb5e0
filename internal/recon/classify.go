package recon

import (
	"time"

	"attendance-reconciler/pkg/calendar"
)

// ClassifyDay определяет, рабочий ли день, праздник ли он и какие
// отпуска на него приходятся. cfg == nil означает отсутствие настроек.
//
// Отпуск не меняет IsWorkingDay: он влияет только на HasLeave и подпись.
func ClassifyDay(d calendar.Date, cfg *WorkingDaysConfig, holidays []Holiday, leaves []Leave) DayClassification {
	c := DayClassification{
		Date:         d,
		IsWorkingDay: cfg.IsWorkingDay(d),
	}

	for i := range holidays {
		if holidays[i].Covers(d) {
			h := holidays[i]
			c.IsHoliday = true
			c.Holiday = &h
			break
		}
	}

	c.Leaves = MatchLeaves(d, leaves)
	c.HasLeave = len(c.Leaves) > 0
	c.HasHourlyLeave = HasHourlyLeave(c.Leaves)

	c.Kind, c.Label = label(c)
	return c
}

// ClassifyMonth классифицирует все дни месяца по порядку.
func ClassifyMonth(year int, month time.Month, cfg *WorkingDaysConfig, holidays []Holiday, leaves []Leave) []DayClassification {
	first := calendar.New(year, month, 1)
	n := calendar.DaysIn(first.Year, first.Month)

	days := make([]DayClassification, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, ClassifyDay(first.AddDays(i), cfg, holidays, leaves))
	}
	return days
}

func label(c DayClassification) (DayKind, string) {
	switch {
	case c.IsHoliday:
		return DayHoliday, "Праздник: " + c.Holiday.Name
	case c.HasLeave:
		for _, l := range c.Leaves {
			if l.Category() != LeaveHourly {
				return DayLeave, "Отпуск: " + l.TypeName()
			}
		}
		return DayLeave, "Почасовой отпуск: " + c.Leaves[0].TypeName()
	case !c.IsWorkingDay:
		return DayNonWorking, "Выходной"
	default:
		return DayWorking, "Рабочий день"
	}
}
