package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Clock - время суток с точностью до минуты.
type Clock struct {
	Hour   int
	Minute int
}

var clockLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"03:04 PM",
	"03:04PM",
	"3 PM",
	"3PM",
	"15:04",
}

// ParseClock разбирает время в 12-часовом формате ("09:30 AM", "2:15pm")
// и, для удобства ввода из бота, в 24-часовом ("14:15").
func ParseClock(s string) (Clock, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, l := range clockLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return Clock{}, fmt.Errorf("unrecognized time %q", s)
}

func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// String форматирует время как "09:30 AM".
func (c Clock) String() string {
	t := time.Date(2000, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC)
	return t.Format("03:04 PM")
}

// HoursBetween - длительность от start до end в часах.
// Конец раньше начала дает 0: интервал через полночь не поддерживается.
func HoursBetween(start, end Clock) float64 {
	diff := end.Minutes() - start.Minutes()
	if diff <= 0 {
		return 0
	}
	return float64(diff) / 60
}
