package recon

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxLeaveHours - верхняя граница часов одной почасовой заявки.
const MaxLeaveHours = 24

// Reconciliation - результат вычета почасовых отпусков из отработанного.
type Reconciliation struct {
	RawHours      float64
	LeaveHours    float64
	ActualHours   float64
	DeductedHours float64
	HasDeduction  bool
	// Overdrawn - часов отпуска больше, чем отработано; фактические
	// часы при этом обрезаны до нуля.
	Overdrawn bool
}

// SanitizeHours приводит NaN, бесконечность, отрицательные значения
// и значения больше 24 к нулю. Ошибкой это не считается.
func SanitizeHours(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > MaxLeaveHours {
		return 0
	}
	return v
}

// ParseHours разбирает число часов из текста; мусор дает NaN,
// который затем превращается в 0 в SanitizeHours.
func ParseHours(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ReconcileHours вычитает почасовые отпуска из отработанных часов.
// Заявки других категорий пропускаются. Одно и то же правило
// применяется к одному дню и к итогу за месяц.
func ReconcileHours(rawHoursWorked float64, hourly []Leave) Reconciliation {
	total := decimal.Zero
	for _, l := range hourly {
		if l.Category() != LeaveHourly {
			continue
		}
		total = total.Add(decimal.NewFromFloat(SanitizeHours(l.HoursCount())))
	}
	return reconcile(decimal.NewFromFloat(sanitizeRaw(rawHoursWorked)), total)
}

func reconcile(raw, leave decimal.Decimal) Reconciliation {
	actual := raw.Sub(leave)
	if actual.IsNegative() {
		actual = decimal.Zero
	}

	deducted := leave
	if leave.GreaterThan(raw) {
		deducted = raw
	}

	return Reconciliation{
		RawHours:      round2(raw),
		LeaveHours:    round2(leave),
		ActualHours:   round2(actual),
		DeductedHours: round2(deducted),
		HasDeduction:  leave.IsPositive(),
		Overdrawn:     leave.GreaterThan(raw),
	}
}

// sanitizeRaw - отработанные часы не ограничены сверху (итог за месяц),
// но отрицательные и нечисловые значения дают 0.
func sanitizeRaw(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Round2 округляет часы до сотых так же, как сверка.
func Round2(v float64) float64 {
	return round2(decimal.NewFromFloat(sanitizeRaw(v)))
}
