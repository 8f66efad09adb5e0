package recon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func hours(values ...float64) []Leave {
	out := make([]Leave, 0, len(values))
	for _, v := range values {
		out = append(out, hourlyLeave("h", "u1", "2024-02-05", v))
	}
	return out
}

func TestReconcileHours(t *testing.T) {
	tests := []struct {
		name   string
		raw    float64
		leaves []Leave
		want   Reconciliation
	}{
		{
			name:   "no leave",
			raw:    8,
			leaves: nil,
			want:   Reconciliation{RawHours: 8, ActualHours: 8},
		},
		{
			name:   "simple deduction",
			raw:    8,
			leaves: hours(3),
			want:   Reconciliation{RawHours: 8, LeaveHours: 3, ActualHours: 5, DeductedHours: 3, HasDeduction: true},
		},
		{
			name:   "clamps at zero",
			raw:    5,
			leaves: hours(8),
			want:   Reconciliation{RawHours: 5, LeaveHours: 8, ActualHours: 0, DeductedHours: 5, HasDeduction: true, Overdrawn: true},
		},
		{
			name:   "two hourly leaves on one day",
			raw:    8,
			leaves: hours(1.5, 2),
			want:   Reconciliation{RawHours: 8, LeaveHours: 3.5, ActualHours: 4.5, DeductedHours: 3.5, HasDeduction: true},
		},
		{
			name:   "no float artifacts",
			raw:    7.3,
			leaves: hours(0.1),
			want:   Reconciliation{RawHours: 7.3, LeaveHours: 0.1, ActualHours: 7.2, DeductedHours: 0.1, HasDeduction: true},
		},
		{
			name:   "rounds to two decimals",
			raw:    8.333333,
			leaves: hours(1),
			want:   Reconciliation{RawHours: 8.33, LeaveHours: 1, ActualHours: 7.33, DeductedHours: 1, HasDeduction: true},
		},
		{
			name:   "negative raw hours are zero",
			raw:    -4,
			leaves: hours(2),
			want:   Reconciliation{RawHours: 0, LeaveHours: 2, ActualHours: 0, DeductedHours: 0, HasDeduction: true, Overdrawn: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReconcileHours(tt.raw, tt.leaves))
		})
	}
}

func TestReconcileHours_SanitizesBadInput(t *testing.T) {
	got := ReconcileHours(8, hours(-3, 999, ParseHours("abc"), math.Inf(1)))

	assert.Equal(t, 8.0, got.ActualHours)
	assert.Equal(t, 0.0, got.DeductedHours)
	assert.False(t, got.HasDeduction)
	assert.False(t, got.Overdrawn)
}

func TestReconcileHours_IgnoresFullDayLeave(t *testing.T) {
	full := Leave{Type: LeaveAnnual, Status: LeaveApproved, Span: SingleDayLeave{Date: date("2024-02-05")}}
	got := ReconcileHours(6, []Leave{full})
	assert.Equal(t, 6.0, got.ActualHours)
	assert.False(t, got.HasDeduction)
}

func TestSanitizeHours(t *testing.T) {
	assert.Equal(t, 0.0, SanitizeHours(math.NaN()))
	assert.Equal(t, 0.0, SanitizeHours(-0.5))
	assert.Equal(t, 0.0, SanitizeHours(24.01))
	assert.Equal(t, 24.0, SanitizeHours(24))
	assert.Equal(t, 0.0, SanitizeHours(0))
	assert.Equal(t, 2.5, SanitizeHours(2.5))
}

func TestParseHours(t *testing.T) {
	assert.Equal(t, 3.5, ParseHours(" 3.5 "))
	assert.True(t, math.IsNaN(ParseHours("abc")))
	assert.True(t, math.IsNaN(ParseHours("")))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 7.2, Round2(7.1999999999))
	assert.Equal(t, 0.0, Round2(math.NaN()))
}
