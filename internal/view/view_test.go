package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Shift(t *testing.T) {
	p := Params{View: Calendar, Year: 2024, Month: time.December}
	next := p.Shift(1)
	assert.Equal(t, 2025, next.Year)
	assert.Equal(t, time.January, next.Month)

	prev := Params{View: Calendar, Year: 2024, Month: time.January}.Shift(-1)
	assert.Equal(t, 2023, prev.Year)
	assert.Equal(t, time.December, prev.Month)

	year := Params{View: Reports, Mode: ModeYear, Year: 2024, Month: time.March}.Shift(-1)
	assert.Equal(t, 2023, year.Year)
	assert.Equal(t, time.March, year.Month)
}

func TestParams_Open(t *testing.T) {
	p := Params{View: Calendar, Year: 2024, Month: time.May, UserID: "u1"}

	settings := p.Open(Settings)
	assert.Equal(t, ModeUser, settings.Mode)
	assert.Equal(t, "u1", settings.UserID)
	assert.Equal(t, time.May, settings.Month)

	reports := Params{View: Calendar, Year: 2024, Month: time.May}.Open(Reports)
	assert.Equal(t, ModeMonth, reports.Mode)
	assert.NoError(t, reports.Validate())
}

func TestParams_EncodeDecode(t *testing.T) {
	p := Params{View: Settings, Year: 2024, Month: time.February, Mode: ModeUser, UserID: "8c4f3c5e-0d62-4c1c-9a57-5d7d2a1f3e10"}
	data := p.Encode()
	assert.LessOrEqual(t, len(data), 64)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "nope"},
		{"unknown view", "stats:2024:2::"},
		{"bad month", "calendar:2024:13::"},
		{"bad year", "calendar:x:1::"},
		{"reports without mode", "reports:2024:2::"},
		{"user settings without user", "settings:2024:2:user:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestRequired_Deterministic(t *testing.T) {
	p := Params{View: Reports, Mode: ModeYear, Year: 2024, Month: time.June}
	assert.Equal(t, Required(p), Required(p))
	// пользователи плюс пять ресурсов на каждый месяц
	assert.Len(t, Required(p), 1+5*12)
}

func TestRequired_Calendar(t *testing.T) {
	p := Params{View: Calendar, Year: 2024, Month: time.February, UserID: "u1"}
	d := Required(p)

	assert.True(t, d.Has(Need{Resource: UserConfig, Year: 2024, Month: time.February, UserID: "u1"}))
	assert.True(t, d.Has(Need{Resource: Leaves, Year: 2024, Month: time.February, UserID: "u1"}))
	assert.False(t, d.Has(Need{Resource: Attendance, Year: 2024, Month: time.February}))
}

func TestDataSet_Missing(t *testing.T) {
	feb := Params{View: Calendar, Year: 2024, Month: time.February}
	mar := feb.Shift(1)

	assert.Empty(t, Required(feb).Missing(Required(feb)))

	missing := Required(mar).Missing(Required(feb))
	require.Len(t, missing, 3)
	for _, n := range missing {
		assert.Equal(t, time.March, n.Month)
	}
	assert.Equal(t, GlobalConfig, missing[0].Resource)

	// настройки того же месяца переиспользуют глобальную конфигурацию
	settings := Params{View: Settings, Mode: ModeGlobal, Year: 2024, Month: time.February}
	assert.Empty(t, Required(settings).Missing(Required(feb)))
}

func TestSession_Transition(t *testing.T) {
	s := NewSession()
	p := Params{View: Calendar, Year: 2024, Month: time.February}

	_, ok := s.Current(1)
	assert.False(t, ok)

	assert.NotEmpty(t, s.Transition(1, p))
	s.Loaded(1, p)
	assert.Empty(t, s.Transition(1, p), "same screen needs nothing")

	cur, ok := s.Current(1)
	require.True(t, ok)
	assert.Equal(t, p, cur)

	s.Invalidate(1)
	assert.NotEmpty(t, s.Transition(1, p))
}

func TestSession_LoadedIgnoresStaleScreen(t *testing.T) {
	s := NewSession()
	feb := Params{View: Calendar, Year: 2024, Month: time.February}
	mar := feb.Shift(1)

	s.Transition(1, feb)
	s.Transition(1, mar)
	assert.False(t, s.Loaded(1, feb))
	assert.False(t, s.Loaded(2, feb), "unknown chat")

	assert.NotEmpty(t, s.Transition(1, mar))
	assert.True(t, s.Loaded(1, mar))
}

func TestScreenKey_SharedByAllViews(t *testing.T) {
	assert.Equal(t, ScreenKey(1), ScreenKey(1))
	assert.NotEqual(t, ScreenKey(1), ScreenKey(2))
}

func TestSession_InvalidateAll(t *testing.T) {
	s := NewSession()
	p := Params{View: Vacations, Year: 2024, Month: time.February}
	for _, id := range []int64{1, 2} {
		s.Transition(id, p)
		s.Loaded(id, p)
	}

	s.InvalidateAll()
	assert.NotEmpty(t, s.Transition(1, p))
	assert.NotEmpty(t, s.Transition(2, p))
	s.Invalidate(3)
	_, ok := s.Current(3)
	assert.False(t, ok)
}
