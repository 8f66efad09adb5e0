// Package view описывает экраны бота как конечный автомат: состояние
// экрана - это Params, а набор нужных ему данных выводится из Params
// чистой функцией Required. Перезагружается только то, чего нет в
// уже загруженном наборе.
package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type View string

const (
	Reports   View = "reports"
	Calendar  View = "calendar"
	Settings  View = "settings"
	Vacations View = "vacations"
)

func (v View) Valid() bool {
	switch v {
	case Reports, Calendar, Settings, Vacations:
		return true
	}
	return false
}

// Mode уточняет экран: месяц или год для отчетов, глобальные или
// персональные настройки для Settings.
type Mode string

const (
	ModeMonth  Mode = "month"
	ModeYear   Mode = "year"
	ModeGlobal Mode = "global"
	ModeUser   Mode = "user"
)

var ErrInvalidParams = errors.New("некорректные параметры экрана")

type Params struct {
	View   View
	Year   int
	Month  time.Month
	UserID string
	Mode   Mode
}

// Default - начальное состояние экрана для текущей даты
func Default(v View, now time.Time) Params {
	p := Params{View: v, Year: now.Year(), Month: now.Month()}
	switch v {
	case Reports:
		p.Mode = ModeMonth
	case Settings:
		p.Mode = ModeGlobal
	}
	return p
}

func (p Params) Validate() error {
	if !p.View.Valid() {
		return fmt.Errorf("%w: экран %q", ErrInvalidParams, p.View)
	}
	if p.Year < 1 || p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: период %d-%d", ErrInvalidParams, p.Year, int(p.Month))
	}
	switch p.View {
	case Reports:
		if p.Mode != ModeMonth && p.Mode != ModeYear {
			return fmt.Errorf("%w: режим %q", ErrInvalidParams, p.Mode)
		}
	case Settings:
		if p.Mode != ModeGlobal && p.Mode != ModeUser {
			return fmt.Errorf("%w: режим %q", ErrInvalidParams, p.Mode)
		}
		if p.Mode == ModeUser && p.UserID == "" {
			return fmt.Errorf("%w: не выбран сотрудник", ErrInvalidParams)
		}
	}
	return nil
}

// Shift листает период: по месяцам, а в годовом отчете по годам
func (p Params) Shift(delta int) Params {
	if p.View == Reports && p.Mode == ModeYear {
		p.Year += delta
		return p
	}
	t := time.Date(p.Year, p.Month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	p.Year, p.Month = t.Year(), t.Month()
	return p
}

// Open переключает экран с сохранением периода и сотрудника
func (p Params) Open(v View) Params {
	if p.View == v {
		return p
	}
	next := Default(v, time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC))
	next.UserID = p.UserID
	if v == Settings && p.UserID != "" {
		next.Mode = ModeUser
	}
	return next
}

// ScreenKey - ключ для правила "побеждает последний запрос". Один на чат:
// все экраны чата показываются в одном сообщении.
func ScreenKey(chatID int64) string {
	return fmt.Sprintf("screen:%d", chatID)
}

// Encode упаковывает параметры в callback data кнопки Telegram (до 64 байт)
func (p Params) Encode() string {
	return strings.Join([]string{
		string(p.View),
		strconv.Itoa(p.Year),
		strconv.Itoa(int(p.Month)),
		string(p.Mode),
		p.UserID,
	}, ":")
}

func Decode(s string) (Params, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 5 {
		return Params{}, fmt.Errorf("%w: %q", ErrInvalidParams, s)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return Params{}, fmt.Errorf("%w: год %q", ErrInvalidParams, parts[1])
	}
	month, err := strconv.Atoi(parts[2])
	if err != nil {
		return Params{}, fmt.Errorf("%w: месяц %q", ErrInvalidParams, parts[2])
	}
	p := Params{
		View:   View(parts[0]),
		Year:   year,
		Month:  time.Month(month),
		Mode:   Mode(parts[3]),
		UserID: parts[4],
	}
	return p, p.Validate()
}
