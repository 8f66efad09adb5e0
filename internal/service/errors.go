package service

import "errors"

var (
	ErrUserNotFound      = errors.New("пользователь не найден")
	ErrUserExists        = errors.New("у вас уже есть профиль")
	ErrLeaveNotFound     = errors.New("заявка на отпуск не найдена")
	ErrHolidayNotFound   = errors.New("праздник не найден")
	ErrInvalidInput      = errors.New("некорректные данные")
	ErrInvalidRange      = errors.New("дата окончания раньше даты начала")
	ErrLeaveNotPending   = errors.New("заявка уже рассмотрена")
	ErrAlreadyCheckedIn  = errors.New("вы уже отметили приход сегодня")
	ErrNotCheckedIn      = errors.New("сегодня нет отметки о приходе")
	ErrAlreadyCheckedOut = errors.New("вы уже отметили уход сегодня")
	ErrForbidden         = errors.New("недостаточно прав")
	// ErrStaleRequest - результат вытеснен более новым запросом того же ключа
	ErrStaleRequest = errors.New("stale request")
)
