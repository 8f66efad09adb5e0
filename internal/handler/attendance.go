package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"attendance-reconciler/internal/service"
	"attendance-reconciler/internal/view"
	"attendance-reconciler/pkg/calendar"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// checkIn отмечает приход
func (h *Handler) checkIn(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	record, err := h.attendance.CheckIn(ctx, user.ID)
	if err != nil {
		h.sendError(chatID, "Не могу отметить приход", err)
		return
	}

	loc := h.reports.Location()
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(`✅ Приход отмечен!

⏰ Время: %s
📅 Дата: %s

💡 Не забудьте отметить уход командой /out`,
		record.CheckIn.In(loc).Format("15:04"),
		formatDate(record.Date),
	))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Мой календарь", screenPrefix+h.defaultScreen(view.Calendar, user.ID).Encode()),
		),
	)
	h.sendMsg(msg)
	h.screens.Invalidate(chatID)
}

// checkOut отмечает уход и показывает отработанное время
func (h *Handler) checkOut(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	record, err := h.attendance.CheckOut(ctx, user.ID)
	if err != nil {
		h.sendError(chatID, "Не могу отметить уход", err)
		return
	}

	hours := 0.0
	if record.HoursWorked != nil {
		hours = *record.HoursWorked
	}
	h.send(chatID, fmt.Sprintf(`🏁 Уход отмечен!

%s
⏳ Отработано: %s`, record.FormatTime(h.reports.Location()), formatHours(hours)))
	h.screens.Invalidate(chatID)
}

func (h *Handler) showToday(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	record, err := h.attendance.Today(ctx, user.ID)
	if err != nil {
		h.sendError(chatID, "Ошибка получения отметки", err)
		return
	}
	if record == nil {
		h.send(chatID, "📭 Сегодня отметок нет. Начните день командой /in")
		return
	}

	text := fmt.Sprintf("📅 %s\n%s", formatDate(record.Date), record.FormatTime(h.reports.Location()))
	if record.HoursWorked != nil {
		text += "\n⏳ Отработано: " + formatHours(*record.HoursWorked)
	}
	if record.ManuallyEdited {
		text += "\n✏️ Исправлено администратором"
	}
	h.send(chatID, text)
}

// editAttendance - ручная правка: /edit @user дата часы|чч:мм-чч:мм [заметка]
func (h *Handler) editAttendance(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) < 3 {
		h.send(chatID, "❌ Формат: /edit @username дата часы [заметка]\nПример: /edit @anna 05.02.2024 8 или /edit @anna 05.02.2024 09:00-17:30")
		return
	}

	user, err := h.users.Find(ctx, fields[0])
	if err != nil {
		h.sendError(chatID, "Ошибка", err)
		return
	}
	date, err := parseDate(fields[1])
	if err != nil {
		h.sendError(chatID, "Ошибка", err)
		return
	}

	req := service.ManualEditRequest{
		UserID:     user.ID,
		Date:       date,
		AdminNotes: strings.Join(fields[3:], " "),
	}
	if hours, err := strconv.ParseFloat(strings.ReplaceAll(fields[2], ",", "."), 64); err == nil {
		req.HoursWorked = &hours
		req.Status = "checked-out"
	} else {
		in, out, err := parseClockRange(fields[2])
		if err != nil {
			h.sendError(chatID, "Ошибка", err)
			return
		}
		req.CheckIn = clockOn(date, in, h.reports.Location())
		req.CheckOut = clockOn(date, out, h.reports.Location())
	}

	record, err := h.attendance.ManualEdit(ctx, req)
	if err != nil {
		h.sendError(chatID, "Ошибка правки", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"admin_chat_id": chatID,
		"user_id":       user.ID,
		"date":          date.String(),
	}).Info("Attendance edited from bot")

	text := fmt.Sprintf("✏️ Отметка %s за %s исправлена", user.FullName(), formatDate(date))
	if record.HoursWorked != nil {
		text += "\n⏳ Отработано: " + formatHours(*record.HoursWorked)
	}
	h.send(chatID, text)
	h.screens.InvalidateAll()
}

// clockOn - момент времени суток clock в день d
func clockOn(d calendar.Date, clock string, loc *time.Location) *time.Time {
	c, err := calendar.ParseClock(clock)
	if err != nil {
		return nil
	}
	t := time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, loc)
	return &t
}
