package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"attendance-reconciler/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

func nationalList() string {
	return strings.Join(service.NationalCalendars(), ", ")
}

func (h *Handler) showHolidays(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.currentUser(ctx, chatID); !ok {
		return
	}

	year, err := parseYear(args, h.reports.Today().Time(h.reports.Location()))
	if err != nil {
		h.sendError(chatID, "Ошибка", err)
		return
	}

	holidays, err := h.holidays.ForYear(ctx, year)
	if err != nil {
		h.sendError(chatID, "Ошибка получения праздников", err)
		return
	}
	if len(holidays) == 0 {
		h.send(chatID, fmt.Sprintf("🎉 Праздников на %d год нет.", year))
		return
	}

	lines := []string{fmt.Sprintf("🎉 Праздники %d:", year), ""}
	for _, hd := range holidays {
		lines = append(lines, formatHoliday(hd))
	}
	h.send(chatID, strings.Join(lines, "\n"))
}

// addHoliday - /addholiday дата[-дата] [ежегодно] Название
func (h *Handler) addHoliday(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) < 2 {
		h.send(chatID, "❌ Формат: /addholiday дата[-дата] [ежегодно] Название\nПример: /addholiday 20.02.2024-22.02.2024 Выезд")
		return
	}

	start, end, err := parseDateRange(fields[0])
	if err != nil {
		h.sendError(chatID, "Ошибка", err)
		return
	}
	req := service.CreateHolidayRequest{Start: start, End: end}
	rest := fields[1:]
	if rest[0] == "ежегодно" {
		req.IsRecurring = true
		rest = rest[1:]
	}
	req.Name = strings.Join(rest, " ")

	holiday, err := h.holidays.Create(ctx, req)
	if err != nil {
		h.sendError(chatID, "Ошибка добавления праздника", err)
		return
	}
	h.screens.InvalidateAll()
	h.send(chatID, fmt.Sprintf("✅ Праздник добавлен\n\n%s\n🆔 %s", formatHoliday(*holiday), holiday.ID))
}

func (h *Handler) deleteHoliday(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	id := strings.TrimSpace(args)
	if id == "" {
		h.send(chatID, "❌ Укажите ID праздника")
		return
	}
	if err := h.holidays.Delete(ctx, id); err != nil {
		h.sendError(chatID, "Ошибка удаления праздника", err)
		return
	}
	h.screens.InvalidateAll()
	h.send(chatID, "🗑 Праздник удален")
}

// importNational - /importholidays код год
func (h *Handler) importNational(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) == 0 {
		h.send(chatID, "❌ Формат: /importholidays код [год]\nДоступно: "+nationalList())
		return
	}
	yearArg := ""
	if len(fields) > 1 {
		yearArg = fields[1]
	}
	year, err := parseYear(yearArg, h.reports.Today().Time(h.reports.Location()))
	if err != nil {
		h.sendError(chatID, "Ошибка", err)
		return
	}

	result, err := h.holidays.ImportNational(ctx, fields[0], year)
	if err != nil {
		h.sendError(chatID, "Ошибка импорта", err)
		return
	}
	h.screens.InvalidateAll()
	h.send(chatID, fmt.Sprintf("📥 Импорт %s %d: добавлено %d, уже были %d", fields[0], year, result.Created, result.Skipped))
}

// importCalendarFile загружает JSON производственного календаря,
// присланный файлом с подписью /importcalendar [название]
func (h *Handler) importCalendarFile(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	url, err := h.client.Bot.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		h.sendError(chatID, "Ошибка получения файла", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		h.sendError(chatID, "Ошибка получения файла", err)
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		h.sendError(chatID, "Ошибка получения файла", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		h.sendError(chatID, "Ошибка получения файла", fmt.Errorf("status %s", resp.Status))
		return
	}

	name := strings.TrimSpace(strings.TrimPrefix(message.Caption, "/importcalendar"))
	result, err := h.holidays.ImportFile(ctx, resp.Body, name)
	if err != nil {
		h.sendError(chatID, "Ошибка импорта календаря", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"file":    message.Document.FileName,
		"created": result.Created,
	}).Info("Production calendar uploaded")
	h.screens.InvalidateAll()
	h.send(chatID, fmt.Sprintf("📥 Календарь загружен: добавлено %d, уже были %d", result.Created, result.Skipped))
}
