package handler

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"attendance-reconciler/internal/recon"
	"attendance-reconciler/internal/service"
	"attendance-reconciler/pkg/calendar"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// setWorkingDays - /setdays мм.гггг дни часы [+N -N] [@username]
func (h *Handler) setWorkingDays(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) < 3 {
		h.send(chatID, "❌ Формат: /setdays мм.гггг дни часы [+N -N] [@username]\nПример: /setdays 02.2024 0,1,2,3,4,6 8 -14")
		return
	}

	year, month, err := parseMonth(fields[0], h.reports.Today().Time(h.reports.Location()))
	if err != nil {
		h.sendError(chatID, "Ошибка", err)
		return
	}

	var weekdays []int
	if fields[1] != "-" {
		if weekdays, err = parseWeekdays(fields[1]); err != nil {
			h.sendError(chatID, "Ошибка", err)
			return
		}
	}

	hours, err := strconv.ParseFloat(strings.ReplaceAll(fields[2], ",", "."), 64)
	if err != nil {
		h.sendError(chatID, "Ошибка", fmt.Errorf("%w: часы %q", errBadArgs, fields[2]))
		return
	}

	req := service.SaveWorkingDaysRequest{
		Year:                     year,
		Month:                    int(month),
		DefaultWorkingDaysOfWeek: weekdays,
		DailyHours:               hours,
	}
	userName := ""
	for _, f := range fields[3:] {
		if o, ok := parseOverride(f); ok {
			req.WorkingDays = append(req.WorkingDays, o)
			continue
		}
		u, err := h.users.Find(ctx, f)
		if err != nil {
			h.sendError(chatID, "Ошибка", err)
			return
		}
		req.UserID = u.ID
		userName = u.FullName()
	}

	cfg, err := h.workingDays.Save(ctx, req)
	if err != nil {
		h.sendError(chatID, "Ошибка сохранения графика", err)
		return
	}
	h.screens.InvalidateAll()
	h.logger.WithFields(logrus.Fields{
		"year":      year,
		"month":     int(month),
		"user_id":   req.UserID,
		"overrides": describeOverrides(req.WorkingDays),
	}).Info("Working days set from bot")

	text := "✅ График сохранен\n\n"
	if userName != "" {
		text += "👤 " + userName + "\n"
	}
	h.send(chatID, text+formatConfig(cfg))
}

// applyGlobal - /applyglobal мм.гггг all | @user1 @user2 ...
func (h *Handler) applyGlobal(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) < 2 {
		h.send(chatID, "❌ Формат: /applyglobal мм.гггг all\nили /applyglobal мм.гггг @user1 @user2")
		return
	}
	year, month, err := parseMonth(fields[0], h.reports.Today().Time(h.reports.Location()))
	if err != nil {
		h.sendError(chatID, "Ошибка", err)
		return
	}

	var result service.BulkResult
	if len(fields) == 2 && fields[1] == "all" {
		result, err = h.workingDays.ApplyGlobalToAllUsers(ctx, year, month)
		if err != nil {
			h.sendError(chatID, "Ошибка", err)
			return
		}
	} else {
		ids := make([]string, 0, len(fields)-1)
		for _, ref := range fields[1:] {
			u, err := h.users.Find(ctx, ref)
			if err != nil {
				h.sendError(chatID, "Ошибка: "+ref, err)
				return
			}
			ids = append(ids, u.ID)
		}
		result = h.workingDays.ApplyGlobal(ctx, ids, year, month)
	}
	h.screens.InvalidateAll()

	names, err := h.userNames(ctx)
	if err != nil {
		names = map[string]string{}
	}
	h.send(chatID, formatBulkResult(year, calendar.MonthName(month), result, names))
}

func formatBulkResult(year int, month string, r service.BulkResult, names map[string]string) string {
	lines := []string{
		fmt.Sprintf("🌐 Общий график %s %d применен", month, year),
		fmt.Sprintf("✅ Успешно: %d", len(r.Succeeded)),
	}
	if len(r.Failed) == 0 {
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("❌ Ошибки: %d", len(r.Failed)))
	ids := make([]string, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		name := names[id]
		if name == "" {
			name = id
		}
		lines = append(lines, fmt.Sprintf("   • %s: %s", name, userMessage("не удалось", r.Failed[id])))
	}
	return strings.Join(lines, "\n")
}

// describeOverrides - отметки дней в записи команды ("+9 -14")
func describeOverrides(overrides []recon.DayOverride) string {
	parts := make([]string, 0, len(overrides))
	for _, o := range overrides {
		sign := "-"
		if o.IsWorkingDay {
			sign = "+"
		}
		parts = append(parts, sign+strconv.Itoa(o.Day))
	}
	return strings.Join(parts, " ")
}
