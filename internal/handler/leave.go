package handler

import (
	"context"
	"fmt"
	"strings"

	"attendance-reconciler/internal/recon"
	"attendance-reconciler/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// leaveActionPrefix - кнопки одобрения/отклонения: "l:a:<id>", "l:r:<id>"
const leaveActionPrefix = "l:"

// parseLeaveArgs разбирает "тип дата[-дата] [время-время] [причина]"
func parseLeaveArgs(userID, args string) (service.CreateLeaveRequest, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return service.CreateLeaveRequest{}, errBadArgs
	}

	req := service.CreateLeaveRequest{UserID: userID, Type: strings.ToLower(fields[0])}
	if name, ok := strings.CutPrefix(fields[0], "custom:"); ok {
		req.Type = string(recon.LeaveCustom)
		req.CustomType = strings.ReplaceAll(name, "_", " ")
	}

	start, end, err := parseDateRange(fields[1])
	if err != nil {
		return service.CreateLeaveRequest{}, err
	}
	rest := fields[2:]

	switch {
	case !end.IsZero():
		req.Category = string(recon.LeaveMultipleDay)
		req.Start, req.End = start, end
	case len(rest) > 0 && strings.Contains(rest[0], ":"):
		from, to, err := parseClockRange(rest[0])
		if err != nil {
			return service.CreateLeaveRequest{}, err
		}
		req.Category = string(recon.LeaveHourly)
		req.Date = start
		req.StartTime, req.EndTime = from, to
		rest = rest[1:]
	default:
		req.Category = string(recon.LeaveSingleDay)
		req.Date = start
	}

	req.Reason = strings.Join(rest, " ")
	return req, nil
}

func (h *Handler) requestLeave(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	req, err := parseLeaveArgs(user.ID, args)
	if err != nil {
		h.send(chatID, "❌ Формат: /leave тип дата[-дата] [время-время] [причина]\nПример: /leave annual 01.07.2024-14.07.2024 Море")
		return
	}

	leave, err := h.leaves.Create(ctx, req)
	if err != nil {
		h.sendError(chatID, "Ошибка создания заявки", err)
		return
	}
	h.screens.InvalidateAll()

	h.send(chatID, fmt.Sprintf("📝 Заявка отправлена на рассмотрение\n\n%s\n🆔 %s", formatLeave(*leave, ""), leave.ID))
	h.notifyAdmins(ctx, fmt.Sprintf("🔔 Новая заявка: %s\nРассмотреть: /vacations", formatLeave(*leave, user.FullName())))
}

func (h *Handler) reviewLeave(ctx context.Context, message *tgbotapi.Message, args string, approve bool) {
	chatID := message.Chat.ID
	admin, ok := h.requireAdmin(ctx, chatID)
	if !ok {
		return
	}

	id := strings.TrimSpace(args)
	if id == "" {
		h.send(chatID, "❌ Укажите ID заявки. Список: /vacations")
		return
	}

	text, err := h.review(ctx, id, admin.ID, approve)
	if err != nil {
		h.sendError(chatID, "Ошибка", err)
		return
	}
	h.send(chatID, text)
}

// review меняет статус заявки и уведомляет ее автора
func (h *Handler) review(ctx context.Context, id, reviewerID string, approve bool) (string, error) {
	var (
		leave *recon.Leave
		err   error
	)
	if approve {
		leave, err = h.leaves.Approve(ctx, id, reviewerID)
	} else {
		leave, err = h.leaves.Reject(ctx, id, reviewerID)
	}
	if err != nil {
		return "", err
	}
	h.screens.InvalidateAll()

	verdict := "✅ Заявка одобрена"
	if !approve {
		verdict = "❌ Заявка отклонена"
	}
	if owner, err := h.users.GetByID(ctx, leave.UserID); err == nil {
		h.send(owner.ChatID, verdict+"\n\n"+formatLeave(*leave, ""))
	}
	return verdict, nil
}

func (h *Handler) cancelLeave(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	id := strings.TrimSpace(args)
	if id == "" {
		h.send(chatID, "❌ Укажите ID заявки. Список: /vacations")
		return
	}

	leave, err := h.leaves.Cancel(ctx, id, user.ID)
	if err != nil {
		h.sendError(chatID, "Ошибка отзыва заявки", err)
		return
	}
	h.screens.InvalidateAll()
	h.send(chatID, "🚫 Заявка отозвана\n\n"+formatLeave(*leave, ""))
}

// handleLeaveCallback обрабатывает кнопки на экране заявок
func (h *Handler) handleLeaveCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) string {
	chatID := callback.Message.Chat.ID
	action, id, ok := strings.Cut(strings.TrimPrefix(callback.Data, leaveActionPrefix), ":")
	if !ok || (action != "a" && action != "r") {
		return "Устаревшая кнопка"
	}

	admin, ok := h.requireAdmin(ctx, chatID)
	if !ok {
		return ""
	}

	verdict, err := h.review(ctx, id, admin.ID, action == "a")
	if err != nil {
		if isUserError(err) {
			return userMessage("Ошибка", err)
		}
		h.sendError(chatID, "Ошибка", err)
		return ""
	}

	if p, ok := h.screens.Current(chatID); ok {
		h.showScreen(ctx, chatID, callback.Message.MessageID, p)
	}
	return verdict
}

func (h *Handler) notifyAdmins(ctx context.Context, text string) {
	admins, err := h.users.Admins(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to list admins for notification")
		return
	}
	for _, a := range admins {
		h.send(a.ChatID, text)
	}
}
