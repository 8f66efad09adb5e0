package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/recon"
	"attendance-reconciler/internal/repository"
	"attendance-reconciler/internal/service"
	"attendance-reconciler/internal/view"
	"attendance-reconciler/pkg/calendar"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type screen struct {
	text string
	rows [][]tgbotapi.InlineKeyboardButton
}

func (h *Handler) defaultScreen(v view.View, userID string) view.Params {
	p := view.Default(v, h.reports.Today().Time(h.reports.Location()))
	p.UserID = userID
	if v == view.Settings && userID != "" {
		p.Mode = view.ModeUser
	}
	return p
}

// authorize ограничивает сотрудника его собственными данными
func authorize(user *models.User, p view.Params) view.Params {
	if user.IsAdmin() {
		return p
	}
	p.UserID = user.ID
	if p.View == view.Settings {
		p.Mode = view.ModeUser
	}
	return p
}

// showScreen показывает экран p. messageID != 0 - редактирование
// сообщения с кнопками. Возвращает false, если экран уже показан и
// загружать нечего.
func (h *Handler) showScreen(ctx context.Context, chatID int64, messageID int, p view.Params) bool {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return true
	}
	p = authorize(user, p)
	if err := p.Validate(); err != nil {
		h.sendError(chatID, "Ошибка", err)
		return true
	}

	missing := h.screens.Transition(chatID, p)
	if len(missing) == 0 && messageID != 0 {
		return false
	}
	h.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"view":    p.View,
		"period":  fmt.Sprintf("%d-%02d", p.Year, int(p.Month)),
		"missing": len(missing),
	}).Debug("Loading screen")

	sc, current, err := h.loadScreen(ctx, chatID, p, func(ctx context.Context) (screen, error) {
		return h.render(ctx, user, p)
	})
	if err != nil {
		h.sendError(chatID, "Ошибка загрузки", err)
		return true
	}
	if !current {
		// пользователь уже листает дальше
		return true
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(append(sc.rows, h.navigation(user, p)...)...)
	if messageID != 0 {
		h.sendMsg(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, sc.text, keyboard))
		return true
	}
	msg := tgbotapi.NewMessage(chatID, sc.text)
	msg.ReplyMarkup = keyboard
	h.sendMsg(msg)
	return true
}

// loadScreen строит экран p. current == false, если за это время чат
// открыл другой экран: результат тогда выбрасывается, чтобы не
// перезаписать более новое сообщение.
func (h *Handler) loadScreen(ctx context.Context, chatID int64, p view.Params, render func(context.Context) (screen, error)) (screen, bool, error) {
	sc, err := service.Latest(h.reports.Tracker(), ctx, view.ScreenKey(chatID), render)
	if errors.Is(err, service.ErrStaleRequest) {
		return screen{}, false, nil
	}
	if err != nil {
		return screen{}, false, err
	}
	if !h.screens.Loaded(chatID, p) {
		return screen{}, false, nil
	}
	return sc, true, nil
}

func screenButton(text string, p view.Params) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, screenPrefix+p.Encode())
}

// navigation - листание периода и переключение экранов
func (h *Handler) navigation(user *models.User, p view.Params) [][]tgbotapi.InlineKeyboardButton {
	title := fmt.Sprintf("%s %d", calendar.MonthName(p.Month), p.Year)
	if p.View == view.Reports && p.Mode == view.ModeYear {
		title = fmt.Sprint(p.Year)
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			screenButton("◀️", p.Shift(-1)),
			screenButton(title, p),
			screenButton("▶️", p.Shift(1)),
		),
	}

	if p.View == view.Reports {
		toggle := p
		label := "📆 За год"
		toggle.Mode = view.ModeYear
		if p.Mode == view.ModeYear {
			label = "🗓 За месяц"
			toggle.Mode = view.ModeMonth
		}
		row := tgbotapi.NewInlineKeyboardRow(screenButton(label, toggle))
		if user.IsAdmin() && p.UserID != "" {
			all := p
			all.UserID = ""
			row = append(row, screenButton("👥 Все", all))
		}
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		screenButton("📊", p.Open(view.Reports)),
		screenButton("📅", p.Open(view.Calendar)),
		screenButton("⚙️", h.settingsFrom(user, p)),
		screenButton("🏖", p.Open(view.Vacations)),
	))
	return rows
}

// settingsFrom - переход в настройки: без выбранного сотрудника
// администратор видит общий график
func (h *Handler) settingsFrom(user *models.User, p view.Params) view.Params {
	next := p.Open(view.Settings)
	if user.IsAdmin() && p.UserID == "" {
		next.Mode = view.ModeGlobal
	}
	return next
}

func (h *Handler) render(ctx context.Context, user *models.User, p view.Params) (screen, error) {
	switch p.View {
	case view.Reports:
		return h.renderReport(ctx, p)
	case view.Calendar:
		return h.renderCalendar(ctx, p)
	case view.Settings:
		return h.renderSettings(ctx, p)
	case view.Vacations:
		return h.renderVacations(ctx, user, p)
	}
	return screen{}, fmt.Errorf("%w: экран %q", view.ErrInvalidParams, p.View)
}

func (h *Handler) renderReport(ctx context.Context, p view.Params) (screen, error) {
	if p.Mode == view.ModeYear {
		months, err := h.reports.YearReport(ctx, p.Year)
		if err != nil {
			return screen{}, err
		}
		if p.UserID != "" {
			return screen{text: formatUserYearReport(p.Year, months, p.UserID)}, nil
		}
		return screen{text: formatYearReport(p.Year, months)}, nil
	}

	var (
		s   recon.MonthSummary
		err error
	)
	if p.UserID == "" {
		s, err = h.reports.MonthReport(ctx, p.Year, p.Month)
	} else {
		s, err = h.reports.UserMonthReport(ctx, p.UserID, p.Year, p.Month)
	}
	if err != nil {
		return screen{}, err
	}
	return screen{text: formatMonthReport(s)}, nil
}

func (h *Handler) renderCalendar(ctx context.Context, p view.Params) (screen, error) {
	days, err := h.reports.CalendarMonth(ctx, p.UserID, p.Year, p.Month)
	if err != nil {
		return screen{}, err
	}
	return screen{text: formatCalendar(p.Year, p.Month, days, h.reports.Today())}, nil
}

func (h *Handler) renderSettings(ctx context.Context, p view.Params) (screen, error) {
	userID := ""
	header := ""
	if p.Mode == view.ModeUser {
		u, err := h.users.GetByID(ctx, p.UserID)
		if err != nil {
			return screen{}, err
		}
		userID = u.ID
		header = "👤 " + u.FullName() + "\n"
	}

	cfg, err := h.workingDays.Resolve(ctx, p.Year, p.Month, userID)
	if err != nil {
		return screen{}, err
	}
	return screen{text: header + formatConfig(cfg)}, nil
}

func (h *Handler) renderVacations(ctx context.Context, user *models.User, p view.Params) (screen, error) {
	names, err := h.userNames(ctx)
	if err != nil {
		return screen{}, err
	}

	if user.IsAdmin() && p.UserID == "" {
		pending, err := h.leaves.Pending(ctx)
		if err != nil {
			return screen{}, err
		}
		if len(pending) == 0 {
			return screen{text: "🏖 Заявок на рассмотрении нет."}, nil
		}

		var sc screen
		lines := []string{fmt.Sprintf("🏖 На рассмотрении (%d):", len(pending)), ""}
		for i, l := range pending {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, formatLeave(l, names[l.UserID])))
			lines = append(lines, "   🆔 "+l.ID)
			sc.rows = append(sc.rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ %d", i+1), leaveActionPrefix+"a:"+l.ID),
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("❌ %d", i+1), leaveActionPrefix+"r:"+l.ID),
			))
		}
		sc.text = strings.Join(lines, "\n")
		return sc, nil
	}

	leaves, err := h.leaves.List(ctx, repository.LeaveFilter{UserID: p.UserID, Year: p.Year})
	if err != nil {
		return screen{}, err
	}
	if len(leaves) == 0 {
		return screen{text: fmt.Sprintf("🏖 Заявок за %d год нет.\nПодать заявку: /leave", p.Year)}, nil
	}

	lines := []string{fmt.Sprintf("🏖 %s: заявки за %d год", names[p.UserID], p.Year), ""}
	for _, l := range leaves {
		lines = append(lines, formatLeave(l, ""))
		lines = append(lines, "   🆔 "+l.ID)
	}
	return screen{text: strings.Join(lines, "\n")}, nil
}

func (h *Handler) userNames(ctx context.Context) (map[string]string, error) {
	refs, err := h.users.Refs(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(refs))
	for _, r := range refs {
		names[r.ID] = r.Name
	}
	return names, nil
}

// splitArgs отделяет период ("02.2024", "2024") от ссылки на сотрудника
func splitArgs(args string) (period, ref string) {
	for _, f := range strings.Fields(args) {
		if period == "" && looksLikePeriod(f) {
			period = f
			continue
		}
		if ref == "" {
			ref = f
		}
	}
	return period, ref
}

func looksLikePeriod(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != '-' {
			return false
		}
	}
	return true
}

// target - сотрудник экрана: "" - свой профиль (или все для "all"
// у администратора)
func (h *Handler) target(ctx context.Context, chatID int64, user *models.User, ref string, all bool) (string, bool) {
	switch {
	case ref == "all" && user.IsAdmin():
		return "", true
	case ref == "" && all && user.IsAdmin():
		return "", true
	case ref == "" || !user.IsAdmin():
		return user.ID, true
	}

	u, err := h.users.Find(ctx, ref)
	if err != nil {
		h.sendError(chatID, "Ошибка", err)
		return "", false
	}
	return u.ID, true
}

func (h *Handler) openCalendar(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	period, ref := splitArgs(args)
	year, month, err := parseMonth(period, h.reports.Today().Time(h.reports.Location()))
	if err != nil {
		h.sendError(chatID, "Ошибка", err)
		return
	}
	userID, ok := h.target(ctx, chatID, user, ref, false)
	if !ok {
		return
	}

	p := h.defaultScreen(view.Calendar, userID)
	p.Year, p.Month = year, month
	h.showScreen(ctx, chatID, 0, p)
}

func (h *Handler) openReport(ctx context.Context, message *tgbotapi.Message, args string, yearly bool) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	now := h.reports.Today().Time(h.reports.Location())
	period, ref := splitArgs(args)
	p := h.defaultScreen(view.Reports, "")

	if yearly {
		year, err := parseYear(period, now)
		if err != nil {
			h.sendError(chatID, "Ошибка", err)
			return
		}
		p.Year, p.Mode = year, view.ModeYear
	} else {
		year, month, err := parseMonth(period, now)
		if err != nil {
			h.sendError(chatID, "Ошибка", err)
			return
		}
		p.Year, p.Month = year, month
	}

	userID, ok := h.target(ctx, chatID, user, ref, true)
	if !ok {
		return
	}
	p.UserID = userID
	h.showScreen(ctx, chatID, 0, p)
}

func (h *Handler) openSettings(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	period, ref := splitArgs(args)
	year, month, err := parseMonth(period, h.reports.Today().Time(h.reports.Location()))
	if err != nil {
		h.sendError(chatID, "Ошибка", err)
		return
	}
	userID, ok := h.target(ctx, chatID, user, ref, true)
	if !ok {
		return
	}

	p := h.defaultScreen(view.Settings, userID)
	p.Year, p.Month = year, month
	h.showScreen(ctx, chatID, 0, p)
}

func (h *Handler) openVacations(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	userID := user.ID
	if user.IsAdmin() {
		userID = ""
	}
	h.showScreen(ctx, chatID, 0, h.defaultScreen(view.Vacations, userID))
}
