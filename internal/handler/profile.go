package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type profileStep struct {
	name      string
	firstName string
}

const (
	stepFirstName = "awaiting_first_name"
	stepLastName  = "awaiting_last_name"
)

// profileStates - незавершенные регистрации по чатам
type profileStates struct {
	mu     sync.Mutex
	states map[int64]profileStep
}

func newProfileStates() *profileStates {
	return &profileStates{states: make(map[int64]profileStep)}
}

func (p *profileStates) get(chatID int64) (profileStep, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.states[chatID]
	return s, ok
}

func (p *profileStates) set(chatID int64, s profileStep) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[chatID] = s
}

func (p *profileStates) clear(chatID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.states, chatID)
}

// startRegistration начинает процесс создания профиля
func (h *Handler) startRegistration(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	// Проверяем, есть ли уже профиль
	if _, err := h.users.GetByChatID(ctx, chatID); err == nil {
		h.send(chatID, "❌ У вас уже есть профиль!\nИспользуйте /me чтобы посмотреть его.")
		return
	}

	h.profiles.set(chatID, profileStep{name: stepFirstName})
	h.send(chatID, `👤 Регистрация

Шаг 1 из 2:
✏️ Пожалуйста, отправьте ваше имя:`)
}

// handleProfileState обрабатывает шаги регистрации
func (h *Handler) handleProfileState(ctx context.Context, message *tgbotapi.Message, step profileStep) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch step.name {
	case stepFirstName:
		if text == "" {
			h.send(chatID, "✏️ Имя не может быть пустым, отправьте ваше имя:")
			return
		}
		h.profiles.set(chatID, profileStep{name: stepLastName, firstName: text})
		h.send(chatID, fmt.Sprintf(`Шаг 2 из 2:
✅ Имя сохранено: %s
✏️ Теперь отправьте вашу фамилию (если нет фамилии, отправьте "-"):`, text))

	case stepLastName:
		lastName := text
		if lastName == "-" {
			lastName = ""
		}

		username := ""
		if message.From != nil {
			username = message.From.UserName
		}

		// Состояние снимается в любом случае
		h.profiles.clear(chatID)

		user, err := h.users.Register(ctx, chatID, username, step.firstName, lastName)
		if err != nil {
			h.sendError(chatID, "Ошибка создания профиля", err)
			return
		}

		h.send(chatID, "✅ Профиль создан!\n\n"+h.users.FormatUserInfo(user))

	default:
		h.profiles.clear(chatID)
	}
}

func (h *Handler) showProfile(ctx context.Context, message *tgbotapi.Message) {
	user, ok := h.currentUser(ctx, message.Chat.ID)
	if !ok {
		return
	}
	h.send(message.Chat.ID, h.users.FormatUserInfo(user))
}

// showAllUsers показывает всех сотрудников
func (h *Handler) showAllUsers(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	users, err := h.users.All(ctx)
	if err != nil {
		h.sendError(chatID, "Ошибка получения списка пользователей", err)
		return
	}
	if len(users) == 0 {
		h.send(chatID, "👥 Сотрудников пока нет.")
		return
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("👥 Сотрудники (%d):", len(users)))
	lines = append(lines, "")
	for i, u := range users {
		line := fmt.Sprintf("%d. %s", i+1, u.FullName())
		if u.Username != "" {
			line += " (@" + u.Username + ")"
		}
		if u.IsAdmin() {
			line += " 👑"
		}
		lines = append(lines, line)
		lines = append(lines, "   🆔 "+u.ID)
	}
	h.send(chatID, strings.Join(lines, "\n"))
}

// setUserRole назначает или снимает администратора
func (h *Handler) setUserRole(ctx context.Context, message *tgbotapi.Message, args string, promote bool) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	ref := strings.TrimSpace(args)
	if ref == "" {
		h.send(chatID, "❌ Укажите сотрудника: /promote @username или ID")
		return
	}

	role := models.RoleEmployee
	if promote {
		role = models.RoleAdmin
	}

	var protected int64
	if h.config != nil {
		protected = h.config.BaseAdminChatID
	}
	user, err := h.users.SetRole(ctx, ref, role, protected)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			h.send(chatID, "❌ Нельзя снять права с главного администратора.")
			return
		}
		h.sendError(chatID, "Ошибка изменения роли", err)
		return
	}

	if promote {
		h.send(chatID, fmt.Sprintf("👑 %s теперь администратор.", user.FullName()))
		h.send(user.ChatID, "👑 Вам выданы права администратора. Команды: /helpadmin")
		return
	}
	h.send(chatID, fmt.Sprintf("👤 %s больше не администратор.", user.FullName()))
}
