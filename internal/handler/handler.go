package handler

import (
	"context"
	"errors"
	"strings"
	"sync"

	"attendance-reconciler/internal/config"
	"attendance-reconciler/internal/models"
	"attendance-reconciler/internal/service"
	"attendance-reconciler/internal/view"
	"attendance-reconciler/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// screenPrefix - callback data кнопок навигации по экранам
const screenPrefix = "v:"

type Handler struct {
	client      *telegram.Client
	users       *service.UserService
	workingDays *service.WorkingDaysService
	holidays    *service.HolidayService
	leaves      *service.LeaveService
	attendance  *service.AttendanceService
	reports     *service.ReportService
	screens     *view.Session
	profiles    *profileStates
	config      *config.BotConfig
	logger      *logrus.Logger
	wg          sync.WaitGroup
}

func NewHandler(
	client *telegram.Client,
	users *service.UserService,
	workingDays *service.WorkingDaysService,
	holidays *service.HolidayService,
	leaves *service.LeaveService,
	attendance *service.AttendanceService,
	reports *service.ReportService,
	cfg *config.BotConfig,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		client:      client,
		users:       users,
		workingDays: workingDays,
		holidays:    holidays,
		leaves:      leaves,
		attendance:  attendance,
		reports:     reports,
		screens:     view.NewSession(),
		profiles:    newProfileStates(),
		config:      cfg,
		logger:      logger,
	}
}

// HandleUpdates обрабатывает каждое обновление в своей горутине и
// возвращается, когда канал закрыт или ctx отменен и все обработчики
// завершились.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer h.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.wg.Add(1)
			go func() {
				defer h.wg.Done()
				defer func() {
					if r := recover(); r != nil {
						h.logger.WithField("panic", r).Error("Update handler panicked")
					}
				}()
				h.handleUpdate(ctx, update)
			}()
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Обработка callback query (для inline кнопок)
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}
	h.handleMessage(ctx, update.Message)
}

// handleCallbackQuery обрабатывает inline кнопки
func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	data := callback.Data

	answer := ""
	switch {
	case strings.HasPrefix(data, screenPrefix):
		p, err := view.Decode(strings.TrimPrefix(data, screenPrefix))
		if err != nil {
			h.logger.WithError(err).WithField("data", data).Warn("Bad screen callback")
			answer = "Устаревшая кнопка"
			break
		}
		if !h.showScreen(ctx, chatID, callback.Message.MessageID, p) {
			answer = "Уже показано"
		}

	case strings.HasPrefix(data, leaveActionPrefix):
		answer = h.handleLeaveCallback(ctx, callback)

	default:
		h.logger.WithField("data", data).Debug("Unknown callback")
	}

	// Отвечаем на callback (убираем "часики" у кнопки)
	if _, err := h.client.Bot.Request(tgbotapi.NewCallback(callback.ID, answer)); err != nil {
		h.logger.WithError(err).Debug("Failed to answer callback")
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From != nil {
		h.logger.WithFields(logrus.Fields{
			"chat_id":  message.Chat.ID,
			"username": message.From.UserName,
		}).Debug(message.Text)
	}

	chatID := message.Chat.ID

	// Пользователь в процессе регистрации
	if step, ok := h.profiles.get(chatID); ok && !message.IsCommand() {
		h.handleProfileState(ctx, message, step)
		return
	}

	if message.Document != nil && strings.HasPrefix(message.Caption, "/importcalendar") {
		h.importCalendarFile(ctx, message)
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	h.send(chatID, "🤔 Я понимаю только команды. Используйте /help для списка команд.")
}

func (h *Handler) send(chatID int64, text string) {
	h.sendMsg(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) sendMsg(msg tgbotapi.Chattable) {
	if _, err := h.client.Bot.Send(msg); err != nil {
		h.logger.WithError(err).Warn("Failed to send message")
	}
}

// sendError отправляет пользователю понятный текст ошибки
func (h *Handler) sendError(chatID int64, prefix string, err error) {
	if !isUserError(err) {
		h.logger.WithError(err).WithField("chat_id", chatID).Error(prefix)
	}
	h.send(chatID, "❌ "+userMessage(prefix, err))
}

// currentUser - профиль автора сообщения; если профиля нет, подсказывает
// как зарегистрироваться
func (h *Handler) currentUser(ctx context.Context, chatID int64) (*models.User, bool) {
	user, err := h.users.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.send(chatID, "❌ Профиль не найден.\nИспользуйте /register чтобы создать профиль.")
			return nil, false
		}
		h.sendError(chatID, "Ошибка получения профиля", err)
		return nil, false
	}
	return user, true
}

// requireAdmin - профиль автора, если он администратор
func (h *Handler) requireAdmin(ctx context.Context, chatID int64) (*models.User, bool) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin() {
		h.logger.WithField("chat_id", chatID).Warn("Unauthorized access to admin command")
		h.send(chatID, "❌ Доступ запрещен. Эта команда только для администраторов.")
		return nil, false
	}
	return user, true
}
