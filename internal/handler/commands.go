package handler

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start", "help":
		h.sendHelpMessage(message)
	case "helpadmin":
		h.sendAdminHelpMessage(ctx, message)

	// Профиль
	case "register":
		h.startRegistration(ctx, message)
	case "me", "myprofile":
		h.showProfile(ctx, message)
	case "users":
		h.showAllUsers(ctx, message)
	case "promote":
		h.setUserRole(ctx, message, args, true)
	case "demote":
		h.setUserRole(ctx, message, args, false)

	// Отметки
	case "in":
		h.checkIn(ctx, message)
	case "out":
		h.checkOut(ctx, message)
	case "today":
		h.showToday(ctx, message)
	case "edit":
		h.editAttendance(ctx, message, args)

	// Экраны
	case "calendar":
		h.openCalendar(ctx, message, args)
	case "report":
		h.openReport(ctx, message, args, false)
	case "yearreport":
		h.openReport(ctx, message, args, true)
	case "settings":
		h.openSettings(ctx, message, args)
	case "vacations":
		h.openVacations(ctx, message)

	// График
	case "setdays":
		h.setWorkingDays(ctx, message, args)
	case "applyglobal":
		h.applyGlobal(ctx, message, args)

	// Отпуска
	case "leave":
		h.requestLeave(ctx, message, args)
	case "approve":
		h.reviewLeave(ctx, message, args, true)
	case "reject":
		h.reviewLeave(ctx, message, args, false)
	case "cancel":
		h.cancelLeave(ctx, message, args)

	// Праздники
	case "holidays":
		h.showHolidays(ctx, message, args)
	case "addholiday":
		h.addHoliday(ctx, message, args)
	case "delholiday":
		h.deleteHoliday(ctx, message, args)
	case "importholidays":
		h.importNational(ctx, message, args)
	case "importcalendar":
		h.send(message.Chat.ID, "📎 Отправьте JSON производственного календаря файлом с подписью /importcalendar [название]")

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.send(message.Chat.ID, "❌ Неизвестная команда. Используйте /help для списка команд.")
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	text := `📋 Доступные команды:

👤 Профиль:
/register - Зарегистрироваться
/me - Показать мой профиль

⏰ Учет рабочего времени:
/in - Отметить приход
/out - Отметить уход
/today - Отметка за сегодня

📅 Календарь и отчеты:
/calendar [мм.гггг] - Мой календарь на месяц
/report [мм.гггг] - Мой отчет за месяц
/yearreport [гггг] - Годовой отчет
/settings [мм.гггг] - Мой график работы
/holidays [гггг] - Праздники

🏖️ Отпуска:
/leave тип дата [время] [причина] - Подать заявку
    Типы: sick, annual, emergency, unpaid, maternity, paternity, custom:Название
    Пример: /leave annual 01.07.2024-14.07.2024 Море
    Пример: /leave sick 05.02.2024
    Пример: /leave emergency 05.02.2024 9:00AM-12:00PM Врач
/vacations - Мои заявки
/cancel ID - Отозвать заявку

💡 Кнопки ◀️ ▶️ под календарем и отчетами листают месяцы.`

	h.send(message.Chat.ID, text)
}

func (h *Handler) sendAdminHelpMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	text := `📋 Команды администратора:

👑 Сотрудники:
/users - Все сотрудники
/promote @username - Назначить администратора
/demote @username - Снять администратора
/edit @username дата часы [заметка] - Исправить отметку
    Пример: /edit @anna 05.02.2024 8

📊 Отчеты:
/report [мм.гггг] all - Сводка по всем сотрудникам
/report [мм.гггг] @username - Отчет сотрудника
/yearreport [гггг] - Годовая сводка

📅 График работы:
/settings [мм.гггг] [@username] - Показать график
/setdays мм.гггг дни часы [+N -N] [@username] - Задать график
    Дни недели: 0 - Вс, 1 - Пн ... 6 - Сб
    +N - число N рабочее, -N - выходное
    Пример: /setdays 02.2024 0,1,2,3,4,6 8 -14
/applyglobal мм.гггг all - Сбросить всех на общий график
/applyglobal мм.гггг @user1 @user2 - Сбросить выбранных

🏖️ Отпуска:
/vacations - Заявки на рассмотрении
/approve ID - Одобрить
/reject ID - Отклонить

🎉 Праздники:
/addholiday дата[-дата] [ежегодно] Название
    Пример: /addholiday 20.02.2024-22.02.2024 Выезд
/delholiday ID - Удалить праздник
/importholidays код год - Государственные праздники (` + nationalList() + `)
/importcalendar - Загрузить производственный календарь (JSON файлом)`

	if h.config != nil && h.config.BaseAdminChatID != 0 {
		text += fmt.Sprintf("\n\n🔧 ID главного администратора: %d", h.config.BaseAdminChatID)
	}

	h.send(chatID, text)
}
