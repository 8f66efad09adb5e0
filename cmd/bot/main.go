package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"attendance-reconciler/internal/app"
	"attendance-reconciler/internal/config"
	"attendance-reconciler/internal/handler"
	"attendance-reconciler/internal/logger"
	"attendance-reconciler/pkg/telegram"
)

func main() {
	cfg := config.GetBotConfig()
	log := logger.New(cfg.LogLevel)
	log.Info("Config initialized...")

	a, err := app.New(cfg, nil, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализируем администратора из конфига
	if err := a.Users.InitializeAdmin(ctx, cfg.BaseAdminChatID); err != nil {
		log.WithError(err).Warn("Failed to initialize admin")
	} else if cfg.BaseAdminChatID != 0 {
		log.WithField("chat_id", cfg.BaseAdminChatID).Info("Admin initialized")
	}

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.BotDebug)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Telegram client")
	}
	log.Infof("Authorized on account %s", client.Bot.Self.UserName)

	botHandler := handler.NewHandler(
		client,
		a.Users,
		a.WorkingDays,
		a.Holidays,
		a.Leaves,
		a.Attendance,
		a.Reports,
		cfg,
		log,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		botHandler.HandleUpdates(ctx, client.Updates())
	}()

	log.Info("Bot started. Press Ctrl+C to stop.")
	<-ctx.Done()

	// Останавливаем получение обновлений и ждем текущие обработчики
	client.Stop()
	<-done

	if err := a.Close(); err != nil {
		log.WithError(err).Warn("Error closing database")
	}
	log.Info("Bot stopped gracefully")
}
