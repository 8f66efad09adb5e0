// Package cli - административная командная строка: отчеты, графики
// работы, праздники и заявки на отпуск без Telegram.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"attendance-reconciler/internal/app"
	"attendance-reconciler/internal/config"
	"attendance-reconciler/internal/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "attendancectl",
	Short:         "Учет рабочих дней, отпусков и посещаемости",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(workdaysCmd)
	rootCmd.AddCommand(holidayCmd)
	rootCmd.AddCommand(leaveCmd)
}

func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		_, _ = fmt.Fprintln(rootCmd.ErrOrStderr(), Error("Ошибка: "+err.Error()))
	}
	return err
}

// openApp подключается к базе из .env и переменных окружения.
// В тестах подменяется.
var openApp = func(stderr io.Writer) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogLevel)
	log.SetOutput(stderr)
	return app.New(cfg, nil, log)
}

// withApp открывает приложение на время одной команды
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// period - год и месяц из флагов, нули заменяются текущими
func period(cmd *cobra.Command, a *app.App) (int, time.Month, error) {
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")

	today := a.Reports.Today()
	if year == 0 {
		year = today.Year
	}
	if month == 0 {
		month = int(today.Month)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("месяц должен быть от 1 до 12, получено %d", month)
	}
	return year, time.Month(month), nil
}
