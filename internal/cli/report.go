package cli

import (
	"fmt"
	"time"

	"attendance-reconciler/internal/app"
	"attendance-reconciler/internal/recon"
	"attendance-reconciler/pkg/calendar"

	"github.com/spf13/cobra"
)

var reportMonthCmd = LeafCommand{
	Use:      "month",
	Short:    "Сводка за месяц",
	IntFlags: periodFlags,
	StrFlags: []StringFlag{
		{Name: "user", Usage: "сотрудник: ID, @username или chat ID"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			year, month, err := period(cmd, a)
			if err != nil {
				return err
			}
			user, _ := cmd.Flags().GetString("user")
			return runMonthReport(cmd, a, year, month, user)
		})
	},
}.Build()

var reportYearCmd = LeafCommand{
	Use:      "year",
	Short:    "Сводка за год по месяцам",
	IntFlags: periodFlags[:1],
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			year, _, err := period(cmd, a)
			if err != nil {
				return err
			}
			return runYearReport(cmd, a, year)
		})
	},
}.Build()

var reportCmd = GroupCommand{
	Use:         "report",
	Short:       "Отчеты по рабочему времени",
	Subcommands: []*cobra.Command{reportMonthCmd, reportYearCmd},
}.Build()

func runMonthReport(cmd *cobra.Command, a *app.App, year int, month time.Month, userRef string) error {
	ctx := cmd.Context()
	var (
		s   recon.MonthSummary
		err error
	)
	if userRef == "" {
		s, err = a.Reports.MonthReport(ctx, year, month)
	} else {
		user, ferr := a.Users.Find(ctx, userRef)
		if ferr != nil {
			return ferr
		}
		s, err = a.Reports.UserMonthReport(ctx, user.ID, year, month)
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "%s  %s\n", Header(fmt.Sprintf("%s %d", calendar.MonthName(s.Month), s.Year)),
		Silent(fmt.Sprintf("рабочих дней %d, %v ч/день, посещаемость %.1f%%", s.WorkingDaysCount, s.DailyHours, s.AttendanceRate*100)))

	if len(s.Users) == 0 {
		_, _ = fmt.Fprintln(w, Silent("Сотрудников нет."))
		return nil
	}

	_, _ = fmt.Fprintf(w, "%-24s %5s %5s %5s %6s %10s %8s %8s %8s\n",
		"Сотрудник", "Дни", "Был", "Нет", "Отпуск", "Отработано", "−Отпуск", "Итого", "Норма")
	for _, u := range s.Users {
		name := u.Name
		if u.CustomConfig {
			name += "*"
		}
		line := fmt.Sprintf("%-24s %5d %5d %5d %6d %10.2f %8.2f %8.2f %8.2f",
			truncate(name, 24), u.WorkingDays, u.AttendedDays, u.AbsentDays, u.LeaveDays,
			u.Hours.RawHours, u.Hours.DeductedHours, u.Hours.ActualHours, u.RequiredHours)
		if u.Hours.Overdrawn {
			line += " " + Warning("часов отпуска больше отработанных")
		}
		_, _ = fmt.Fprintln(w, line)
	}

	if len(s.Users) > 1 {
		_, _ = fmt.Fprintf(w, "%-24s %5s %5s %5s %6s %10.2f %8.2f %8.2f %8.2f\n",
			"Всего", "", "", "", "", s.WorkedHours, s.DeductedHours, s.ActualHours, s.RequiredHours)
	}
	return nil
}

func runYearReport(cmd *cobra.Command, a *app.App, year int) error {
	months, err := a.Reports.YearReport(cmd.Context(), year)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w, Header(fmt.Sprintf("Год %d", year)))
	_, _ = fmt.Fprintf(w, "%-10s %5s %10s %8s %8s %8s\n", "Месяц", "Дни", "Отработано", "Итого", "Норма", "Посещ.")

	days := 0
	var worked, actual float64
	for _, m := range months {
		days += m.WorkingDaysCount
		worked += m.WorkedHours
		actual += m.ActualHours
		_, _ = fmt.Fprintf(w, "%-10s %5d %10.2f %8.2f %8.2f %7.1f%%\n",
			calendar.MonthName(m.Month), m.WorkingDaysCount, m.WorkedHours, m.ActualHours, m.RequiredHours, m.AttendanceRate*100)
	}
	_, _ = fmt.Fprintf(w, "%-10s %5d %10.2f %8.2f\n", "Итого", days, recon.Round2(worked), recon.Round2(actual))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
