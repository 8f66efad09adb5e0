package cli

import (
	"fmt"
	"time"

	"attendance-reconciler/internal/app"
	"attendance-reconciler/pkg/calendar"

	"github.com/spf13/cobra"
)

var calendarCmd = LeafCommand{
	Use:      "calendar",
	Short:    "Разметка дней месяца (рабочие, выходные, праздники, отпуска)",
	IntFlags: periodFlags,
	StrFlags: []StringFlag{
		{Name: "user", Usage: "сотрудник: его график и отпуска"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			year, month, err := period(cmd, a)
			if err != nil {
				return err
			}
			user, _ := cmd.Flags().GetString("user")
			return runCalendar(cmd, a, year, month, user)
		})
	},
}.Build()

func runCalendar(cmd *cobra.Command, a *app.App, year int, month time.Month, userRef string) error {
	ctx := cmd.Context()
	userID := ""
	if userRef != "" {
		u, err := a.Users.Find(ctx, userRef)
		if err != nil {
			return err
		}
		userID = u.ID
	}

	days, err := a.Reports.CalendarMonth(ctx, userID, year, month)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w, Header(fmt.Sprintf("%s %d", calendar.MonthName(month), year)))
	working := 0
	for _, d := range days {
		label := d.Label
		switch {
		case d.IsHoliday || d.HasLeave:
			label = Primary(label)
		case !d.IsWorkingDay:
			label = Silent(label)
		}
		if d.Scheduled() {
			working++
		}
		_, _ = fmt.Fprintf(w, "%s  %s\n", d.Date.String(), label)
	}
	_, _ = fmt.Fprintf(w, "Рабочих дней: %d\n", working)
	return nil
}
