package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"attendance-reconciler/internal/app"
	"attendance-reconciler/internal/recon"
	"attendance-reconciler/internal/service"
	"attendance-reconciler/pkg/calendar"

	"github.com/spf13/cobra"
)

var workdaysShowCmd = LeafCommand{
	Use:      "show",
	Short:    "Действующий график на месяц",
	IntFlags: periodFlags,
	StrFlags: []StringFlag{
		{Name: "user", Usage: "сотрудник; без флага - общий график"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			year, month, err := period(cmd, a)
			if err != nil {
				return err
			}
			user, _ := cmd.Flags().GetString("user")
			return runWorkdaysShow(cmd, a, year, month, user)
		})
	},
}.Build()

var workdaysSetCmd = LeafCommand{
	Use:      "set",
	Short:    "Сохранить график на месяц",
	IntFlags: periodFlags,
	StrFlags: []StringFlag{
		{Name: "weekdays", Usage: "рабочие дни недели, 0 - воскресенье: 0,1,2,3,4,6; пусто - только отметки"},
		{Name: "days", Usage: "отметки чисел месяца: +9 рабочее, -14 выходное (через запятую)"},
		{Name: "user", Usage: "сотрудник; без флага - общий график"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			year, month, err := period(cmd, a)
			if err != nil {
				return err
			}
			weekdays, _ := cmd.Flags().GetString("weekdays")
			days, _ := cmd.Flags().GetString("days")
			hours, _ := cmd.Flags().GetFloat64("hours")
			user, _ := cmd.Flags().GetString("user")
			return runWorkdaysSet(cmd, a, year, month, weekdays, days, hours, user)
		})
	},
}.Build()

var workdaysApplyCmd = LeafCommand{
	Use:      "apply-global [сотрудник...]",
	Short:    "Сбросить сотрудников на общий график месяца",
	IntFlags: periodFlags,
	BoolFlags: []BoolFlag{
		{Name: "all", Usage: "все сотрудники"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			year, month, err := period(cmd, a)
			if err != nil {
				return err
			}
			all, _ := cmd.Flags().GetBool("all")
			return runApplyGlobal(cmd, a, year, month, all, args)
		})
	},
}.Build()

var workdaysCmd = GroupCommand{
	Use:         "workdays",
	Short:       "Графики рабочих дней",
	Subcommands: []*cobra.Command{workdaysShowCmd, workdaysSetCmd, workdaysApplyCmd},
}.Build()

func init() {
	workdaysSetCmd.Flags().Float64("hours", 8, "часов в рабочий день")
}

func runWorkdaysShow(cmd *cobra.Command, a *app.App, year int, month time.Month, userRef string) error {
	ctx := cmd.Context()
	userID := ""
	if userRef != "" {
		u, err := a.Users.Find(ctx, userRef)
		if err != nil {
			return err
		}
		userID = u.ID
	}

	cfg, err := a.WorkingDays.Resolve(ctx, year, month, userID)
	if err != nil {
		return err
	}
	printConfig(cmd, cfg)
	return nil
}

func printConfig(cmd *cobra.Command, cfg *recon.WorkingDaysConfig) {
	w := cmd.OutOrStdout()

	source := "персональный"
	switch {
	case cfg.IsDefault:
		source = "по умолчанию"
	case cfg.IsGlobal:
		source = "общий"
	}
	_, _ = fmt.Fprintf(w, "%s  %s\n", Header(fmt.Sprintf("%s %d", calendar.MonthName(cfg.Month), cfg.Year)), Silent(source))

	names := make([]string, 0, len(cfg.DefaultWorkingDaysOfWeek))
	for _, d := range cfg.DefaultWorkingDaysOfWeek {
		names = append(names, calendar.WeekdayShort(d))
	}
	if len(names) == 0 {
		names = append(names, "нет")
	}
	_, _ = fmt.Fprintf(w, "Дни недели: %s\n", Primary(strings.Join(names, " ")))
	_, _ = fmt.Fprintf(w, "Часов в день: %v\n", cfg.Hours())

	if len(cfg.WorkingDays) > 0 {
		marks := make([]string, 0, len(cfg.WorkingDays))
		for _, o := range cfg.WorkingDays {
			sign := "-"
			if o.IsWorkingDay {
				sign = "+"
			}
			marks = append(marks, sign+strconv.Itoa(o.Day))
		}
		_, _ = fmt.Fprintf(w, "Отметки: %s\n", strings.Join(marks, " "))
	}
}

func runWorkdaysSet(cmd *cobra.Command, a *app.App, year int, month time.Month, weekdays, days string, hours float64, userRef string) error {
	ctx := cmd.Context()
	req := service.SaveWorkingDaysRequest{
		Year:       year,
		Month:      int(month),
		DailyHours: hours,
	}

	for _, part := range splitList(weekdays) {
		d, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("день недели %q: %w", part, err)
		}
		req.DefaultWorkingDaysOfWeek = append(req.DefaultWorkingDaysOfWeek, d)
	}
	for _, part := range splitList(days) {
		day, err := strconv.Atoi(strings.TrimLeft(part, "+-"))
		if err != nil || (part[0] != '+' && part[0] != '-') {
			return fmt.Errorf("отметка %q: ожидается +N или -N", part)
		}
		req.WorkingDays = append(req.WorkingDays, recon.DayOverride{Day: day, IsWorkingDay: part[0] == '+'})
	}

	if userRef != "" {
		u, err := a.Users.Find(ctx, userRef)
		if err != nil {
			return err
		}
		req.UserID = u.ID
	}

	cfg, err := a.WorkingDays.Save(ctx, req)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), Primary("График сохранен"))
	printConfig(cmd, cfg)
	return nil
}

func runApplyGlobal(cmd *cobra.Command, a *app.App, year int, month time.Month, all bool, refs []string) error {
	ctx := cmd.Context()

	var result service.BulkResult
	switch {
	case all:
		var err error
		if result, err = a.WorkingDays.ApplyGlobalToAllUsers(ctx, year, month); err != nil {
			return err
		}
	case len(refs) > 0:
		ids := make([]string, 0, len(refs))
		for _, ref := range refs {
			u, err := a.Users.Find(ctx, ref)
			if err != nil {
				return fmt.Errorf("%s: %w", ref, err)
			}
			ids = append(ids, u.ID)
		}
		result = a.WorkingDays.ApplyGlobal(ctx, ids, year, month)
	default:
		return fmt.Errorf("укажите сотрудников или --all")
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "%s %d\n", Primary("Успешно:"), len(result.Succeeded))
	if len(result.Failed) == 0 {
		return nil
	}

	ids := make([]string, 0, len(result.Failed))
	for id := range result.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	_, _ = fmt.Fprintf(w, "%s %d\n", Error("Ошибки:"), len(ids))
	for _, id := range ids {
		_, _ = fmt.Fprintf(w, "  %s  %s\n", id, result.Failed[id])
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
