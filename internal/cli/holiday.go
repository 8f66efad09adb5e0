package cli

import (
	"fmt"
	"os"
	"strings"

	"attendance-reconciler/internal/app"
	"attendance-reconciler/internal/service"
	"attendance-reconciler/pkg/calendar"

	"github.com/spf13/cobra"
)

var holidayListCmd = LeafCommand{
	Use:      "list",
	Short:    "Праздники за год",
	IntFlags: periodFlags[:1],
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			year, _, err := period(cmd, a)
			if err != nil {
				return err
			}
			return runHolidayList(cmd, a, year)
		})
	},
}.Build()

var holidayAddCmd = LeafCommand{
	Use:   "add <название>",
	Short: "Добавить праздник",
	Args:  cobra.MinimumNArgs(1),
	StrFlags: []StringFlag{
		{Name: "start", Usage: "дата начала, 2024-02-20"},
		{Name: "end", Usage: "дата окончания для многодневного праздника"},
		{Name: "type", Usage: "company, national, religious или custom", Default: "company"},
	},
	BoolFlags: []BoolFlag{
		{Name: "recurring", Usage: "повторять ежегодно"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			req, err := holidayRequest(cmd, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return runHolidayAdd(cmd, a, req)
		})
	},
}.Build()

var holidayImportFileCmd = LeafCommand{
	Use:   "import-file <calendar.json>",
	Short: "Загрузить производственный календарь",
	Args:  cobra.ExactArgs(1),
	StrFlags: []StringFlag{
		{Name: "name", Usage: "название для загруженных праздников"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			name, _ := cmd.Flags().GetString("name")
			return runHolidayImportFile(cmd, a, args[0], name)
		})
	},
}.Build()

var holidayImportNationalCmd = LeafCommand{
	Use:      "import-national <код>",
	Short:    "Государственные праздники страны (" + strings.Join(service.NationalCalendars(), ", ") + ")",
	Args:     cobra.ExactArgs(1),
	IntFlags: periodFlags[:1],
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			year, _, err := period(cmd, a)
			if err != nil {
				return err
			}
			result, err := a.Holidays.ImportNational(cmd.Context(), args[0], year)
			if err != nil {
				return err
			}
			printImport(cmd, result)
			return nil
		})
	},
}.Build()

var holidayCmd = GroupCommand{
	Use:         "holiday",
	Short:       "Праздники",
	Subcommands: []*cobra.Command{holidayListCmd, holidayAddCmd, holidayImportFileCmd, holidayImportNationalCmd},
}.Build()

func holidayRequest(cmd *cobra.Command, name string) (service.CreateHolidayRequest, error) {
	req := service.CreateHolidayRequest{Name: name}
	req.Type, _ = cmd.Flags().GetString("type")
	req.IsRecurring, _ = cmd.Flags().GetBool("recurring")

	start, _ := cmd.Flags().GetString("start")
	d, err := calendar.Parse(start)
	if err != nil {
		return req, fmt.Errorf("--start: %w", err)
	}
	req.Start = d

	if end, _ := cmd.Flags().GetString("end"); end != "" {
		if req.End, err = calendar.Parse(end); err != nil {
			return req, fmt.Errorf("--end: %w", err)
		}
	}
	return req, nil
}

func runHolidayList(cmd *cobra.Command, a *app.App, year int) error {
	holidays, err := a.Holidays.ForYear(cmd.Context(), year)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(holidays) == 0 {
		_, _ = fmt.Fprintln(w, Silent(fmt.Sprintf("Праздников на %d год нет.", year)))
		return nil
	}
	for _, h := range holidays {
		start, end := h.Bounds()
		span := start.String()
		if !end.Equal(start) {
			span += ".." + end.String()
		}
		line := fmt.Sprintf("%-22s %s", span, Primary(h.Name))
		if h.IsRecurring {
			line += Silent(" (ежегодно)")
		}
		_, _ = fmt.Fprintf(w, "%s  %s\n", Silent(h.ID), line)
	}
	return nil
}

func runHolidayAdd(cmd *cobra.Command, a *app.App, req service.CreateHolidayRequest) error {
	h, err := a.Holidays.Create(cmd.Context(), req)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n", Primary("Добавлен:"), h.Name, Silent(h.ID))
	return nil
}

func runHolidayImportFile(cmd *cobra.Command, a *app.App, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.Holidays.ImportFile(cmd.Context(), f, name)
	if err != nil {
		return err
	}
	printImport(cmd, result)
	return nil
}

func printImport(cmd *cobra.Command, r service.ImportResult) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d, %s %d\n",
		Primary("Добавлено:"), r.Created, Silent("уже были:"), r.Skipped)
}
