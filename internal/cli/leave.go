package cli

import (
	"fmt"

	"attendance-reconciler/internal/app"
	"attendance-reconciler/internal/recon"
	"attendance-reconciler/internal/repository"

	"github.com/spf13/cobra"
)

// cliReviewer - ReviewerID заявок, рассмотренных из командной строки
const cliReviewer = "cli"

var leaveListCmd = LeafCommand{
	Use:      "list",
	Short:    "Заявки на отпуск",
	IntFlags: periodFlags,
	StrFlags: []StringFlag{
		{Name: "user", Usage: "сотрудник"},
		{Name: "status", Usage: "pending, approved, rejected или cancelled"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			filter := repository.LeaveFilter{}
			filter.Year, _ = cmd.Flags().GetInt("year")
			filter.Month, _ = cmd.Flags().GetInt("month")
			if status, _ := cmd.Flags().GetString("status"); status != "" {
				filter.Statuses = []recon.LeaveStatus{recon.LeaveStatus(status)}
			}
			user, _ := cmd.Flags().GetString("user")
			return runLeaveList(cmd, a, filter, user)
		})
	},
}.Build()

var leaveApproveCmd = LeafCommand{
	Use:   "approve <id>",
	Short: "Одобрить заявку",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			return runLeaveReview(cmd, a, args[0], true)
		})
	},
}.Build()

var leaveRejectCmd = LeafCommand{
	Use:   "reject <id>",
	Short: "Отклонить заявку",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			return runLeaveReview(cmd, a, args[0], false)
		})
	},
}.Build()

var leaveCmd = GroupCommand{
	Use:         "leave",
	Short:       "Заявки на отпуск",
	Subcommands: []*cobra.Command{leaveListCmd, leaveApproveCmd, leaveRejectCmd},
}.Build()

func runLeaveList(cmd *cobra.Command, a *app.App, filter repository.LeaveFilter, userRef string) error {
	ctx := cmd.Context()
	if userRef != "" {
		u, err := a.Users.Find(ctx, userRef)
		if err != nil {
			return err
		}
		filter.UserID = u.ID
	}

	leaves, err := a.Leaves.List(ctx, filter)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(leaves) == 0 {
		_, _ = fmt.Fprintln(w, Silent("Заявок нет."))
		return nil
	}

	refs, err := a.Users.Refs(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(refs))
	for _, r := range refs {
		names[r.ID] = r.Name
	}

	for _, l := range leaves {
		start, end := l.Bounds()
		span := start.String()
		if !end.Equal(start) {
			span += ".." + end.String()
		}
		if l.Category() == recon.LeaveHourly {
			span += fmt.Sprintf(" %vч", l.HoursCount())
		}
		_, _ = fmt.Fprintf(w, "%s  %-10s %-20s %-12s %s\n",
			Silent(l.ID), l.Status, truncate(names[l.UserID], 20), l.TypeName(), span)
	}
	return nil
}

func runLeaveReview(cmd *cobra.Command, a *app.App, id string, approve bool) error {
	var (
		l   *recon.Leave
		err error
	)
	if approve {
		l, err = a.Leaves.Approve(cmd.Context(), id, cliReviewer)
	} else {
		l, err = a.Leaves.Reject(cmd.Context(), id, cliReviewer)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", Primary(string(l.Status)+":"), l.ID)
	return nil
}
