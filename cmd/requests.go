package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/campus-resources/internal/bulk"
	"github.com/frahmantamala/campus-resources/internal/listview"
	"github.com/frahmantamala/campus-resources/internal/request"
	"github.com/frahmantamala/campus-resources/internal/resource"
)

var (
	requestsPage int
	receiverName string
)

var (
	borrowingColumns = []string{"id", "requester_name", "equipment_name", "start_date", "end_date", "status", "return_requested"}
	bookingColumns   = []string{"id", "requester_name", "facility_name", "booking_date", "start_time", "end_time", "status"}
	acquiringColumns = []string{"id", "requester_name", "supply_name", "quantity", "request_date", "status"}
)

func parseKind(arg string) (request.Kind, error) {
	kind := request.Kind(arg)
	if !kind.Valid() {
		return "", fmt.Errorf("unknown request type %q, expected borrowing, booking or acquiring", arg)
	}
	return kind, nil
}

func renderWindow[T resource.Identifiable](w io.Writer, title string, page resource.Page[T], perPage int, columns []string) error {
	table := listview.NewTable[T](perPage, listview.ScopePage)
	table.GoTo(page.Page)
	table.SetWindow(page.Data, page.Total)
	fmt.Fprintf(w, "\n%s\n", title)
	return renderTable(w, table, columns)
}

// printRequests loads the three lists behind one verify and prints the
// requested kinds, all of them when none are given.
func printRequests(ctx context.Context, app *App, w io.Writer, page int, kinds ...request.Kind) error {
	params := resource.ListParams{Page: page, PageSize: app.Config.API.PageSize}
	snap, err := app.Loader.LoadAll(ctx, params)
	if err != nil {
		return err
	}
	if len(kinds) == 0 {
		kinds = request.Kinds
	}

	fmt.Fprintf(w, "signed in as %s (%s)\n", snap.Identity.Email, snap.Identity.Role)
	for _, kind := range kinds {
		switch kind {
		case request.KindBorrowing:
			err = renderWindow(w, "BORROWING", snap.Borrowing, params.PageSize, borrowingColumns)
		case request.KindBooking:
			err = renderWindow(w, "BOOKING", snap.Booking, params.PageSize, bookingColumns)
		case request.KindAcquiring:
			err = renderWindow(w, "ACQUIRING", snap.Acquiring, params.PageSize, acquiringColumns)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// performOnRequests runs one bulk transition over ids and re-fetches kind.
func performOnRequests(cmd *cobra.Command, app *App, kind request.Kind, ids []int64, action bulk.Action) error {
	w := cmd.OutOrStdout()
	refresh := func(ctx context.Context) error {
		return printRequests(ctx, app, w, requestsPage, kind)
	}
	confirmer := promptConfirmer{in: cmd.InOrStdin(), out: w, yes: assumeYes}

	outcome, err := bulk.NewController(newIDSelection(ids), refresh, app.Logger, bulk.WithConfirmer(confirmer)).
		Perform(cmd.Context(), action)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s\n", action.Name, outcome)
	return nil
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Review borrowing, booking and acquiring requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list [kind]",
	Short: "Show the request lists",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var kinds []request.Kind
		if len(args) == 1 {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			kinds = append(kinds, kind)
		}
		return withApp(cmd, func(app *App) error {
			return printRequests(cmd.Context(), app, cmd.OutOrStdout(), requestsPage, kinds...)
		})
	},
}

var requestsApproveCmd = &cobra.Command{
	Use:   "approve <kind> <id>...",
	Short: "Approve the selected requests",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		ids, err := parseIDs(args[1:])
		if err != nil {
			return err
		}
		return withApp(cmd, func(app *App) error {
			return performOnRequests(cmd, app, kind, ids, bulk.Action{
				Name: "Approve",
				Run: func(ctx context.Context, ids []int64) error {
					return app.Transitions.Approve(ctx, kind, ids)
				},
			})
		})
	},
}

var requestsRejectCmd = &cobra.Command{
	Use:   "reject <kind> <id>...",
	Short: "Reject the selected requests",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		ids, err := parseIDs(args[1:])
		if err != nil {
			return err
		}
		return withApp(cmd, func(app *App) error {
			return performOnRequests(cmd, app, kind, ids, bulk.Action{
				Name:        "Reject",
				Destructive: true,
				Run: func(ctx context.Context, ids []int64) error {
					return app.Transitions.Reject(ctx, kind, ids)
				},
			})
		})
	},
}

var requestsMarkReturnedCmd = &cobra.Command{
	Use:   "mark-returned <id>... --receiver <name>",
	Short: "Record that the selected borrowed equipment was received back",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(app *App) error {
			return performOnRequests(cmd, app, request.KindBorrowing, ids, bulk.Action{
				Name: "Mark returned",
				Run: func(ctx context.Context, ids []int64) error {
					return app.Transitions.MarkReturned(ctx, ids, receiverName)
				},
			})
		})
	},
}

var requestsMarkDoneCmd = &cobra.Command{
	Use:   "mark-done <kind> <id>...",
	Short: "Complete the selected booking or acquiring requests",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		ids, err := parseIDs(args[1:])
		if err != nil {
			return err
		}
		return withApp(cmd, func(app *App) error {
			return performOnRequests(cmd, app, kind, ids, bulk.Action{
				Name: "Mark done",
				Run: func(ctx context.Context, ids []int64) error {
					return app.Transitions.MarkDone(ctx, kind, ids)
				},
			})
		})
	},
}

func init() {
	requestsCmd.PersistentFlags().IntVar(&requestsPage, "page", 1, "page to show")
	requestsMarkReturnedCmd.Flags().StringVar(&receiverName, "receiver", "", "name of the person who received the equipment")
	_ = requestsMarkReturnedCmd.MarkFlagRequired("receiver")

	requestsCmd.AddCommand(requestsListCmd, requestsApproveCmd, requestsRejectCmd, requestsMarkReturnedCmd, requestsMarkDoneCmd)
}
