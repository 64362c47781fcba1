package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/account"
	"github.com/frahmantamala/campus-resources/internal/bulk"
	"github.com/frahmantamala/campus-resources/internal/listview"
	"github.com/frahmantamala/campus-resources/internal/resource"
)

var accountsPage int

var accountRequestColumns = []string{"id", "email", "first_name", "last_name", "department", "requested_role", "status"}

// pendingAccountRequests loads every account request so selections can be
// resolved to full rows.
func pendingAccountRequests(ctx context.Context, app *App) *listview.Table[account.AccountRequest] {
	var rows []account.AccountRequest
	params := resource.ListParams{Page: 1, PageSize: 100}
	for {
		page := app.AccountRequests.List(ctx, params)
		rows = append(rows, page.Data...)
		if params.Page >= page.TotalPages {
			break
		}
		params.Page++
	}

	table := listview.NewTable[account.AccountRequest](app.Config.API.PageSize, listview.ScopeDataset)
	table.SetItems(rows)
	return table
}

func selectRows[T resource.Identifiable](table *listview.Table[T], ids []int64) error {
	for _, id := range ids {
		if !table.IsSelected(id) {
			table.Toggle(id)
		}
	}
	if missing := len(table.Selected()) - len(table.SelectedRows()); missing > 0 {
		return internal.NewNotFoundError(fmt.Sprintf("%d selected id(s) not found", missing), internal.ErrCodeRecordNotFound)
	}
	return nil
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Review users and pending account requests",
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show active users and account requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *App) error {
			ctx, w := cmd.Context(), cmd.OutOrStdout()
			params := resource.ListParams{Page: accountsPage, PageSize: app.Config.API.PageSize}

			users := app.Users.List(ctx, params)
			if err := renderWindow(w, "USERS", users, params.PageSize,
				[]string{"id", "email", "first_name", "last_name", "department", "approved_acc_role"}); err != nil {
				return err
			}
			pending := app.AccountRequests.List(ctx, params)
			return renderWindow(w, "ACCOUNT REQUESTS", pending, params.PageSize, accountRequestColumns)
		})
	},
}

func decideAccounts(cmd *cobra.Command, args []string, action func(app *App, table *listview.Table[account.AccountRequest]) bulk.Action) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	return withApp(cmd, func(app *App) error {
		ctx, w := cmd.Context(), cmd.OutOrStdout()
		table := pendingAccountRequests(ctx, app)
		if err := selectRows(table, ids); err != nil {
			return err
		}

		refresh := func(ctx context.Context) error {
			page := app.AccountRequests.List(ctx, resource.ListParams{Page: 1})
			return renderWindow(w, "ACCOUNT REQUESTS", page, app.Config.API.PageSize, accountRequestColumns)
		}
		confirmer := promptConfirmer{in: cmd.InOrStdin(), out: w, yes: assumeYes}
		act := action(app, table)

		outcome, err := bulk.NewController(table, refresh, app.Logger, bulk.WithConfirmer(confirmer)).Perform(ctx, act)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s\n", act.Name, outcome)
		return nil
	})
}

var accountsApproveCmd = &cobra.Command{
	Use:   "approve <id>...",
	Short: "Approve account requests with the role mapped from the requested one",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decideAccounts(cmd, args, func(app *App, table *listview.Table[account.AccountRequest]) bulk.Action {
			return bulk.Action{
				Name: "Approve",
				Run: func(ctx context.Context, _ []int64) error {
					return app.Approvals.Approve(ctx, table.SelectedRows())
				},
			}
		})
	},
}

var accountsRejectCmd = &cobra.Command{
	Use:   "reject <id>...",
	Short: "Reject account requests",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decideAccounts(cmd, args, func(app *App, _ *listview.Table[account.AccountRequest]) bulk.Action {
			return bulk.Action{
				Name:        "Reject",
				Destructive: true,
				Run:         app.Approvals.Reject,
			}
		})
	},
}

func init() {
	accountsListCmd.Flags().IntVar(&accountsPage, "page", 1, "page to show")
	accountsCmd.AddCommand(accountsListCmd, accountsApproveCmd, accountsRejectCmd)
}
