package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/account"
	"github.com/frahmantamala/campus-resources/internal/bulk"
	"github.com/frahmantamala/campus-resources/internal/core/events"
	"github.com/frahmantamala/campus-resources/internal/form"
	"github.com/frahmantamala/campus-resources/internal/listview"
	"github.com/frahmantamala/campus-resources/internal/resource"
)

var (
	listPage     int
	listPageSize int
	listFilters  map[string]string
	fieldSets    []string
)

// resourceView is one resource page of the dashboard driven from the CLI.
type resourceView interface {
	list(ctx context.Context, w io.Writer, params resource.ListParams) error
	create(ctx context.Context, w io.Writer, sets map[string]string) error
	update(ctx context.Context, w io.Writer, id int64, sets map[string]string) error
	remove(ctx context.Context, w io.Writer, ids []int64, confirmer bulk.Confirmer) error
	setStatus(ctx context.Context, w io.Writer, ids []int64, status string) error
}

type typedView[T resource.Identifiable] struct {
	app     *App
	client  *resource.Client[T]
	columns []string
}

func (v *typedView[T]) list(ctx context.Context, w io.Writer, params resource.ListParams) error {
	if params.PageSize < 1 {
		params.PageSize = v.app.Config.API.PageSize
	}
	table := listview.NewTable[T](params.PageSize, listview.ScopePage)
	table.GoTo(params.Page)
	page := v.client.List(ctx, params)
	table.SetWindow(page.Data, page.Total)
	return renderTable(w, table, v.columns)
}

// refreshOnChange re-lists page 1 whenever a form reports a saved record.
func (v *typedView[T]) refreshOnChange(w io.Writer) {
	v.app.Bus.Subscribe(events.EventTypeResourceChanged, func(ctx context.Context, e events.Event) error {
		changed, ok := e.(*events.ResourceChangedEvent)
		if !ok || changed.Resource != v.client.Name() {
			return nil
		}
		return v.list(ctx, w, resource.ListParams{Page: 1})
	})
}

func (v *typedView[T]) create(ctx context.Context, w io.Writer, sets map[string]string) error {
	var draft T
	return v.submit(ctx, w, draft, sets)
}

func (v *typedView[T]) update(ctx context.Context, w io.Writer, id int64, sets map[string]string) error {
	current, err := v.find(ctx, id)
	if err != nil {
		return err
	}
	return v.submit(ctx, w, current, sets)
}

func (v *typedView[T]) submit(ctx context.Context, w io.Writer, draft T, sets map[string]string) error {
	v.refreshOnChange(w)

	modal := form.NewModal[T](v.client.Name(), v.client, v.app.Bus, v.app.Logger)
	modal.Open(draft)
	for _, field := range sortedKeys(sets) {
		if err := modal.Set(field, sets[field]); err != nil {
			return err
		}
	}
	if missing := modal.Missing(); len(missing) > 0 {
		modal.Cancel()
		return internal.NewValidationError("missing required fields: "+strings.Join(missing, ", "), internal.ErrCodeRequiredField)
	}
	return modal.Submit(ctx)
}

// find walks the list pages for id; the backend exposes no single-record read.
func (v *typedView[T]) find(ctx context.Context, id int64) (T, error) {
	params := resource.ListParams{Page: 1, PageSize: 100}
	for {
		page, err := v.client.Fetch(ctx, params)
		if err != nil {
			var zero T
			return zero, fmt.Errorf("failed to look up %s %d: %w", v.client.Name(), id, err)
		}
		for _, row := range page.Data {
			if row.GetID() == id {
				return row, nil
			}
		}
		if len(page.Data) == 0 || params.Page >= page.TotalPages {
			var zero T
			return zero, internal.NewNotFoundError(fmt.Sprintf("%s %d not found", v.client.Name(), id), internal.ErrCodeRecordNotFound)
		}
		params.Page++
	}
}

func (v *typedView[T]) remove(ctx context.Context, w io.Writer, ids []int64, confirmer bulk.Confirmer) error {
	return v.runBulk(ctx, w, ids, bulk.Action{
		Name:        "Delete",
		Destructive: true,
		Run:         v.client.Delete,
	}, confirmer)
}

func (v *typedView[T]) setStatus(ctx context.Context, w io.Writer, ids []int64, status string) error {
	return v.runBulk(ctx, w, ids, bulk.Action{
		Name: "Set status to " + status,
		Run: func(ctx context.Context, ids []int64) error {
			return v.client.BulkUpdateStatus(ctx, ids, status)
		},
	}, nil)
}

func (v *typedView[T]) runBulk(ctx context.Context, w io.Writer, ids []int64, action bulk.Action, confirmer bulk.Confirmer) error {
	selection := newIDSelection(ids)
	refresh := func(ctx context.Context) error {
		return v.list(ctx, w, resource.ListParams{Page: 1})
	}
	opts := []bulk.Option{}
	if confirmer != nil {
		opts = append(opts, bulk.WithConfirmer(confirmer))
	}
	outcome, err := bulk.NewController(selection, refresh, v.app.Logger, opts...).Perform(ctx, action)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s\n", action.Name, outcome)
	return nil
}

// idSelection feeds ids typed on the command line to the bulk controller.
type idSelection struct {
	*listview.Selection
}

func newIDSelection(ids []int64) idSelection {
	s := listview.NewSelection()
	for _, id := range ids {
		s.Set(id, true)
	}
	return idSelection{s}
}

func (s idSelection) Selected() []int64 { return s.IDs() }
func (s idSelection) ClearSelection()   { s.Clear() }

func resourceViews(app *App) map[string]resourceView {
	return map[string]resourceView{
		"equipment": &typedView[resource.Equipment]{app: app, client: app.Equipment,
			columns: []string{"id", "name", "category", "status", "property_no", "facility_id"}},
		"facilities": &typedView[resource.Facility]{app: app, client: app.Facilities,
			columns: []string{"id", "name", "facility_type", "building", "capacity", "status"}},
		"supplies": &typedView[resource.Supply]{app: app, client: app.Supplies,
			columns: []string{"id", "name", "category", "quantity", "stock_unit", "status"}},
		"maintenance-checklists": &typedView[resource.MaintenanceChecklist]{app: app, client: app.Maintenance,
			columns: []string{"id", "title", "resource_type", "resource_id", "scheduled_date", "status"}},
		"users": &typedView[account.User]{app: app, client: app.Users,
			columns: []string{"id", "email", "first_name", "last_name", "department", "approved_acc_role"}},
	}
}

func viewFor(app *App, name string) (resourceView, error) {
	view, ok := resourceViews(app)[name]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", name)
	}
	return view, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parseSets(sets []string) (map[string]string, error) {
	out := make(map[string]string, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("expected field=value, got %q", s)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List and edit equipment, facilities, supplies, maintenance checklists and users",
}

var resourcesListCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "Show one page of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *App) error {
			view, err := viewFor(app, args[0])
			if err != nil {
				return err
			}
			params := resource.ListParams{Page: listPage, PageSize: listPageSize, Filters: listFilters}
			return view.list(cmd.Context(), cmd.OutOrStdout(), params)
		})
	},
}

var resourcesCreateCmd = &cobra.Command{
	Use:   "create <resource> --set field=value...",
	Short: "Create a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, err := parseSets(fieldSets)
		if err != nil {
			return err
		}
		return withApp(cmd, func(app *App) error {
			view, err := viewFor(app, args[0])
			if err != nil {
				return err
			}
			return view.create(cmd.Context(), cmd.OutOrStdout(), sets)
		})
	},
}

var resourcesUpdateCmd = &cobra.Command{
	Use:   "update <resource> <id> --set field=value...",
	Short: "Edit a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, err := parseSets(fieldSets)
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}
		return withApp(cmd, func(app *App) error {
			view, err := viewFor(app, args[0])
			if err != nil {
				return err
			}
			return view.update(cmd.Context(), cmd.OutOrStdout(), id, sets)
		})
	},
}

var resourcesDeleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>...",
	Short: "Delete the selected records in one call",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[1:])
		if err != nil {
			return err
		}
		return withApp(cmd, func(app *App) error {
			view, err := viewFor(app, args[0])
			if err != nil {
				return err
			}
			confirmer := promptConfirmer{in: cmd.InOrStdin(), out: cmd.OutOrStdout(), yes: assumeYes}
			return view.remove(cmd.Context(), cmd.OutOrStdout(), ids, confirmer)
		})
	},
}

var resourcesStatusCmd = &cobra.Command{
	Use:   "status <resource> <status> <id>...",
	Short: "Set the status of the selected records in one call",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[2:])
		if err != nil {
			return err
		}
		return withApp(cmd, func(app *App) error {
			view, err := viewFor(app, args[0])
			if err != nil {
				return err
			}
			return view.setStatus(cmd.Context(), cmd.OutOrStdout(), ids, args[1])
		})
	},
}

func init() {
	resourcesListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	resourcesListCmd.Flags().IntVar(&listPageSize, "page-size", 0, "rows per page, config default when 0")
	resourcesListCmd.Flags().StringToStringVar(&listFilters, "filter", nil, "equality filter field=value")

	for _, c := range []*cobra.Command{resourcesCreateCmd, resourcesUpdateCmd} {
		c.Flags().StringArrayVar(&fieldSets, "set", nil, "field=value, repeatable")
	}

	resourcesCmd.AddCommand(resourcesListCmd, resourcesCreateCmd, resourcesUpdateCmd, resourcesDeleteCmd, resourcesStatusCmd)
}
