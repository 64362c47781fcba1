package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/campus-resources/internal/core/events"
	"github.com/frahmantamala/campus-resources/internal/export"
	"github.com/frahmantamala/campus-resources/internal/resource"
)

var (
	exportFormat string
	exportDir    string
)

// exportFacilities writes every facility to dir. Nothing is written unless
// every list page loaded.
func exportFacilities(ctx context.Context, app *App, format, dir string, today time.Time) (string, int, error) {
	rows, err := app.Facilities.FetchAll(ctx, resource.ListParams{PageSize: 100})
	if err != nil {
		return "", 0, fmt.Errorf("facilities export aborted: %w", err)
	}

	name := export.CSVFilename("facilities", today)
	if format == "xlsx" {
		name = export.XLSXFilename("facilities", today)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if format == "xlsx" {
		err = export.WriteXLSX(f, "Facilities", export.FacilityColumns(), rows)
	} else {
		err = export.WriteCSV(f, export.FacilityColumns(), rows)
	}
	if err != nil {
		return "", 0, err
	}
	return path, len(rows), nil
}

var facilitiesCmd = &cobra.Command{
	Use:   "facilities",
	Short: "Export and import facilities",
}

var facilitiesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every facility to a CSV or XLSX file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(exportFormat)
		if format != "csv" && format != "xlsx" {
			return fmt.Errorf("unsupported format %q, expected csv or xlsx", exportFormat)
		}

		return withApp(cmd, func(app *App) error {
			path, n, err := exportFacilities(cmd.Context(), app, format, exportDir, time.Now())
			if err != nil {
				return err
			}
			app.Logger.Info("facilities exported", "path", path, "rows", n)
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d facilities to %s\n", n, path)
			return nil
		})
	},
}

var facilitiesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Preview a CSV or XLSX file and create its valid rows in one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		var preview export.Preview[resource.Facility]
		if strings.EqualFold(filepath.Ext(args[0]), ".xlsx") {
			preview, err = export.PreviewXLSX(f, export.FacilityColumns())
		} else {
			preview, err = export.PreviewCSV(f, export.FacilityColumns())
		}
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%d valid row(s), %d rejected\n", len(preview.Rows), len(preview.Errors))
		for _, rowErr := range preview.Errors {
			fmt.Fprintf(w, "  %s\n", rowErr.Error())
		}
		if len(preview.Rows) == 0 {
			return nil
		}

		confirmer := promptConfirmer{in: cmd.InOrStdin(), out: w, yes: assumeYes}
		if !confirmer.Confirm(cmd.Context(), fmt.Sprintf("Create %d facilities?", len(preview.Rows))) {
			fmt.Fprintln(w, "import cancelled")
			return nil
		}

		return withApp(cmd, func(app *App) error {
			ctx := cmd.Context()
			created, err := app.Facilities.BulkCreate(ctx, preview.Payloads())
			if err != nil {
				return err
			}
			app.Bus.Publish(ctx, events.NewResourceChangedEvent(app.Facilities.Name(), "import"))
			fmt.Fprintf(w, "created %d facilities\n", created)
			return nil
		})
	},
}

func init() {
	facilitiesExportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or xlsx")
	facilitiesExportCmd.Flags().StringVar(&exportDir, "out", ".", "directory to write the export to")

	facilitiesCmd.AddCommand(facilitiesExportCmd, facilitiesImportCmd)
}
