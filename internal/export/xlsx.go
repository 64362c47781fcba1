package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

func XLSXFilename(resource string, day time.Time) string {
	return fmt.Sprintf("%s_export_%s.xlsx", resource, day.Format("2006-01-02"))
}

// WriteXLSX writes one sheet with a bold header row and fixed column widths.
func WriteXLSX[T any](w io.Writer, sheet string, cols []Column[T], rows []T) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := headers(cols)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := values(cols, row)
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for i, c := range cols {
		if c.Width <= 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, c.Width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	return f.Write(w)
}
