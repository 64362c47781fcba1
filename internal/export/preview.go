package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/form"
	"github.com/frahmantamala/campus-resources/internal/resource"
)

// RowError is a rejected import line. Line counts the header as line 1.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Preview holds parsed rows before they are sent. Only Rows become
// payloads; Errors are shown to the operator and skipped.
type Preview[T any] struct {
	Rows   []T
	Errors []RowError
}

func (p Preview[T]) Payloads() []resource.Payload {
	out := make([]resource.Payload, len(p.Rows))
	for i, row := range p.Rows {
		out[i] = form.PayloadOf(row)
	}
	return out
}

func (p Preview[T]) Valid() bool {
	return len(p.Rows) > 0
}

// PreviewCSV parses a CSV whose header cells name columns either by header
// label or JSON field name.
func PreviewCSV[T any](r io.Reader, cols []Column[T]) (Preview[T], error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Preview[T]{}, internal.NewValidationError(fmt.Sprintf("unreadable CSV: %v", err), internal.ErrCodeInvalidValue)
	}
	return preview(records, cols)
}

// PreviewXLSX parses the first sheet of a workbook the same way.
func PreviewXLSX[T any](r io.Reader, cols []Column[T]) (Preview[T], error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Preview[T]{}, internal.NewValidationError(fmt.Sprintf("unreadable workbook: %v", err), internal.ErrCodeInvalidValue)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Preview[T]{}, internal.NewValidationError("workbook has no sheets", internal.ErrCodeInvalidValue)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Preview[T]{}, internal.NewValidationError(fmt.Sprintf("unreadable sheet: %v", err), internal.ErrCodeInvalidValue)
	}
	return preview(rows, cols)
}

func preview[T any](records [][]string, cols []Column[T]) (Preview[T], error) {
	if len(records) == 0 {
		return Preview[T]{}, internal.NewValidationError("file is empty", internal.ErrCodeInvalidValue)
	}

	fields, err := mapHeader(records[0], cols)
	if err != nil {
		return Preview[T]{}, err
	}

	validator := form.NewValidator()
	var p Preview[T]
	for i, record := range records[1:] {
		line := i + 2
		if blank(record) {
			continue
		}

		var row T
		var rowErr error
		for col, field := range fields {
			if field == "" || col >= len(record) {
				continue
			}
			if err := form.SetField(&row, field, record[col]); err != nil {
				rowErr = err
				break
			}
		}
		if rowErr == nil {
			rowErr = validator.Check(row)
		}
		if rowErr != nil {
			p.Errors = append(p.Errors, RowError{Line: line, Err: rowErr})
			continue
		}
		p.Rows = append(p.Rows, row)
	}
	return p, nil
}

// mapHeader resolves each header cell to a JSON field, "" for ignored columns.
func mapHeader[T any](header []string, cols []Column[T]) ([]string, error) {
	lookup := make(map[string]string, len(cols)*2)
	for _, c := range cols {
		if c.Field == "" {
			continue
		}
		lookup[strings.ToLower(c.Header)] = c.Field
		lookup[strings.ToLower(c.Field)] = c.Field
	}

	fields := make([]string, len(header))
	matched := 0
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := lookup[key]; ok {
			fields[i] = field
			matched++
		}
	}
	if matched == 0 {
		return nil, internal.NewValidationError("header row matches no importable column", internal.ErrCodeInvalidValue)
	}
	return fields, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
