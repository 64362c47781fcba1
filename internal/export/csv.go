package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// CSVFilename is "<resource>_export_<YYYY-MM-DD>.csv".
func CSVFilename(resource string, day time.Time) string {
	return fmt.Sprintf("%s_export_%s.csv", resource, day.Format("2006-01-02"))
}

// WriteCSV writes the header row and one line per row with every field
// double-quoted, so spreadsheet tools never reinterpret free text.
func WriteCSV[T any](w io.Writer, cols []Column[T], rows []T) error {
	bw := bufio.NewWriter(w)
	if err := writeQuoted(bw, headers(cols)); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeQuoted(bw, values(cols, row)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeQuoted(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}
