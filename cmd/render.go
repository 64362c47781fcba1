package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/frahmantamala/campus-resources/internal/listview"
	"github.com/frahmantamala/campus-resources/internal/resource"
)

// renderTable prints the visible rows of t with the given JSON columns.
func renderTable[T resource.Identifiable](w io.Writer, t *listview.Table[T], columns []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "SEL\t%s\n", strings.ToUpper(strings.Join(columns, "\t")))

	for _, row := range t.Visible() {
		cells, err := cellsOf(row, columns)
		if err != nil {
			return err
		}
		mark := " "
		if t.IsSelected(row.GetID()) {
			mark = "x"
		}
		fmt.Fprintf(tw, "[%s]\t%s\n", mark, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "page %d of %d, %d total, header %s\n", t.Page(), max(t.TotalPages(), 1), t.Total(), t.Header())
	return nil
}

func cellsOf(row any, columns []string) ([]string, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	cells := make([]string, len(columns))
	for i, col := range columns {
		v, ok := fields[col]
		switch {
		case !ok || v == nil:
			cells[i] = "-"
		case col == "status":
			status := fmt.Sprint(v)
			cells[i] = fmt.Sprintf("%s (%s)", status, listview.StatusColor(status))
		case isWholeNumber(v):
			cells[i] = fmt.Sprintf("%d", int64(v.(float64)))
		default:
			cells[i] = fmt.Sprint(v)
		}
	}
	return cells, nil
}

func isWholeNumber(v any) bool {
	f, ok := v.(float64)
	return ok && f == float64(int64(f))
}

// promptConfirmer asks on the terminal unless --yes was given.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
	yes bool
}

func (p promptConfirmer) Confirm(_ context.Context, prompt string) bool {
	if p.yes {
		return true
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(p.in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
