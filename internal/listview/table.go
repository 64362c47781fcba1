package listview

import (
	"github.com/frahmantamala/campus-resources/internal/resource"
)

// Table is the view state of one list: rows, current page and selection.
// It either slices a full dataset locally or holds one server-side window.
// It is not safe for concurrent use.
type Table[T resource.Identifiable] struct {
	items     []T
	total     int
	remote    bool
	page      int
	perPage   int
	scope     Scope
	selection *Selection
}

func NewTable[T resource.Identifiable](perPage int, scope Scope) *Table[T] {
	if perPage < 1 {
		perPage = resource.DefaultPageSize
	}
	return &Table[T]{
		page:      1,
		perPage:   perPage,
		scope:     scope,
		selection: NewSelection(),
	}
}

// SetItems replaces the full dataset after a refresh, sort or filter. The
// selection survives, minus ids that no longer exist.
func (t *Table[T]) SetItems(items []T) {
	t.items = items
	t.total = len(items)
	t.remote = false
	t.prune()
}

// SetWindow stores one server page of a list holding total rows.
func (t *Table[T]) SetWindow(items []T, total int) {
	t.items = items
	t.total = total
	t.remote = true
	t.prune()
}

// Reset swaps in a different dataset, as on a request-type switch.
func (t *Table[T]) Reset(items []T) {
	t.selection.Clear()
	t.page = 1
	t.SetItems(items)
}

// GoTo moves to page and clears the selection when the page changes.
func (t *Table[T]) GoTo(page int) {
	if page < 1 {
		page = 1
	}
	if last := t.TotalPages(); last > 0 && page > last {
		page = last
	}
	if page != t.page {
		t.selection.Clear()
	}
	t.page = page
}

func (t *Table[T]) Page() int       { return t.page }
func (t *Table[T]) PerPage() int    { return t.perPage }
func (t *Table[T]) Total() int      { return t.total }
func (t *Table[T]) TotalPages() int { return TotalPages(t.total, t.perPage) }

// Visible returns the rows rendered on the current page.
func (t *Table[T]) Visible() []T {
	if t.remote {
		return t.items
	}
	return Paginate(t.items, t.page, t.perPage)
}

func (t *Table[T]) VisibleIDs() []int64 {
	return resource.IDs(t.Visible())
}

func (t *Table[T]) Toggle(id int64) {
	t.selection.Toggle(id)
}

func (t *Table[T]) IsSelected(id int64) bool {
	return t.selection.Has(id)
}

// ToggleAll applies "select all" over the table's scope.
func (t *Table[T]) ToggleAll() {
	if t.scope == ScopeDataset {
		t.selection.ToggleAll(resource.IDs(t.items))
		return
	}
	t.selection.ToggleAll(t.VisibleIDs())
}

func (t *Table[T]) Header() HeaderState {
	return t.selection.Header(t.VisibleIDs())
}

func (t *Table[T]) Selected() []int64 {
	return t.selection.IDs()
}

// SelectedRows returns the loaded rows whose ids are selected.
func (t *Table[T]) SelectedRows() []T {
	rows := make([]T, 0, t.selection.Len())
	for _, item := range t.items {
		if t.selection.Has(item.GetID()) {
			rows = append(rows, item)
		}
	}
	return rows
}

func (t *Table[T]) ClearSelection() {
	t.selection.Clear()
}

func (t *Table[T]) prune() {
	present := make(map[int64]struct{}, len(t.items))
	for _, item := range t.items {
		present[item.GetID()] = struct{}{}
	}
	for _, id := range t.selection.IDs() {
		if _, ok := present[id]; !ok {
			t.selection.Set(id, false)
		}
	}
}
