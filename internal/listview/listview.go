package listview

import (
	"sort"

	"github.com/frahmantamala/campus-resources/internal/resource"
)

// Paginate returns items[(page-1)*perPage : page*perPage], clipped to the
// slice. Out of range pages give an empty window.
func Paginate[T any](items []T, page, perPage int) []T {
	if page < 1 || perPage < 1 {
		return []T{}
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages is ceil(total / perPage).
func TotalPages(total, perPage int) int {
	return resource.TotalPages(total, perPage)
}

type HeaderState int

const (
	HeaderUnchecked HeaderState = iota
	HeaderIndeterminate
	HeaderChecked
)

func (h HeaderState) String() string {
	switch h {
	case HeaderChecked:
		return "checked"
	case HeaderIndeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// Scope decides what "select all" covers for one table.
type Scope int

const (
	ScopePage Scope = iota
	ScopeDataset
)

// Selection is the set of selected row ids of one table.
type Selection struct {
	ids map[int64]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[int64]struct{})}
}

func (s *Selection) Toggle(id int64) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

func (s *Selection) Set(id int64, selected bool) {
	if selected {
		s.ids[id] = struct{}{}
	} else {
		delete(s.ids, id)
	}
}

func (s *Selection) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selection sorted ascending.
func (s *Selection) IDs() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Selection) Clear() {
	s.ids = make(map[int64]struct{})
}

// ToggleAll selects every id in scope, or deselects them all when every one
// is already selected.
func (s *Selection) ToggleAll(scope []int64) {
	all := len(scope) > 0
	for _, id := range scope {
		if !s.Has(id) {
			all = false
			break
		}
	}
	for _, id := range scope {
		s.Set(id, !all)
	}
}

// Header computes the header checkbox against the visible ids.
func (s *Selection) Header(visible []int64) HeaderState {
	selected := 0
	for _, id := range visible {
		if s.Has(id) {
			selected++
		}
	}
	switch {
	case selected == 0:
		return HeaderUnchecked
	case selected < len(visible):
		return HeaderIndeterminate
	default:
		return HeaderChecked
	}
}
