package resource

import (
	"net/url"
	"sort"
	"strconv"
)

const DefaultPageSize = 10

// Page is the list envelope {data, total, page, total_pages}.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

// EmptyPage is what a failed list call degrades to.
func EmptyPage[T any](page int) Page[T] {
	if page < 1 {
		page = 1
	}
	return Page[T]{Data: []T{}, Total: 0, Page: page, TotalPages: 0}
}

type ListParams struct {
	Page     int
	PageSize int
	Filters  map[string]string
}

// Normalize clamps page and size to usable values.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}

func (p ListParams) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Query renders the params as ?page=&page_size=&<filter>=.
func (p ListParams) Query() url.Values {
	n := p.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(n.Page))
	q.Set("page_size", strconv.Itoa(n.PageSize))

	keys := make([]string, 0, len(n.Filters))
	for k := range n.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := n.Filters[k]; v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// TotalPages is ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
