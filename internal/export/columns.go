package export

import (
	"strconv"

	"github.com/frahmantamala/campus-resources/internal/resource"
)

// Column is one exported column. Field is the JSON name an imported cell
// is written to; columns without a Field are export-only.
type Column[T any] struct {
	Header string
	Field  string
	Width  float64
	Value  func(T) string
}

func FacilityColumns() []Column[resource.Facility] {
	return []Column[resource.Facility]{
		{Header: "ID", Width: 8, Value: func(f resource.Facility) string { return resource.FormatID(f.ID) }},
		{Header: "Name", Field: "name", Width: 30, Value: func(f resource.Facility) string { return f.Name }},
		{Header: "Type", Field: "facility_type", Width: 18, Value: func(f resource.Facility) string { return f.FacilityType }},
		{Header: "Building", Field: "building", Width: 20, Value: func(f resource.Facility) string { return f.Building }},
		{Header: "Floor", Field: "floor_level", Width: 10, Value: func(f resource.Facility) string { return f.FloorLevel }},
		{Header: "Capacity", Field: "capacity", Width: 10, Value: func(f resource.Facility) string { return strconv.Itoa(f.Capacity) }},
		{Header: "Status", Field: "status", Width: 18, Value: func(f resource.Facility) string { return f.Status }},
		{Header: "Remarks", Field: "remarks", Width: 40, Value: func(f resource.Facility) string { return f.Remarks }},
	}
}

func headers[T any](cols []Column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

func values[T any](cols []Column[T], row T) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Value(row)
	}
	return out
}
