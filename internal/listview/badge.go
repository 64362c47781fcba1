package listview

import "strings"

// Badge colors for status cells.
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorRed    = "red"
	ColorBlue   = "blue"
	ColorGray   = "gray"
)

// StatusColor maps a record status onto a badge color.
func StatusColor(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved", "available", "working", "in stock", "confirmed", "done", "completed":
		return ColorGreen
	case "pending", "pending_confirmation", "low stock", "in use", "occupied":
		return ColorYellow
	case "rejected", "for repair", "out of stock", "disposed", "dismissed":
		return ColorRed
	case "returned", "under maintenance":
		return ColorBlue
	default:
		return ColorGray
	}
}
