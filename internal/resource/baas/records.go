package baas

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/campus-resources/internal/core/datamodel/inventory"
	"github.com/frahmantamala/campus-resources/internal/resource"
	"gorm.io/gorm"
)

func NewEquipmentTable(db *gorm.DB, tokens TokenSource, logger *slog.Logger) (*Table[resource.Equipment, inventory.Equipment], error) {
	return NewTable(db, tokens, EquipmentFromRow, logger)
}

func NewFacilityTable(db *gorm.DB, tokens TokenSource, logger *slog.Logger) (*Table[resource.Facility, inventory.Facility], error) {
	return NewTable(db, tokens, FacilityFromRow, logger)
}

func NewSupplyTable(db *gorm.DB, tokens TokenSource, logger *slog.Logger) (*Table[resource.Supply, inventory.Supply], error) {
	return NewTable(db, tokens, SupplyFromRow, logger)
}

func NewMaintenanceTable(db *gorm.DB, tokens TokenSource, logger *slog.Logger) (*Table[resource.MaintenanceChecklist, inventory.MaintenanceChecklist], error) {
	return NewTable(db, tokens, MaintenanceFromRow, logger)
}

func EquipmentFromRow(row inventory.Equipment) resource.Equipment {
	return resource.Equipment{
		ID:         row.ID,
		Name:       row.Name,
		Category:   row.Category,
		Status:     row.Status,
		PropertyNo: row.PropertyNo,
		FacilityID: row.FacilityID,
		Remarks:    row.Remarks,
		Image:      row.Image,
		CreatedAt:  timePtr(row.CreatedAt),
		UpdatedAt:  timePtr(row.UpdatedAt),
	}
}

func FacilityFromRow(row inventory.Facility) resource.Facility {
	return resource.Facility{
		ID:           row.ID,
		Name:         row.Name,
		FacilityType: row.FacilityType,
		Building:     row.Building,
		FloorLevel:   row.FloorLevel,
		Capacity:     row.Capacity,
		Status:       row.Status,
		Remarks:      row.Remarks,
		CreatedAt:    timePtr(row.CreatedAt),
		UpdatedAt:    timePtr(row.UpdatedAt),
	}
}

func SupplyFromRow(row inventory.Supply) resource.Supply {
	return resource.Supply{
		ID:         row.ID,
		Name:       row.Name,
		Category:   row.Category,
		Quantity:   row.Quantity,
		StockUnit:  row.StockUnit,
		Status:     row.Status,
		FacilityID: row.FacilityID,
		Remarks:    row.Remarks,
		Image:      row.Image,
		CreatedAt:  timePtr(row.CreatedAt),
		UpdatedAt:  timePtr(row.UpdatedAt),
	}
}

func MaintenanceFromRow(row inventory.MaintenanceChecklist) resource.MaintenanceChecklist {
	return resource.MaintenanceChecklist{
		ID:            row.ID,
		Title:         row.Title,
		ResourceType:  row.ResourceType,
		ResourceID:    row.ResourceID,
		ScheduledDate: row.ScheduledDate,
		Status:        row.Status,
		Remarks:       row.Remarks,
		CreatedAt:     timePtr(row.CreatedAt),
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
