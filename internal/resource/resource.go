package resource

import (
	"strconv"
	"time"
)

// Identifiable is anything a table row or bulk action can address.
type Identifiable interface {
	GetID() int64
}

// Payload carries editable fields keyed by their JSON name.
type Payload map[string]any

const (
	EquipmentStatusWorking   = "Working"
	EquipmentStatusInUse     = "In Use"
	EquipmentStatusForRepair = "For Repair"
	EquipmentStatusDisposed  = "Disposed"

	FacilityStatusAvailable   = "Available"
	FacilityStatusOccupied    = "Occupied"
	FacilityStatusMaintenance = "Under Maintenance"

	SupplyStatusInStock    = "In Stock"
	SupplyStatusLowStock   = "Low Stock"
	SupplyStatusOutOfStock = "Out of Stock"

	ChecklistStatusPending = "Pending"
	ChecklistStatusDone    = "Done"
)

type Equipment struct {
	ID         int64      `json:"id" form:"readonly"`
	Name       string     `json:"name" validate:"required"`
	Category   string     `json:"category" validate:"required"`
	Status     string     `json:"status" validate:"required"`
	PropertyNo string     `json:"property_no"`
	FacilityID *int64     `json:"facility_id"`
	Remarks    string     `json:"remarks"`
	Image      string     `json:"image"`
	CreatedAt  *time.Time `json:"created_at,omitempty" form:"readonly"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty" form:"readonly"`
}

func (e Equipment) GetID() int64 { return e.ID }

type Facility struct {
	ID           int64      `json:"id" form:"readonly"`
	Name         string     `json:"name" validate:"required"`
	FacilityType string     `json:"facility_type" validate:"required"`
	Building     string     `json:"building"`
	FloorLevel   string     `json:"floor_level"`
	Capacity     int        `json:"capacity" validate:"min=0"`
	Status       string     `json:"status" validate:"required"`
	Remarks      string     `json:"remarks"`
	CreatedAt    *time.Time `json:"created_at,omitempty" form:"readonly"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty" form:"readonly"`
}

func (f Facility) GetID() int64 { return f.ID }

type Supply struct {
	ID         int64      `json:"id" form:"readonly"`
	Name       string     `json:"name" validate:"required"`
	Category   string     `json:"category" validate:"required"`
	Quantity   int        `json:"quantity" validate:"min=0"`
	StockUnit  string     `json:"stock_unit"`
	Status     string     `json:"status" validate:"required"`
	FacilityID *int64     `json:"facility_id"`
	Remarks    string     `json:"remarks"`
	Image      string     `json:"image"`
	CreatedAt  *time.Time `json:"created_at,omitempty" form:"readonly"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty" form:"readonly"`
}

func (s Supply) GetID() int64 { return s.ID }

// MaintenanceChecklist is one scheduled inspection of an equipment or facility.
type MaintenanceChecklist struct {
	ID            int64      `json:"id" form:"readonly"`
	Title         string     `json:"title" validate:"required"`
	ResourceType  string     `json:"resource_type" validate:"required,oneof=equipment facility"`
	ResourceID    int64      `json:"resource_id" validate:"required"`
	ScheduledDate string     `json:"scheduled_date" validate:"required"`
	Status        string     `json:"status" validate:"required"`
	Remarks       string     `json:"remarks"`
	CreatedAt     *time.Time `json:"created_at,omitempty" form:"readonly"`
}

func (m MaintenanceChecklist) GetID() int64 { return m.ID }

// IDs collects the identities of rows in order.
func IDs[T Identifiable](rows []T) []int64 {
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.GetID()
	}
	return ids
}

// FormatID renders an id for URL paths.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
