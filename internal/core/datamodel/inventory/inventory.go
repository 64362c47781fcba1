package inventory

import "time"

// Rows mirror the hosted tables queried directly by the BaaS path. JSON
// names match column names so editable payloads decode straight into rows.

type Equipment struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	Category   string    `gorm:"column:category;not null" json:"category"`
	Status     string    `gorm:"column:status;not null;default:Working" json:"status"`
	PropertyNo string    `gorm:"column:property_no" json:"property_no"`
	FacilityID *int64    `gorm:"column:facility_id" json:"facility_id"`
	Remarks    string    `gorm:"column:remarks" json:"remarks"`
	Image      string    `gorm:"column:image" json:"image"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Equipment) TableName() string { return "equipment" }

type Facility struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	FacilityType string    `gorm:"column:facility_type;not null" json:"facility_type"`
	Building     string    `gorm:"column:building" json:"building"`
	FloorLevel   string    `gorm:"column:floor_level" json:"floor_level"`
	Capacity     int       `gorm:"column:capacity;default:0" json:"capacity"`
	Status       string    `gorm:"column:status;not null;default:Available" json:"status"`
	Remarks      string    `gorm:"column:remarks" json:"remarks"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Facility) TableName() string { return "facilities" }

type Supply struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	Category   string    `gorm:"column:category;not null" json:"category"`
	Quantity   int       `gorm:"column:quantity;default:0" json:"quantity"`
	StockUnit  string    `gorm:"column:stock_unit" json:"stock_unit"`
	Status     string    `gorm:"column:status;not null" json:"status"`
	FacilityID *int64    `gorm:"column:facility_id" json:"facility_id"`
	Remarks    string    `gorm:"column:remarks" json:"remarks"`
	Image      string    `gorm:"column:image" json:"image"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Supply) TableName() string { return "supplies" }

type MaintenanceChecklist struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	ResourceType  string    `gorm:"column:resource_type;not null" json:"resource_type"`
	ResourceID    int64     `gorm:"column:resource_id;not null" json:"resource_id"`
	ScheduledDate string    `gorm:"column:scheduled_date;not null" json:"scheduled_date"`
	Status        string    `gorm:"column:status;not null;default:Pending" json:"status"`
	Remarks       string    `gorm:"column:remarks" json:"remarks"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MaintenanceChecklist) TableName() string { return "maintenance_checklists" }
