package notification

import "time"

type Notification struct {
	ID          int64      `gorm:"primaryKey"`
	Kind        string     `gorm:"column:kind;not null"`
	RequestType string     `gorm:"column:request_type;not null"`
	RequestID   int64      `gorm:"column:request_id;not null;index"`
	Message     string     `gorm:"column:message"`
	Status      string     `gorm:"column:status;not null;default:pending_confirmation;index"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   *time.Time `gorm:"column:updated_at"`
}

func (Notification) TableName() string { return "notifications" }

// RequestStatus is the slice of a borrowing, booking or acquiring row the
// confirm flow writes to.
type RequestStatus struct {
	ID              int64      `gorm:"primaryKey"`
	Status          string     `gorm:"column:status;not null"`
	ReturnRequested bool       `gorm:"column:return_requested;default:false"`
	UpdatedAt       *time.Time `gorm:"column:updated_at"`
}
