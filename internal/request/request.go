package request

import "time"

// Kind names one of the three request lists and its REST path segment.
type Kind string

const (
	KindBorrowing Kind = "borrowing"
	KindBooking   Kind = "booking"
	KindAcquiring Kind = "acquiring"
)

var Kinds = []Kind{KindBorrowing, KindBooking, KindAcquiring}

func (k Kind) Valid() bool {
	switch k {
	case KindBorrowing, KindBooking, KindAcquiring:
		return true
	}
	return false
}

func (k Kind) Path() string {
	return "/api/" + string(k)
}

// IDsField is the JSON key carrying ids in transition bodies, e.g. "borrowing_ids".
func (k Kind) IDsField() string {
	return string(k) + "_ids"
}

func (k Kind) IDField() string {
	return string(k) + "_id"
}

const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
	StatusCompleted = "Completed"
	StatusReturned  = "Returned"
)

type Borrowing struct {
	ID              int64      `json:"id"`
	RequesterID     int64      `json:"requester_id"`
	RequesterName   string     `json:"requester_name"`
	EquipmentID     int64      `json:"equipment_id"`
	EquipmentName   string     `json:"equipment_name"`
	Purpose         string     `json:"purpose"`
	Status          string     `json:"status"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	ReturnRequested bool       `json:"return_requested"`
	ReceiverName    string     `json:"receiver_name,omitempty"`
	ReturnedAt      *time.Time `json:"returned_at,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

func (b Borrowing) GetID() int64 { return b.ID }

type Booking struct {
	ID            int64      `json:"id"`
	RequesterID   int64      `json:"requester_id"`
	RequesterName string     `json:"requester_name"`
	FacilityID    int64      `json:"facility_id"`
	FacilityName  string     `json:"facility_name"`
	Purpose       string     `json:"purpose"`
	Status        string     `json:"status"`
	BookingDate   string     `json:"booking_date"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

func (b Booking) GetID() int64 { return b.ID }

type Acquiring struct {
	ID            int64      `json:"id"`
	RequesterID   int64      `json:"requester_id"`
	RequesterName string     `json:"requester_name"`
	SupplyID      int64      `json:"supply_id"`
	SupplyName    string     `json:"supply_name"`
	Quantity      int        `json:"quantity"`
	Purpose       string     `json:"purpose"`
	Status        string     `json:"status"`
	RequestDate   string     `json:"request_date"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

func (a Acquiring) GetID() int64 { return a.ID }
