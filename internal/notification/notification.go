package notification

import (
	"context"
	"time"

	"github.com/frahmantamala/campus-resources/internal/request"
)

type Status string

const (
	StatusPending   Status = "pending_confirmation"
	StatusConfirmed Status = "confirmed"
	StatusDismissed Status = "dismissed"
	StatusRejected  Status = "rejected"
)

// Terminal reports whether s can no longer change.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// CanTransition allows only pending -> confirmed, dismissed or rejected.
func CanTransition(from, to Status) bool {
	if from != StatusPending {
		return false
	}
	switch to {
	case StatusConfirmed, StatusDismissed, StatusRejected:
		return true
	}
	return false
}

// Kind says what the requester reported and therefore what confirming does.
type Kind string

const (
	KindReturn  Kind = "return"
	KindDone    Kind = "done"
	KindRequest Kind = "request"
)

// Notification is a requester-side event awaiting an administrator decision.
type Notification struct {
	ID          int64        `json:"id"`
	Kind        Kind         `json:"kind"`
	RequestType request.Kind `json:"request_type"`
	RequestID   int64        `json:"request_id"`
	Message     string       `json:"message"`
	Status      Status       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (n Notification) GetID() int64 { return n.ID }

// Store is the notification half of the backend.
type Store interface {
	ListPending(ctx context.Context) ([]Notification, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// RequestWriter is the request half touched when a notification is decided.
// request.Transitions implements it over REST.
type RequestWriter interface {
	ConfirmReturn(ctx context.Context, borrowingID int64) error
	RevertReturn(ctx context.Context, borrowingID int64) error
	ConfirmDone(ctx context.Context, kind request.Kind, id int64) error
	Approve(ctx context.Context, kind request.Kind, ids []int64) error
}
