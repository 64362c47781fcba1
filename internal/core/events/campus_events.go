package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeResourceChanged      = "resource.changed"
	EventTypeNotificationsUpdated = "notifications.updated"
)

// ResourceChangedEvent tells open lists of Resource to re-fetch.
type ResourceChangedEvent struct {
	BaseEvent
	Resource string  `json:"resource"`
	Action   string  `json:"action"`
	IDs      []int64 `json:"ids"`
}

func NewResourceChangedEvent(resource, action string, ids ...int64) *ResourceChangedEvent {
	return &ResourceChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeResourceChanged,
			Timestamp: time.Now(),
			Data: map[string]any{
				"resource": resource,
				"action":   action,
				"ids":      ids,
			},
		},
		Resource: resource,
		Action:   action,
		IDs:      ids,
	}
}

type NotificationsUpdatedEvent struct {
	BaseEvent
	Pending int `json:"pending"`
}

func NewNotificationsUpdatedEvent(pending int) *NotificationsUpdatedEvent {
	return &NotificationsUpdatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeNotificationsUpdated,
			Timestamp: time.Now(),
			Data:      map[string]any{"pending": pending},
		},
		Pending: pending,
	}
}
