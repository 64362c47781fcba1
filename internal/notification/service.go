package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/request"
)

// Refresher reloads the pending list after a decision.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Service applies administrator decisions to notifications.
type Service struct {
	store     Store
	requests  RequestWriter
	refresher Refresher
	logger    *slog.Logger
}

func NewService(store Store, requests RequestWriter, logger *slog.Logger) *Service {
	return &Service{store: store, requests: requests, logger: logger}
}

// SetRefresher hooks the feed that must reload after every decision.
func (s *Service) SetRefresher(r Refresher) {
	s.refresher = r
}

// Confirm applies the referenced request transition, then marks the
// notification confirmed. The two writes are independent: both are always
// attempted and any failure comes back as *PartialWriteError.
func (s *Service) Confirm(ctx context.Context, n Notification) error {
	if err := s.guard(n, StatusConfirmed); err != nil {
		return err
	}
	defer s.refresh(ctx)

	requestErr := s.applyRequest(ctx, n)
	notificationErr := s.store.UpdateStatus(ctx, n.ID, StatusConfirmed)

	if requestErr != nil || notificationErr != nil {
		err := &PartialWriteError{
			NotificationID:  n.ID,
			Action:          "confirm",
			RequestErr:      requestErr,
			NotificationErr: notificationErr,
		}
		s.logger.Error("notification confirm incomplete",
			"notification_id", n.ID,
			"request_type", n.RequestType,
			"request_id", n.RequestID,
			"error", err)
		return err
	}

	s.logger.Info("notification confirmed", "notification_id", n.ID, "kind", n.Kind, "request_id", n.RequestID)
	return nil
}

// Dismiss hides the notification and leaves the request untouched.
func (s *Service) Dismiss(ctx context.Context, n Notification) error {
	if err := s.guard(n, StatusDismissed); err != nil {
		return err
	}
	defer s.refresh(ctx)

	if err := s.store.UpdateStatus(ctx, n.ID, StatusDismissed); err != nil {
		s.logger.Error("notification dismiss failed", "notification_id", n.ID, "error", err)
		return err
	}
	s.logger.Info("notification dismissed", "notification_id", n.ID)
	return nil
}

// Reject marks the notification rejected. A rejected return report also
// reverts the borrowing so it leaves the returned-pending view.
func (s *Service) Reject(ctx context.Context, n Notification) error {
	if err := s.guard(n, StatusRejected); err != nil {
		return err
	}
	defer s.refresh(ctx)

	notificationErr := s.store.UpdateStatus(ctx, n.ID, StatusRejected)

	var requestErr error
	if n.Kind == KindReturn {
		requestErr = s.requests.RevertReturn(ctx, n.RequestID)
	}

	if requestErr != nil || notificationErr != nil {
		err := &PartialWriteError{
			NotificationID:  n.ID,
			Action:          "reject",
			RequestErr:      requestErr,
			NotificationErr: notificationErr,
		}
		s.logger.Error("notification reject incomplete", "notification_id", n.ID, "error", err)
		return err
	}

	s.logger.Info("notification rejected", "notification_id", n.ID, "kind", n.Kind)
	return nil
}

func (s *Service) guard(n Notification, to Status) error {
	if n.Status.Terminal() {
		return internal.ErrNotificationResolved
	}
	if !CanTransition(n.Status, to) {
		return internal.ErrInvalidTransition
	}
	return nil
}

func (s *Service) applyRequest(ctx context.Context, n Notification) error {
	switch n.Kind {
	case KindReturn:
		return s.requests.ConfirmReturn(ctx, n.RequestID)
	case KindDone:
		return s.requests.ConfirmDone(ctx, n.RequestType, n.RequestID)
	case KindRequest:
		if !n.RequestType.Valid() {
			return internal.NewValidationError(fmt.Sprintf("unknown request type %q", n.RequestType), internal.ErrCodeInvalidValue)
		}
		return s.requests.Approve(ctx, n.RequestType, []int64{n.RequestID})
	default:
		return internal.NewValidationError(fmt.Sprintf("unknown notification kind %q", n.Kind), internal.ErrCodeInvalidValue)
	}
}

func (s *Service) refresh(ctx context.Context) {
	if s.refresher != nil {
		s.refresher.Refresh(ctx)
	}
}

var _ RequestWriter = (*request.Transitions)(nil)
