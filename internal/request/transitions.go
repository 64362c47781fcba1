package request

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/campus-resources/internal"
)

// API is the subset of the REST transport used for transitions.
type API interface {
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// Transitions asks the backend to move requests between statuses. It never
// decides a transition locally.
type Transitions struct {
	api    API
	logger *slog.Logger
}

func NewTransitions(api API, logger *slog.Logger) *Transitions {
	return &Transitions{api: api, logger: logger}
}

func (t *Transitions) Approve(ctx context.Context, kind Kind, ids []int64) error {
	return t.bulkStatus(ctx, kind, ids, StatusApproved)
}

func (t *Transitions) Reject(ctx context.Context, kind Kind, ids []int64) error {
	return t.bulkStatus(ctx, kind, ids, StatusRejected)
}

// MarkReturned records that the borrowed items came back, received by receiverName.
func (t *Transitions) MarkReturned(ctx context.Context, ids []int64, receiverName string) error {
	if len(ids) == 0 {
		return internal.ErrEmptySelection
	}
	receiverName = strings.TrimSpace(receiverName)
	if receiverName == "" {
		return internal.NewValidationFieldError("receiver_name", "receiver name is required", internal.ErrCodeRequiredField)
	}

	body := map[string]any{
		KindBorrowing.IDsField(): ids,
		"receiver_name":          receiverName,
	}
	return t.call(ctx, KindBorrowing, "mark-returned", body, "count", len(ids))
}

// MarkDone completes bookings or acquiring requests.
func (t *Transitions) MarkDone(ctx context.Context, kind Kind, ids []int64) error {
	if kind != KindBooking && kind != KindAcquiring {
		return internal.NewValidationError(fmt.Sprintf("%s requests cannot be marked done", kind), internal.ErrCodeInvalidValue)
	}
	if len(ids) == 0 {
		return internal.ErrEmptySelection
	}
	return t.call(ctx, kind, "mark-done", map[string]any{kind.IDsField(): ids}, "count", len(ids))
}

// ConfirmReturn accepts a borrower's reported return.
func (t *Transitions) ConfirmReturn(ctx context.Context, borrowingID int64) error {
	return t.call(ctx, KindBorrowing, "confirm-return", map[string]any{KindBorrowing.IDField(): borrowingID}, "id", borrowingID)
}

// RevertReturn withdraws a reported return so the borrowing shows as active again.
func (t *Transitions) RevertReturn(ctx context.Context, borrowingID int64) error {
	return t.call(ctx, KindBorrowing, "revert-return", map[string]any{KindBorrowing.IDField(): borrowingID}, "id", borrowingID)
}

// ConfirmDone accepts a requester's report that a booking or acquisition is finished.
func (t *Transitions) ConfirmDone(ctx context.Context, kind Kind, id int64) error {
	if kind != KindBooking && kind != KindAcquiring {
		return internal.NewValidationError(fmt.Sprintf("%s requests cannot be confirmed done", kind), internal.ErrCodeInvalidValue)
	}
	return t.call(ctx, kind, "confirm-done", map[string]any{kind.IDField(): id}, "id", id)
}

func (t *Transitions) bulkStatus(ctx context.Context, kind Kind, ids []int64, status string) error {
	if !kind.Valid() {
		return internal.NewValidationError(fmt.Sprintf("unknown request kind %q", kind), internal.ErrCodeInvalidValue)
	}
	if len(ids) == 0 {
		return internal.ErrEmptySelection
	}

	body := map[string]any{"ids": ids, "status": status}
	if err := t.api.Put(ctx, kind.Path()+"/bulk-update-status", body, nil); err != nil {
		t.logger.Error("request status update failed", "kind", kind, "status", status, "count", len(ids), "error", err)
		return err
	}
	t.logger.Info("request status updated", "kind", kind, "status", status, "count", len(ids))
	return nil
}

func (t *Transitions) call(ctx context.Context, kind Kind, action string, body any, attrs ...any) error {
	if err := t.api.Post(ctx, kind.Path()+"/"+action, body, nil); err != nil {
		args := append([]any{"kind", kind, "action", action, "error", err}, attrs...)
		t.logger.Error("request transition failed", args...)
		return err
	}
	args := append([]any{"kind", kind, "action", action}, attrs...)
	t.logger.Info("request transition applied", args...)
	return nil
}
