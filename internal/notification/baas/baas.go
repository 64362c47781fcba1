package baas

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/campus-resources/internal"
	model "github.com/frahmantamala/campus-resources/internal/core/datamodel/notification"
	"github.com/frahmantamala/campus-resources/internal/notification"
	"github.com/frahmantamala/campus-resources/internal/request"
)

// TokenSource yields the signed-in session token.
type TokenSource interface {
	Token() (string, error)
}

// Store reads and decides notifications directly on the hosted database.
type Store struct {
	db     *gorm.DB
	tokens TokenSource
	logger *slog.Logger
	now    func() time.Time
}

func NewStore(db *gorm.DB, tokens TokenSource, logger *slog.Logger) *Store {
	return &Store{db: db, tokens: tokens, logger: logger, now: time.Now}
}

func (s *Store) ListPending(ctx context.Context) ([]notification.Notification, error) {
	if _, err := s.tokens.Token(); err != nil {
		return nil, err
	}
	var rows []model.Notification
	err := s.db.WithContext(ctx).
		Where("status = ?", string(notification.StatusPending)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, internal.NewInternalError("failed to list notifications", err)
	}

	out := make([]notification.Notification, len(rows))
	for i, row := range rows {
		out[i] = FromRow(row)
	}
	return out, nil
}

// UpdateStatus moves a pending notification to status. Rows already decided
// are left alone.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status notification.Status) error {
	if _, err := s.tokens.Token(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.Notification
		if err := tx.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.NewNotFoundError("notification not found", internal.ErrCodeRecordNotFound)
			}
			return internal.NewInternalError("failed to load notification", err)
		}
		if !notification.CanTransition(notification.Status(row.Status), status) {
			return internal.ErrNotificationResolved
		}

		now := s.now()
		err := tx.Model(&row).Updates(map[string]any{
			"status":     string(status),
			"updated_at": now,
		}).Error
		if err != nil {
			return internal.NewInternalError("failed to update notification", err)
		}
		s.logger.Debug("notification status written", "notification_id", id, "status", status)
		return nil
	})
}

func FromRow(row model.Notification) notification.Notification {
	return notification.Notification{
		ID:          row.ID,
		Kind:        notification.Kind(row.Kind),
		RequestType: request.Kind(row.RequestType),
		RequestID:   row.RequestID,
		Message:     row.Message,
		Status:      notification.Status(row.Status),
		CreatedAt:   row.CreatedAt,
	}
}

// Requests writes request transitions on the hosted database, for the
// pages that never went through the REST backend.
type Requests struct {
	db     *gorm.DB
	tokens TokenSource
	logger *slog.Logger
	now    func() time.Time
}

func NewRequests(db *gorm.DB, tokens TokenSource, logger *slog.Logger) *Requests {
	return &Requests{db: db, tokens: tokens, logger: logger, now: time.Now}
}

func (r *Requests) ConfirmReturn(ctx context.Context, borrowingID int64) error {
	return r.update(ctx, request.KindBorrowing, []int64{borrowingID}, map[string]any{
		"status":           request.StatusReturned,
		"return_requested": false,
	})
}

func (r *Requests) RevertReturn(ctx context.Context, borrowingID int64) error {
	return r.update(ctx, request.KindBorrowing, []int64{borrowingID}, map[string]any{
		"return_requested": false,
	})
}

func (r *Requests) ConfirmDone(ctx context.Context, kind request.Kind, id int64) error {
	if kind != request.KindBooking && kind != request.KindAcquiring {
		return internal.NewValidationError("only booking and acquiring requests can be confirmed done", internal.ErrCodeInvalidValue)
	}
	return r.update(ctx, kind, []int64{id}, map[string]any{"status": request.StatusCompleted})
}

func (r *Requests) Approve(ctx context.Context, kind request.Kind, ids []int64) error {
	if !kind.Valid() {
		return internal.NewValidationError("unknown request kind", internal.ErrCodeInvalidValue)
	}
	if len(ids) == 0 {
		return internal.ErrEmptySelection
	}
	return r.update(ctx, kind, ids, map[string]any{"status": request.StatusApproved})
}

func (r *Requests) update(ctx context.Context, kind request.Kind, ids []int64, values map[string]any) error {
	if _, err := r.tokens.Token(); err != nil {
		return err
	}
	values["updated_at"] = r.now()
	result := r.db.WithContext(ctx).
		Table(string(kind)).
		Where("id IN ?", ids).
		Updates(values)
	if result.Error != nil {
		r.logger.Error("request write failed", "kind", kind, "ids", ids, "error", result.Error)
		return internal.NewInternalError("failed to update request", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.NewNotFoundError("request not found", internal.ErrCodeRecordNotFound)
	}
	r.logger.Info("request updated", "kind", kind, "count", result.RowsAffected)
	return nil
}

var (
	_ notification.Store         = (*Store)(nil)
	_ notification.RequestWriter = (*Requests)(nil)
)
