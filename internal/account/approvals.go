package account

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/campus-resources/internal"
)

type API interface {
	Post(ctx context.Context, path string, body, out any) error
}

type approval struct {
	ID              int64  `json:"id"`
	ApprovedAccRole string `json:"approved_acc_role"`
}

// Approvals decides pending account requests, all selected requests in one call.
type Approvals struct {
	api    API
	logger *slog.Logger
}

func NewApprovals(api API, logger *slog.Logger) *Approvals {
	return &Approvals{api: api, logger: logger}
}

// Approve grants each request the system role mapped from its requested role.
func (a *Approvals) Approve(ctx context.Context, requests []AccountRequest) error {
	if len(requests) == 0 {
		return internal.ErrEmptySelection
	}

	approvals := make([]approval, len(requests))
	for i, req := range requests {
		approvals[i] = approval{ID: req.ID, ApprovedAccRole: MapRoleToSystemRole(req.RequestedRole)}
	}

	if err := a.api.Post(ctx, "/api/account-requests/approve", map[string]any{"approvals": approvals}, nil); err != nil {
		a.logger.Error("account approval failed", "count", len(requests), "error", err)
		return err
	}
	a.logger.Info("account requests approved", "count", len(requests))
	return nil
}

func (a *Approvals) Reject(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return internal.ErrEmptySelection
	}
	if err := a.api.Post(ctx, "/api/account-requests/reject", map[string]any{"ids": ids}, nil); err != nil {
		a.logger.Error("account rejection failed", "count", len(ids), "error", err)
		return err
	}
	a.logger.Info("account requests rejected", "count", len(ids))
	return nil
}
