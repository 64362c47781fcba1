package bulk

import (
	"context"
	"fmt"
	"log/slog"
)

type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeCancelled
	OutcomeApplied
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Selection is the part of a table the controller reads and clears.
type Selection interface {
	Selected() []int64
	ClearSelection()
}

// Confirmer asks the operator before a destructive action runs.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Action is one bulk operation. Run receives the full selected id list and
// must issue a single backend call.
type Action struct {
	Name        string
	Destructive bool
	Run         func(ctx context.Context, ids []int64) error
}

type RefreshFunc func(ctx context.Context) error

type AlertFunc func(ctx context.Context, action string, err error)

// Controller runs bulk actions against the current selection of one table.
type Controller struct {
	selection Selection
	confirmer Confirmer
	refresh   RefreshFunc
	alert     AlertFunc
	logger    *slog.Logger
}

type Option func(*Controller)

func WithConfirmer(c Confirmer) Option {
	return func(ctl *Controller) { ctl.confirmer = c }
}

func WithAlert(fn AlertFunc) Option {
	return func(ctl *Controller) { ctl.alert = fn }
}

func NewController(selection Selection, refresh RefreshFunc, logger *slog.Logger, opts ...Option) *Controller {
	ctl := &Controller{
		selection: selection,
		refresh:   refresh,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(ctl)
	}
	return ctl
}

// Perform runs action on the selection. The selection is cleared and the
// list re-fetched only after the backend accepted the call; on failure it is
// left intact for a retry.
func (c *Controller) Perform(ctx context.Context, action Action) (Outcome, error) {
	ids := c.selection.Selected()
	if len(ids) == 0 {
		c.logger.Debug("bulk action skipped, nothing selected", "action", action.Name)
		return OutcomeSkipped, nil
	}

	if action.Destructive {
		if c.confirmer == nil || !c.confirmer.Confirm(ctx, confirmPrompt(action.Name, len(ids))) {
			c.logger.Info("bulk action cancelled", "action", action.Name, "count", len(ids))
			return OutcomeCancelled, nil
		}
	}

	if err := action.Run(ctx, ids); err != nil {
		c.logger.Error("bulk action failed", "action", action.Name, "count", len(ids), "error", err)
		if c.alert != nil {
			c.alert(ctx, action.Name, err)
		}
		return OutcomeFailed, err
	}

	c.selection.ClearSelection()
	c.logger.Info("bulk action applied", "action", action.Name, "count", len(ids))

	if c.refresh != nil {
		if err := c.refresh(ctx); err != nil {
			c.logger.Warn("re-fetch after bulk action failed", "action", action.Name, "error", err)
		}
	}
	return OutcomeApplied, nil
}

func confirmPrompt(action string, count int) string {
	noun := "items"
	if count == 1 {
		noun = "item"
	}
	return fmt.Sprintf("%s %d selected %s?", action, count, noun)
}
