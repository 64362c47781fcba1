package request

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/resource"
	"golang.org/x/sync/errgroup"
)

type Verifier interface {
	Verify(ctx context.Context) (auth.Identity, error)
}

// Lister is the list half of a resource client; it never fails.
type Lister[T any] interface {
	List(ctx context.Context, params resource.ListParams) resource.Page[T]
}

// Snapshot is one load of all three request lists.
type Snapshot struct {
	Identity  auth.Identity
	Borrowing resource.Page[Borrowing]
	Booking   resource.Page[Booking]
	Acquiring resource.Page[Acquiring]
}

// Loader fetches the borrowing, booking and acquiring lists together.
type Loader struct {
	verifier  Verifier
	borrowing Lister[Borrowing]
	booking   Lister[Booking]
	acquiring Lister[Acquiring]
	logger    *slog.Logger
}

func NewLoader(verifier Verifier, borrowing Lister[Borrowing], booking Lister[Booking], acquiring Lister[Acquiring], logger *slog.Logger) *Loader {
	return &Loader{
		verifier:  verifier,
		borrowing: borrowing,
		booking:   booking,
		acquiring: acquiring,
		logger:    logger,
	}
}

// LoadAll verifies the session once, then issues the three list calls in
// parallel. Each call fills only its own field and degrades on its own.
func (l *Loader) LoadAll(ctx context.Context, params resource.ListParams) (Snapshot, error) {
	identity, err := l.verifier.Verify(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Identity: identity}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		snap.Borrowing = l.borrowing.List(gctx, params)
		return nil
	})
	g.Go(func() error {
		snap.Booking = l.booking.List(gctx, params)
		return nil
	})
	g.Go(func() error {
		snap.Acquiring = l.acquiring.List(gctx, params)
		return nil
	})

	if err := g.Wait(); err != nil {
		return snap, err
	}

	l.logger.Debug("request lists loaded",
		"borrowing", snap.Borrowing.Total,
		"booking", snap.Booking.Total,
		"acquiring", snap.Acquiring.Total)
	return snap, nil
}
