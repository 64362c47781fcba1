package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/juju/clock"

	"github.com/frahmantamala/campus-resources/internal/core/events"
)

const DefaultInterval = 30 * time.Second

type Publisher interface {
	Publish(ctx context.Context, event events.Event)
}

// Feed polls the pending notifications on a fixed interval. Failed polls
// leave the feed empty until the next successful one.
type Feed struct {
	store     Store
	clock     clock.Clock
	interval  time.Duration
	publisher Publisher
	logger    *slog.Logger

	mu      sync.RWMutex
	pending []Notification

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type FeedOption func(*Feed)

func WithClock(clk clock.Clock) FeedOption {
	return func(f *Feed) { f.clock = clk }
}

func WithInterval(d time.Duration) FeedOption {
	return func(f *Feed) {
		if d > 0 {
			f.interval = d
		}
	}
}

func WithPublisher(p Publisher) FeedOption {
	return func(f *Feed) { f.publisher = p }
}

func NewFeed(store Store, logger *slog.Logger, opts ...FeedOption) *Feed {
	f := &Feed{
		store:    store,
		clock:    clock.WallClock,
		interval: DefaultInterval,
		logger:   logger,
		pending:  []Notification{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start polls once immediately and then every interval until ctx is done or
// Stop is called. Starting a running feed is a no-op.
func (f *Feed) Start(ctx context.Context) {
	f.runMu.Lock()
	defer f.runMu.Unlock()
	if f.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.done = make(chan struct{})
	go f.loop(ctx, f.done)
	f.logger.Info("notification polling started", "interval", f.interval)
}

// Halt cancels polling without waiting. It is safe to call from inside a
// poll, e.g. from a session listener reacting to a 401.
func (f *Feed) Halt() {
	f.runMu.Lock()
	defer f.runMu.Unlock()
	if f.cancel != nil {
		f.cancel()
	}
}

// Stop cancels polling and waits for the loop to exit.
func (f *Feed) Stop() {
	f.runMu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	f.logger.Info("notification polling stopped")
}

func (f *Feed) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	f.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.clock.After(f.interval):
			f.Refresh(ctx)
		}
	}
}

// Refresh reloads the pending list now.
func (f *Feed) Refresh(ctx context.Context) {
	items, err := f.store.ListPending(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		f.logger.Warn("notification poll failed", "error", err)
		items = []Notification{}
	}

	pending := make([]Notification, 0, len(items))
	for _, n := range items {
		if n.Status == StatusPending {
			pending = append(pending, n)
		}
	}

	f.mu.Lock()
	f.pending = pending
	f.mu.Unlock()

	if f.publisher != nil {
		f.publisher.Publish(ctx, events.NewNotificationsUpdatedEvent(len(pending)))
	}
}

// Pending returns a snapshot of the pending notifications.
func (f *Feed) Pending() []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Notification(nil), f.pending...)
}

func (f *Feed) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.pending)
}

// Find returns the pending notification with id.
func (f *Feed) Find(id int64) (Notification, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, n := range f.pending {
		if n.ID == id {
			return n, true
		}
	}
	return Notification{}, false
}
