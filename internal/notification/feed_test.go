package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/goleak"

	"github.com/frahmantamala/campus-resources/internal/core/events"
	"github.com/frahmantamala/campus-resources/internal/notification"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	counts []int
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if evt, ok := event.(*events.NotificationsUpdatedEvent); ok {
		p.counts = append(p.counts, evt.Pending)
	}
}

func (p *recordingPublisher) Counts() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.counts...)
}

var _ = Describe("Feed", func() {
	var (
		store     *fakeStore
		clk       *testclock.Clock
		publisher *recordingPublisher
		feed      *notification.Feed
	)

	BeforeEach(func() {
		store = &fakeStore{items: []notification.Notification{
			{ID: 1, Kind: notification.KindReturn, Status: notification.StatusPending},
			{ID: 2, Kind: notification.KindDone, Status: notification.StatusConfirmed},
			{ID: 3, Kind: notification.KindRequest, Status: notification.StatusPending},
		}}
		clk = testclock.NewClock(time.Now())
		publisher = &recordingPublisher{}
		feed = notification.NewFeed(store, logger.Discard(),
			notification.WithClock(clk),
			notification.WithInterval(time.Minute),
			notification.WithPublisher(publisher))
	})

	AfterEach(func() {
		feed.Stop()
	})

	It("should keep only pending notifications", func() {
		feed.Refresh(context.Background())

		Expect(feed.Count()).To(Equal(2))
		_, ok := feed.Find(2)
		Expect(ok).To(BeFalse())
		n, ok := feed.Find(3)
		Expect(ok).To(BeTrue())
		Expect(n.Kind).To(Equal(notification.KindRequest))
		Expect(publisher.Counts()).To(Equal([]int{2}))
	})

	It("should degrade to an empty list when a poll fails", func() {
		feed.Refresh(context.Background())
		store.listErr = errors.New("connection refused")

		feed.Refresh(context.Background())
		Expect(feed.Pending()).To(BeEmpty())
		Expect(publisher.Counts()).To(Equal([]int{2, 0}))
	})

	It("should poll immediately and then on every interval", func() {
		feed.Start(context.Background())
		Eventually(store.Lists).Should(Equal(1))

		Expect(clk.WaitAdvance(time.Minute, time.Second, 1)).To(Succeed())
		Eventually(store.Lists).Should(Equal(2))

		Expect(clk.WaitAdvance(time.Minute, time.Second, 1)).To(Succeed())
		Eventually(store.Lists).Should(Equal(3))
	})

	It("should ignore a second Start", func() {
		feed.Start(context.Background())
		feed.Start(context.Background())
		Eventually(store.Lists).Should(Equal(1))
		Consistently(store.Lists, 50*time.Millisecond).Should(Equal(1))
	})

	It("should stop polling after Halt", func() {
		feed.Start(context.Background())
		Eventually(store.Lists).Should(Equal(1))

		feed.Halt()
		Eventually(stopAsync(feed)).Should(BeClosed())
		clk.Advance(time.Minute)
		Consistently(store.Lists, 50*time.Millisecond).Should(Equal(1))
	})

	It("should stop when its context ends", func() {
		ctx, cancel := context.WithCancel(context.Background())
		feed.Start(ctx)
		Eventually(store.Lists).Should(Equal(1))

		cancel()
		Eventually(stopAsync(feed)).Should(BeClosed())
		clk.Advance(time.Minute)
		Consistently(store.Lists, 50*time.Millisecond).Should(Equal(1))
	})
})

// stopAsync closes the returned channel once the polling loop has exited.
func stopAsync(feed *notification.Feed) chan struct{} {
	stopped := make(chan struct{})
	go func() {
		feed.Stop()
		close(stopped)
	}()
	return stopped
}

func TestFeedNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &fakeStore{}
	clk := testclock.NewClock(time.Now())
	feed := notification.NewFeed(store, logger.Discard(), notification.WithClock(clk))

	feed.Start(context.Background())
	if err := clk.WaitAdvance(notification.DefaultInterval, time.Second, 1); err != nil {
		t.Fatal(err)
	}
	feed.Stop()
	feed.Stop()
}
