package events_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/campus-resources/internal/core/events"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(logger.Discard())
	})

	It("should run sync handlers in order and join their failures", func() {
		var order []string
		bus.Subscribe(events.EventTypeResourceChanged, func(_ context.Context, e events.Event) error {
			order = append(order, "first")
			return errors.New("list offline")
		})
		bus.Subscribe(events.EventTypeResourceChanged, func(_ context.Context, e events.Event) error {
			order = append(order, "second:"+e.(*events.ResourceChangedEvent).Resource)
			return nil
		})

		err := bus.PublishSync(context.Background(), events.NewResourceChangedEvent("supplies", "update", 4))
		Expect(order).To(Equal([]string{"first", "second:supplies"}))
		Expect(err).To(MatchError(ContainSubstring("list offline")))
		Expect(err).To(MatchError(ContainSubstring(events.EventTypeResourceChanged)))
	})

	It("should ignore events nobody listens to", func() {
		Expect(bus.PublishSync(context.Background(), events.NewNotificationsUpdatedEvent(3))).To(Succeed())
		bus.Publish(context.Background(), events.NewNotificationsUpdatedEvent(3))
	})

	It("should deliver async events to every handler", func() {
		var calls atomic.Int32
		for i := 0; i < 3; i++ {
			bus.Subscribe(events.EventTypeNotificationsUpdated, func(_ context.Context, e events.Event) error {
				Expect(e.Payload()).To(HaveKeyWithValue("pending", 2))
				calls.Add(1)
				return nil
			})
		}

		bus.Publish(context.Background(), events.NewNotificationsUpdatedEvent(2))
		Eventually(calls.Load).Should(Equal(int32(3)))
	})

	It("should stamp events", func() {
		evt := events.NewResourceChangedEvent("facilities", "import", 1, 2)
		Expect(evt.EventID()).NotTo(BeEmpty())
		Expect(evt.OccurredAt()).NotTo(BeZero())
		Expect(evt.IDs).To(Equal([]int64{1, 2}))
	})
})
