package events

import (
	"context"
	"time"

	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

const publishTimeout = 5 * time.Second

// Broker ships events to an external message system.
type Broker interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
	Close() error
}

// Forward subscribes b to every topic of bus. Publish failures are logged and
// dropped. The returned func detaches the forwarder.
func Forward(bus *Bus, b Broker) (stop func()) {
	stops := []func(){
		forwardTopic(bus.Food, b, func(e FoodEvent) string { return e.ID }),
		forwardTopic(bus.Offers, b, func(e OfferEvent) string { return e.ID }),
		forwardTopic(bus.Orders, b, func(e OrderEvent) string { return e.ID }),
		forwardTopic(bus.Users, b, func(e UserEvent) string { return e.ID }),
	}
	return func() {
		for _, s := range stops {
			s()
		}
	}
}

func forwardTopic[T any](t *Topic[T], b Broker, key func(T) string) func() {
	return t.Subscribe(func(ctx context.Context, ev T) {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		if err := b.PublishEvent(pubCtx, t.Name(), key(ev), ev); err != nil {
			logging.FromContext(ctx).Error("event_publish_error", "topic", t.Name(), "key", key(ev), "error", err)
		}
	})
}
