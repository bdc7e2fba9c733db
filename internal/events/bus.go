package events

import (
	"context"
	"sync"
)

// Topic is a typed, process-wide publish/subscribe channel. Subscribers run
// synchronously on the publisher's goroutine in subscription order.
type Topic[T any] struct {
	name string

	mu   sync.RWMutex
	next int
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(context.Context, T)
}

func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

func (t *Topic[T]) Name() string { return t.name }

// Subscribe registers fn and returns a func that removes it again.
func (t *Topic[T]) Subscribe(fn func(context.Context, T)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.next
	t.next++
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, s := range t.subs {
				if s.id == id {
					t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (t *Topic[T]) Publish(ctx context.Context, ev T) {
	t.mu.RLock()
	subs := make([]subscriber[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.RUnlock()

	for _, s := range subs {
		s.fn(ctx, ev)
	}
}

func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

const (
	TopicFood   = "food_events"
	TopicOffers = "offer_events"
	TopicOrders = "order_events"
	TopicUsers  = "user_events"
)

// Bus groups the topics the services publish to.
type Bus struct {
	Food   *Topic[FoodEvent]
	Offers *Topic[OfferEvent]
	Orders *Topic[OrderEvent]
	Users  *Topic[UserEvent]
}

func NewBus() *Bus {
	return &Bus{
		Food:   NewTopic[FoodEvent](TopicFood),
		Offers: NewTopic[OfferEvent](TopicOffers),
		Orders: NewTopic[OrderEvent](TopicOrders),
		Users:  NewTopic[UserEvent](TopicUsers),
	}
}
