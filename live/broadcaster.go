package live

import (
	"context"
	"sync"
)

// subscriberBuffer bounds the events queued for one slow subscriber. Once it is full
// further events are dropped; the queued ones already force a refresh that observes them.
const subscriberBuffer = 16

// Broadcaster fans events out to in-process subscribers.
type Broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscriber
}

type subscriber struct {
	filter Filter
	ch     chan ChangeEvent
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]*subscriber)}
}

// Subscribe registers fn for events matching f. fn runs on a dedicated goroutine, one
// event at a time, until the subscription is released or ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context, f Filter, fn func(ChangeEvent)) (Subscription, error) {
	b.mu.Lock()
	id := b.next
	b.next++
	s := &subscriber{filter: f, ch: make(chan ChangeEvent, subscriberBuffer)}
	b.subs[id] = s
	b.mu.Unlock()

	sub := newSubscription(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if s2, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s2.ch)
		}
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				sub.Unsubscribe()
				return
			case ev, ok := <-s.ch:
				if !ok {
					return
				}
				fn(ev)
			}
		}
	}()

	return sub, nil
}

// Publish hands ev to every matching subscriber without blocking.
func (b *Broadcaster) Publish(ev ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		if !s.filter.Matches(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
}

// Len returns the number of active subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
