package changefeed

import (
	"context"
	"fmt"
	"sync"
)

const DefaultBuffer = 16

// Subscription is a caller-owned stream of change events. C is closed after
// Close or when the subscribing context ends.
type Subscription struct {
	C <-chan Event

	ch     chan Event
	filter map[Collection]struct{}
	once   sync.Once
	stop   func() bool
	detach func()
}

func (s *Subscription) wants(c Collection) bool {
	if len(s.filter) == 0 {
		return true
	}
	_, ok := s.filter[c]
	return ok
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
		s.detach()
	})
}

// Hub fans events out to subscriptions. Delivery never blocks the publisher:
// when a subscriber's buffer is full the event is dropped, which is safe
// because any buffered event already forces a full re-read.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

func (h *Hub) Subscribe(ctx context.Context, collections ...Collection) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := make(map[Collection]struct{}, len(collections))
	for _, c := range collections {
		if _, err := ParseCollection(string(c)); err != nil {
			return nil, fmt.Errorf("subscribe: %w", err)
		}
		filter[c] = struct{}{}
	}

	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, filter: filter}
	sub.detach = func() {
		h.mu.Lock()
		delete(h.subs, sub)
		close(sub.ch)
		h.mu.Unlock()
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	sub.stop = context.AfterFunc(ctx, sub.Close)
	return sub, nil
}

func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if !sub.wants(ev.Collection) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// Subscribers reports the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
