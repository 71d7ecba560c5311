// Package events fans database change notifications out to subscribed
// clients. Subscriptions are filtered server-side: a customer view subscribes
// to a single order id, the admin dashboard to everything.
package events

import (
	"sync"

	"github.com/go-faster/jx"
)

// Kind names the table a change event originated from.
type Kind string

const (
	KindOrder   Kind = "order"
	KindPayment Kind = "payment"
)

// Event is a single change notification.
type Event struct {
	Kind    Kind
	OrderID string
	// Payload is the raw JSON document produced by the notify trigger.
	Payload []byte
}

// Encode wraps the event for the wire: {"kind": ..., "data": <payload>}.
func (e Event) Encode() []byte {
	var enc jx.Encoder
	enc.Obj(func(enc *jx.Encoder) {
		enc.Field("kind", func(enc *jx.Encoder) { enc.Str(string(e.Kind)) })
		enc.Field("data", func(enc *jx.Encoder) { enc.Raw(e.Payload) })
	})
	return enc.Bytes()
}

// subscriber buffer size. Events are droppable state hints, not a log: a slow
// consumer loses intermediate updates rather than blocking the hub.
const subscriberBuffer = 16

// Subscription receives events matching its filter on C until Close.
type Subscription struct {
	C      chan Event
	hub    *Hub
	filter string // order id, empty matches everything
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub routes events to subscriptions.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: map[*Subscription]struct{}{}}
}

// Subscribe registers a subscription. An empty orderID receives every event;
// otherwise only events for that order are delivered.
func (h *Hub) Subscribe(orderID string) *Subscription {
	sub := &Subscription{
		C:      make(chan Event, subscriberBuffer),
		hub:    h,
		filter: orderID,
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.C)
	}
	h.mu.Unlock()
}

// Publish delivers the event to every matching subscription. Full buffers are
// skipped.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.filter != "" && sub.filter != ev.OrderID {
			continue
		}
		select {
		case sub.C <- ev:
		default:
		}
	}
}

// Len returns the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
