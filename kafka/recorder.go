package kafka

import (
	"context"
	"sync"
)

// Recorder keeps published events in memory. Err, when set, is returned
// from every publish after the event is recorded.
type Recorder struct {
	mu            sync.Mutex
	OrderEvents   []OrderEvent
	PaymentEvents []PaymentEvent
	Err           error
}

func (r *Recorder) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.OrderEvents = append(r.OrderEvents, event)
	return r.Err
}

func (r *Recorder) PublishPaymentEvent(ctx context.Context, event PaymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PaymentEvents = append(r.PaymentEvents, event)
	return r.Err
}

// OrderEventTypes lists the recorded order event types in publish order.
func (r *Recorder) OrderEventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.OrderEvents))
	for _, e := range r.OrderEvents {
		types = append(types, e.EventType)
	}
	return types
}

// Payments returns a copy of the recorded payment events.
func (r *Recorder) Payments() []PaymentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PaymentEvent(nil), r.PaymentEvents...)
}
