// Package notify carries order events out of the transactional core and turns
// them into stored notifications on the consumer side. Emission is best-effort
// by contract: a lost event never affects an order.
package notify

import (
	"context"
	"sync"
	"time"

	kafkax "github.com/ariefcatur/go-marketplace-orders.git/internal/kafka"
	"github.com/ariefcatur/go-marketplace-orders.git/internal/orders"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// KafkaEmitter implements orders.Emitter on two async producers, one per
// topic. Publish never blocks the caller's commit path.
type KafkaEmitter struct {
	Created *kafkax.Producer // orders.created
	Status  *kafkax.Producer // orders.status.changed
	Service string
}

func (e *KafkaEmitter) OrderCreated(ctx context.Context, ev orders.OrderCreatedEvent) {
	e.publish(e.Created, orders.EventOrderCreated, ev.OrderID, kafkax.MustMarshal(ev))
}

func (e *KafkaEmitter) OrderStatusChanged(ctx context.Context, ev orders.OrderStatusChangedEvent) {
	e.publish(e.Status, orders.EventOrderStatusChanged, ev.OrderID, kafkax.MustMarshal(ev))
}

func (e *KafkaEmitter) publish(p *kafkax.Producer, eventType, orderID string, payload []byte) {
	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		CorrelationID: orderID,
		Payload:       payload,
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// Recorder implements orders.Emitter in memory so tests can assert on the
// emitted-event list without a transport.
type Recorder struct {
	mu      sync.Mutex
	created []orders.OrderCreatedEvent
	status  []orders.OrderStatusChangedEvent
}

func (r *Recorder) OrderCreated(ctx context.Context, ev orders.OrderCreatedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, ev)
}

func (r *Recorder) OrderStatusChanged(ctx context.Context, ev orders.OrderStatusChangedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = append(r.status, ev)
}

func (r *Recorder) CreatedEvents() []orders.OrderCreatedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]orders.OrderCreatedEvent(nil), r.created...)
}

func (r *Recorder) StatusEvents() []orders.OrderStatusChangedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]orders.OrderStatusChangedEvent(nil), r.status...)
}
