package orders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "marketplace-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // usually order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payload types per event ----

type OrderCreatedEvent struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	BuyerID     string          `json:"buyer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderStatusChangedEvent struct {
	OrderID    string `json:"order_id"`
	FromStatus Status `json:"from_status"`
	ToStatus   Status `json:"to_status"`
}

// Emitter is the outbound notification channel. Calls are fire-and-forget and
// are made only after a successful commit: an emit failure never rolls back or
// fails the operation that triggered it.
type Emitter interface {
	OrderCreated(ctx context.Context, ev OrderCreatedEvent)
	OrderStatusChanged(ctx context.Context, ev OrderStatusChangedEvent)
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) OrderCreated(context.Context, OrderCreatedEvent)             {}
func (NopEmitter) OrderStatusChanged(context.Context, OrderStatusChangedEvent) {}
