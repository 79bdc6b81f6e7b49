package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/orders"
	"github.com/ariefcatur/go-marketplace-orders.git/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Notification struct {
	ID        string
	Recipient string
	Kind      string
	OrderID   string
	Body      string
	CreatedAt time.Time
}

// Store persists notifications for later delivery (push/poll is someone
// else's problem).
type Store interface {
	BuyerOf(ctx context.Context, orderID string) (string, error)
	Insert(ctx context.Context, n Notification) error
}

// Service is the consumer side: decodes envelopes, dedups on event id and
// stores one notification row per event.
type Service struct {
	Store Store
	Redis *redis.Client
	Name  string // dedup namespace, e.g. "notifier"
}

// HandleOrderCreated is wired as the orders.created consumer handler.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCreated {
		return nil // ignore
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	var ev orders.OrderCreatedEvent
	if err := json.Unmarshal(env.Payload, &ev); err != nil {
		return err
	}
	n := Notification{
		ID:        uuid.NewString(),
		Recipient: ev.BuyerID,
		Kind:      "order_created",
		OrderID:   ev.OrderID,
		Body:      fmt.Sprintf("Order %s placed, total %s", ev.OrderNumber, ev.TotalAmount.StringFixed(2)),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Insert(ctx, n); err != nil {
		return err
	}
	s.markSeen(ctx, env.EventID)
	slog.Info("notification stored", slog.String("kind", n.Kind), slog.String("order_id", n.OrderID))
	return nil
}

// HandleStatusChanged is wired as the orders.status.changed consumer handler.
// The payload carries no buyer reference, so the recipient comes from the
// order row.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	var ev orders.OrderStatusChangedEvent
	if err := json.Unmarshal(env.Payload, &ev); err != nil {
		return err
	}
	buyer, err := s.Store.BuyerOf(ctx, ev.OrderID)
	if err != nil {
		return err
	}
	n := Notification{
		ID:        uuid.NewString(),
		Recipient: buyer,
		Kind:      "order_status_changed",
		OrderID:   ev.OrderID,
		Body:      fmt.Sprintf("Order status changed from %s to %s", ev.FromStatus, ev.ToStatus),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Insert(ctx, n); err != nil {
		return err
	}
	s.markSeen(ctx, env.EventID)
	slog.Info("notification stored", slog.String("kind", n.Kind), slog.String("order_id", n.OrderID))
	return nil
}

func (s *Service) seen(ctx context.Context, eventID string) bool {
	if s.Redis == nil {
		return false
	}
	key := fmt.Sprintf(redisx.KeyDedup, s.Name, eventID)
	ok, _ := redisx.Exists(ctx, s.Redis, key)
	return ok
}

func (s *Service) markSeen(ctx context.Context, eventID string) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyDedup, s.Name, eventID)
	_ = s.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
}
