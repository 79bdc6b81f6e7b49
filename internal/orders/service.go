package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/inventory"
	"github.com/google/uuid"
)

// createRetries bounds order-number regeneration on a duplicate collision.
const createRetries = 3

// Service is the transactional core: order placement and the status workflow.
// The store and emitter are injected so tests run against in-memory doubles.
type Service struct {
	store   Store
	emitter Emitter
	now     func() time.Time
}

func NewService(store Store, emitter Emitter) *Service {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &Service{store: store, emitter: emitter, now: time.Now}
}

// CreateOrder validates and prices the cart, then commits order + inventory
// changes as one atomic unit. Either a fully formed order with fully
// decremented stock exists afterwards, or nothing changed.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	var draft *Draft
	err := s.store.View(ctx, func(tx Tx) error {
		d, err := BuildDraft(ctx, tx, in)
		if err != nil {
			return err
		}
		draft = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	var ord *Order
	for attempt := 0; ; attempt++ {
		ord, err = s.commitDraft(ctx, draft)
		if errors.Is(err, ErrDuplicateOrderNumber) && attempt < createRetries {
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	s.emitter.OrderCreated(ctx, OrderCreatedEvent{
		OrderID:     ord.ID,
		OrderNumber: ord.Number,
		BuyerID:     ord.BuyerID,
		TotalAmount: ord.TotalAmount,
	})
	return ord, nil
}

func (s *Service) commitDraft(ctx context.Context, draft *Draft) (*Order, error) {
	var ord *Order
	err := s.store.Update(ctx, func(tx Tx) error {
		// Re-reserve under row locks. The draft already validated, so a
		// shortage here means stock moved underneath us: a retryable conflict,
		// not a validation failure.
		for _, line := range draft.Lines {
			if err := inventory.Reserve(ctx, tx, line.ProductID, line.Quantity); err != nil {
				var short *inventory.InsufficientStockError
				var gone *inventory.ProductNotFoundError
				if errors.As(err, &short) || errors.As(err, &gone) {
					return fmt.Errorf("%w: %v", ErrConcurrentStockConflict, err)
				}
				return err
			}
		}

		now := s.now().UTC()
		o := &Order{
			ID:              uuid.NewString(),
			Number:          NewOrderNumber(now),
			BuyerID:         draft.BuyerID,
			Status:          StatusPending,
			TotalAmount:     draft.Total,
			ShippingAddress: draft.ShippingAddress,
			BillingAddress:  draft.BillingAddress,
			Notes:           draft.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		for _, line := range draft.Lines {
			o.Items = append(o.Items, OrderItem{
				ID:        uuid.NewString(),
				OrderID:   o.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Subtotal:  line.Subtotal,
			})
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.InsertItems(ctx, o.Items); err != nil {
			return err
		}
		ord = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ord, nil
}

type TransitionInput struct {
	TrackingNumber    *string
	EstimatedDelivery *time.Time
}

// TransitionStatus advances an order along the workflow. The legality check
// runs against the persisted status read under a row lock in the same
// transaction as the write, so two concurrent transitions can never both pass
// against a stale status. Transitioning into CANCELLED releases every line
// item's stock; the terminal-state guard makes that release at-most-once.
func (s *Service) TransitionStatus(ctx context.Context, orderID string, to Status, in TransitionInput) (*Order, error) {
	var ord *Order
	var from Status
	err := s.store.Update(ctx, func(tx Tx) error {
		o, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		from = o.Status
		if !to.Valid() || !CanTransition(o.Status, to) {
			return &InvalidTransitionError{From: o.Status, To: to}
		}

		if to == StatusCancelled {
			for _, it := range o.Items {
				if err := inventory.Release(ctx, tx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}

		now := s.now().UTC()
		if err := tx.SetOrderStatus(ctx, orderID, to, in.TrackingNumber, in.EstimatedDelivery, now); err != nil {
			return err
		}
		o.Status = to
		o.UpdatedAt = now
		if in.TrackingNumber != nil {
			o.TrackingNumber = *in.TrackingNumber
		}
		if in.EstimatedDelivery != nil {
			o.EstimatedDelivery = in.EstimatedDelivery
		}
		ord = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.OrderStatusChanged(ctx, OrderStatusChangedEvent{
		OrderID:    ord.ID,
		FromStatus: from,
		ToStatus:   to,
	})
	return ord, nil
}

// CancelOrder is sugar for a transition to CANCELLED. Authorization (who may
// cancel, from which status) is the caller layer's precondition.
func (s *Service) CancelOrder(ctx context.Context, orderID string) error {
	_, err := s.TransitionStatus(ctx, orderID, StatusCancelled, TransitionInput{})
	return err
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var ord *Order
	err := s.store.View(ctx, func(tx Tx) error {
		o, err := tx.Order(ctx, orderID)
		if err != nil {
			return err
		}
		ord = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ord, nil
}
