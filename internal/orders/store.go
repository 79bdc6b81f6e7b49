package orders

import (
	"context"
	"time"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/catalog"
)

// Tx is the persistence context a single core operation runs against. All
// reads-for-decision within one CreateOrder or TransitionStatus call happen
// through one Tx, never against a stale cache. It includes the inventory
// ledger's slice (ProductForUpdate, SetStock).
type Tx interface {
	// Product is a plain (unlocked) read used during draft validation.
	Product(ctx context.Context, productID string) (catalog.Product, error)

	// ProductForUpdate locks the product row until the transaction ends.
	ProductForUpdate(ctx context.Context, productID string) (catalog.Product, error)
	SetStock(ctx context.Context, productID string, stock int) error

	InsertOrder(ctx context.Context, o *Order) error
	InsertItems(ctx context.Context, items []OrderItem) error

	Order(ctx context.Context, orderID string) (*Order, error)
	// OrderForUpdate locks the order row so concurrent transitions of the same
	// order serialize on the read-check-write of status.
	OrderForUpdate(ctx context.Context, orderID string) (*Order, error)
	SetOrderStatus(ctx context.Context, orderID string, st Status, trackingNumber *string, estimatedDelivery *time.Time, updatedAt time.Time) error
}

// Store provides transaction scopes. Update is all-or-nothing: if the callback
// returns an error nothing it did is visible.
type Store interface {
	View(ctx context.Context, fn func(Tx) error) error
	Update(ctx context.Context, fn func(Tx) error) error
}
