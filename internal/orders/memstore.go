package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/catalog"
)

// MemStore is an in-memory Store with the same transactional contract as
// PGStore: Update callbacks run serialized against a staged copy of the state,
// and nothing becomes visible unless the callback succeeds. It backs the unit
// tests and local development without Postgres.
type MemStore struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
	orders   map[string]*Order
	numbers  map[string]bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		products: map[string]catalog.Product{},
		orders:   map[string]*Order{},
		numbers:  map[string]bool{},
	}
}

func (s *MemStore) SeedProduct(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// ProductStock reads current stock outside any transaction (test helper).
func (s *MemStore) ProductStock(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products[productID].Stock
}

func (s *MemStore) View(ctx context.Context, fn func(Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{products: s.products, orders: s.orders, numbers: s.numbers, readonly: true})
}

func (s *MemStore) Update(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := &memTx{
		products: make(map[string]catalog.Product, len(s.products)),
		orders:   make(map[string]*Order, len(s.orders)),
		numbers:  make(map[string]bool, len(s.numbers)),
	}
	for id, p := range s.products {
		staged.products[id] = p
	}
	for id, o := range s.orders {
		staged.orders[id] = cloneOrder(o)
	}
	for n := range s.numbers {
		staged.numbers[n] = true
	}

	if err := fn(staged); err != nil {
		return err // staged copy discarded, nothing applied
	}
	s.products = staged.products
	s.orders = staged.orders
	s.numbers = staged.numbers
	return nil
}

func cloneOrder(o *Order) *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	if o.EstimatedDelivery != nil {
		t := *o.EstimatedDelivery
		c.EstimatedDelivery = &t
	}
	return &c
}

type memTx struct {
	products map[string]catalog.Product
	orders   map[string]*Order
	numbers  map[string]bool
	readonly bool
}

var errReadOnlyTx = errors.New("write in read-only transaction")

func (t *memTx) Product(ctx context.Context, productID string) (catalog.Product, error) {
	p, ok := t.products[productID]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (t *memTx) ProductForUpdate(ctx context.Context, productID string) (catalog.Product, error) {
	return t.Product(ctx, productID)
}

func (t *memTx) SetStock(ctx context.Context, productID string, stock int) error {
	if t.readonly {
		return errReadOnlyTx
	}
	p, ok := t.products[productID]
	if !ok {
		return catalog.ErrNotFound
	}
	p.Stock = stock
	p.UpdatedAt = time.Now().UTC()
	t.products[productID] = p
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, o *Order) error {
	if t.readonly {
		return errReadOnlyTx
	}
	if t.numbers[o.Number] {
		return ErrDuplicateOrderNumber
	}
	c := cloneOrder(o)
	c.Items = nil // items arrive via InsertItems, as with the DB
	t.orders[o.ID] = c
	t.numbers[o.Number] = true
	return nil
}

func (t *memTx) InsertItems(ctx context.Context, items []OrderItem) error {
	if t.readonly {
		return errReadOnlyTx
	}
	for _, it := range items {
		o, ok := t.orders[it.OrderID]
		if !ok {
			return ErrOrderNotFound
		}
		o.Items = append(o.Items, it)
	}
	return nil
}

func (t *memTx) Order(ctx context.Context, orderID string) (*Order, error) {
	o, ok := t.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (t *memTx) OrderForUpdate(ctx context.Context, orderID string) (*Order, error) {
	return t.Order(ctx, orderID)
}

func (t *memTx) SetOrderStatus(ctx context.Context, orderID string, st Status, trackingNumber *string, estimatedDelivery *time.Time, updatedAt time.Time) error {
	if t.readonly {
		return errReadOnlyTx
	}
	o, ok := t.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = st
	if trackingNumber != nil {
		o.TrackingNumber = *trackingNumber
	}
	if estimatedDelivery != nil {
		eta := *estimatedDelivery
		o.EstimatedDelivery = &eta
	}
	o.UpdatedAt = updatedAt
	return nil
}
