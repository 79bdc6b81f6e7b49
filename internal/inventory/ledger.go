// Package inventory is the single source of truth for product stock
// adjustments. Reserve and Release operate inside a caller-owned transaction
// that holds a row lock on the product, so concurrent orders against the same
// product serialize on the stock check.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/catalog"
)

// Tx is the slice of the persistence transaction the ledger needs. The row
// returned by ProductForUpdate stays locked until the transaction ends.
type Tx interface {
	ProductForUpdate(ctx context.Context, productID string) (catalog.Product, error)
	SetStock(ctx context.Context, productID string, stock int) error
}

// ProductNotFoundError: the product does not exist or is not orderable.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found or not orderable", e.ProductID)
}

// InsufficientStockError carries available vs requested so the caller can
// report exactly how short the stock is.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available=%d requested=%d", e.ProductID, e.Available, e.Requested)
}

// Reserve decrements available stock by qty, floored at zero. The product must
// exist and be approved.
func Reserve(ctx context.Context, tx Tx, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve qty must be positive, got %d", qty)
	}
	p, err := tx.ProductForUpdate(ctx, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		return &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return err
	}
	if !p.Orderable() {
		return &ProductNotFoundError{ProductID: productID}
	}
	if p.Stock < qty {
		return &InsufficientStockError{ProductID: productID, Available: p.Stock, Requested: qty}
	}
	return tx.SetStock(ctx, productID, p.Stock-qty)
}

// Release restocks qty units. NOT idempotent: calling twice doubles the
// restock. At-most-once is the order workflow's job (terminal cancelled state
// guards the release), not this primitive's.
func Release(ctx context.Context, tx Tx, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release qty must be positive, got %d", qty)
	}
	p, err := tx.ProductForUpdate(ctx, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		return &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return err
	}
	return tx.SetStock(ctx, productID, p.Stock+qty)
}
