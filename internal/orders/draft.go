package orders

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/catalog"
	"github.com/ariefcatur/go-marketplace-orders.git/internal/inventory"
	"github.com/shopspring/decimal"
)

type CreateOrderInput struct {
	BuyerID         string
	Cart            []CartLine
	ShippingAddress string
	BillingAddress  string
	Notes           string
}

// Draft is a priced, validated order that has not been committed: no writes
// have happened and no order number is assigned yet.
type Draft struct {
	BuyerID         string
	ShippingAddress string
	BillingAddress  string
	Notes           string
	Lines           []DraftLine
	Total           decimal.Decimal
}

type DraftLine struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// BuildDraft validates the cart against one consistent snapshot and prices it.
// Validation is fail-fast: the first invalid line fails the whole cart. Unit
// prices are snapshotted here; the commit never re-reads them.
func BuildDraft(ctx context.Context, tx Tx, in CreateOrderInput) (*Draft, error) {
	if in.BuyerID == "" {
		return nil, &ValidationError{Reason: "missing buyer"}
	}
	if in.ShippingAddress == "" {
		return nil, &ValidationError{Reason: "missing shipping address"}
	}
	if len(in.Cart) == 0 {
		return nil, &ValidationError{Reason: "empty cart"}
	}

	d := &Draft{
		BuyerID:         in.BuyerID,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		Notes:           in.Notes,
		Lines:           make([]DraftLine, 0, len(in.Cart)),
		Total:           decimal.Zero,
	}
	for _, line := range in.Cart {
		if line.Quantity <= 0 {
			return nil, &ValidationError{Reason: "quantity must be positive"}
		}
		p, err := tx.Product(ctx, line.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, &ProductNotAvailableError{ProductID: line.ProductID}
		}
		if err != nil {
			return nil, err
		}
		if !p.Orderable() {
			return nil, &ProductNotAvailableError{ProductID: line.ProductID}
		}
		if p.Stock < line.Quantity {
			return nil, &inventory.InsufficientStockError{ProductID: line.ProductID, Available: p.Stock, Requested: line.Quantity}
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		d.Lines = append(d.Lines, DraftLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
			Subtotal:  subtotal,
		})
		d.Total = d.Total.Add(subtotal)
	}
	return d, nil
}
