package inventory_test

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/catalog"
	"github.com/ariefcatur/go-marketplace-orders.git/internal/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	products map[string]catalog.Product
}

func (f *fakeTx) ProductForUpdate(ctx context.Context, productID string) (catalog.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeTx) SetStock(ctx context.Context, productID string, stock int) error {
	p := f.products[productID]
	p.Stock = stock
	f.products[productID] = p
	return nil
}

func newFakeTx(stock int, e catalog.Eligibility) *fakeTx {
	return &fakeTx{products: map[string]catalog.Product{
		"p1": {ID: "p1", Name: "widget", Price: decimal.RequireFromString("9.99"), Stock: stock, Eligibility: e},
	}}
}

func TestReserve(t *testing.T) {
	tx := newFakeTx(10, catalog.EligibilityApproved)
	require.NoError(t, inventory.Reserve(context.Background(), tx, "p1", 3))
	assert.Equal(t, 7, tx.products["p1"].Stock)
}

func TestReserveInsufficientStock(t *testing.T) {
	tx := newFakeTx(2, catalog.EligibilityApproved)
	err := inventory.Reserve(context.Background(), tx, "p1", 3)

	var short *inventory.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 2, short.Available)
	assert.Equal(t, 3, short.Requested)
	assert.Equal(t, 2, tx.products["p1"].Stock, "stock untouched on failure")
}

func TestReserveExactStockDrainsToZero(t *testing.T) {
	tx := newFakeTx(3, catalog.EligibilityApproved)
	require.NoError(t, inventory.Reserve(context.Background(), tx, "p1", 3))
	assert.Equal(t, 0, tx.products["p1"].Stock)

	err := inventory.Reserve(context.Background(), tx, "p1", 1)
	var short *inventory.InsufficientStockError
	assert.ErrorAs(t, err, &short)
}

func TestReserveRejectsBadQuantity(t *testing.T) {
	tx := newFakeTx(10, catalog.EligibilityApproved)
	assert.Error(t, inventory.Reserve(context.Background(), tx, "p1", 0))
	assert.Error(t, inventory.Reserve(context.Background(), tx, "p1", -1))
	assert.Equal(t, 10, tx.products["p1"].Stock)
}

func TestReserveUnknownProduct(t *testing.T) {
	tx := newFakeTx(10, catalog.EligibilityApproved)
	err := inventory.Reserve(context.Background(), tx, "ghost", 1)
	var nf *inventory.ProductNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.ProductID)
}

func TestReserveNotOrderable(t *testing.T) {
	for _, e := range []catalog.Eligibility{catalog.EligibilityPending, catalog.EligibilityRejected} {
		tx := newFakeTx(10, e)
		err := inventory.Reserve(context.Background(), tx, "p1", 1)
		var nf *inventory.ProductNotFoundError
		assert.ErrorAs(t, err, &nf, "eligibility %s", e)
	}
}

func TestRelease(t *testing.T) {
	tx := newFakeTx(2, catalog.EligibilityApproved)
	require.NoError(t, inventory.Release(context.Background(), tx, "p1", 5))
	assert.Equal(t, 7, tx.products["p1"].Stock)
}

func TestReleaseIgnoresEligibility(t *testing.T) {
	// a product rejected after the order was placed still gets its stock back
	tx := newFakeTx(0, catalog.EligibilityRejected)
	require.NoError(t, inventory.Release(context.Background(), tx, "p1", 4))
	assert.Equal(t, 4, tx.products["p1"].Stock)
}

func TestReleaseRejectsBadQuantity(t *testing.T) {
	tx := newFakeTx(5, catalog.EligibilityApproved)
	assert.Error(t, inventory.Release(context.Background(), tx, "p1", 0))
	assert.Equal(t, 5, tx.products["p1"].Stock)
}
