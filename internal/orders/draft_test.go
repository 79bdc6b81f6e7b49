package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/catalog"
	"github.com/ariefcatur/go-marketplace-orders.git/internal/inventory"
	"github.com/ariefcatur/go-marketplace-orders.git/internal/orders"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T, products ...catalog.Product) *orders.MemStore {
	t.Helper()
	store := orders.NewMemStore()
	for _, p := range products {
		store.SeedProduct(p)
	}
	return store
}

func approvedProduct(id, price string, stock int) catalog.Product {
	now := time.Now().UTC()
	return catalog.Product{
		ID:          id,
		SupplierID:  "supplier-1",
		Name:        "product " + id,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		Eligibility: catalog.EligibilityApproved,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func buildDraft(t *testing.T, store *orders.MemStore, in orders.CreateOrderInput) (*orders.Draft, error) {
	t.Helper()
	var d *orders.Draft
	err := store.View(context.Background(), func(tx orders.Tx) error {
		var err error
		d, err = orders.BuildDraft(context.Background(), tx, in)
		return err
	})
	return d, err
}

func TestBuildDraftPricesCart(t *testing.T) {
	store := seedStore(t,
		approvedProduct("p1", "20.00", 10),
		approvedProduct("p2", "3.50", 4),
	)

	d, err := buildDraft(t, store, orders.CreateOrderInput{
		BuyerID:         "buyer-1",
		ShippingAddress: "1 Main St",
		Cart: []orders.CartLine{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p2", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, d.Lines, 2)

	assert.True(t, d.Lines[0].UnitPrice.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, d.Lines[0].Subtotal.Equal(decimal.RequireFromString("60.00")))
	assert.True(t, d.Lines[1].Subtotal.Equal(decimal.RequireFromString("7.00")))
	assert.True(t, d.Total.Equal(decimal.RequireFromString("67.00")))

	// drafting writes nothing
	assert.Equal(t, 10, store.ProductStock("p1"))
	assert.Equal(t, 4, store.ProductStock("p2"))
}

func TestBuildDraftInputShape(t *testing.T) {
	store := seedStore(t, approvedProduct("p1", "5.00", 10))

	cases := []struct {
		name string
		in   orders.CreateOrderInput
	}{
		{"missing buyer", orders.CreateOrderInput{ShippingAddress: "x", Cart: []orders.CartLine{{ProductID: "p1", Quantity: 1}}}},
		{"missing shipping address", orders.CreateOrderInput{BuyerID: "b", Cart: []orders.CartLine{{ProductID: "p1", Quantity: 1}}}},
		{"empty cart", orders.CreateOrderInput{BuyerID: "b", ShippingAddress: "x"}},
		{"zero quantity", orders.CreateOrderInput{BuyerID: "b", ShippingAddress: "x", Cart: []orders.CartLine{{ProductID: "p1", Quantity: 0}}}},
		{"negative quantity", orders.CreateOrderInput{BuyerID: "b", ShippingAddress: "x", Cart: []orders.CartLine{{ProductID: "p1", Quantity: -2}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildDraft(t, store, tc.in)
			var ve *orders.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestBuildDraftProductNotAvailable(t *testing.T) {
	pending := approvedProduct("p2", "5.00", 10)
	pending.Eligibility = catalog.EligibilityPending
	rejected := approvedProduct("p3", "5.00", 10)
	rejected.Eligibility = catalog.EligibilityRejected
	store := seedStore(t, approvedProduct("p1", "5.00", 10), pending, rejected)

	for _, pid := range []string{"missing", "p2", "p3"} {
		_, err := buildDraft(t, store, orders.CreateOrderInput{
			BuyerID:         "b",
			ShippingAddress: "x",
			Cart:            []orders.CartLine{{ProductID: pid, Quantity: 1}},
		})
		var pna *orders.ProductNotAvailableError
		require.ErrorAs(t, err, &pna, "product %s", pid)
		assert.Equal(t, pid, pna.ProductID)
	}
}

func TestBuildDraftInsufficientStock(t *testing.T) {
	store := seedStore(t, approvedProduct("p1", "5.00", 10))

	_, err := buildDraft(t, store, orders.CreateOrderInput{
		BuyerID:         "b",
		ShippingAddress: "x",
		Cart:            []orders.CartLine{{ProductID: "p1", Quantity: 11}},
	})
	var short *inventory.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, "p1", short.ProductID)
	assert.Equal(t, 10, short.Available)
	assert.Equal(t, 11, short.Requested)
}

func TestBuildDraftFailsFast(t *testing.T) {
	store := seedStore(t,
		approvedProduct("p1", "5.00", 10),
		approvedProduct("p3", "5.00", 0),
	)

	// line 2 is invalid; line 3's shortage is never reached
	_, err := buildDraft(t, store, orders.CreateOrderInput{
		BuyerID:         "b",
		ShippingAddress: "x",
		Cart: []orders.CartLine{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 1},
			{ProductID: "p3", Quantity: 1},
		},
	})
	var pna *orders.ProductNotAvailableError
	require.ErrorAs(t, err, &pna)
	assert.Equal(t, "p2", pna.ProductID)
}
