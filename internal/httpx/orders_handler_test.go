package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/catalog"
	"github.com/ariefcatur/go-marketplace-orders.git/internal/httpx"
	"github.com/ariefcatur/go-marketplace-orders.git/internal/orders"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, products ...catalog.Product) (*httptest.Server, *orders.Service, *orders.MemStore) {
	t.Helper()
	store := orders.NewMemStore()
	for _, p := range products {
		store.SeedProduct(p)
	}
	svc := orders.NewService(store, nil)

	router := httpx.NewRouter()
	h := &httpx.OrdersHandler{Svc: svc}
	h.Register(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, svc, store
}

func widget(id string, stock int) catalog.Product {
	now := time.Now().UTC()
	return catalog.Product{
		ID:          id,
		SupplierID:  "supplier-1",
		Name:        "widget",
		Price:       decimal.RequireFromString("20.00"),
		Stock:       stock,
		Eligibility: catalog.EligibilityApproved,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func buyerHeaders(id string) map[string]string {
	return map[string]string{"X-Actor-Id": id, "X-Actor-Role": "buyer"}
}

func TestCreateOrderEndpoint(t *testing.T) {
	srv, _, store := newTestServer(t, widget("p1", 10))

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", httpx.CreateOrderReq{
		Items:           []orders.CartLine{{ProductID: "p1", Quantity: 3}},
		ShippingAddress: "1 Main St",
	}, buyerHeaders("buyer-1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var ord orders.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ord))
	assert.Equal(t, orders.StatusPending, ord.Status)
	assert.Equal(t, "buyer-1", ord.BuyerID)
	assert.True(t, ord.TotalAmount.Equal(decimal.RequireFromString("60.00")))
	assert.Equal(t, 7, store.ProductStock("p1"))
}

func TestCreateOrderEndpointRejectsMissingActor(t *testing.T) {
	srv, _, _ := newTestServer(t, widget("p1", 10))

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", httpx.CreateOrderReq{
		Items:           []orders.CartLine{{ProductID: "p1", Quantity: 1}},
		ShippingAddress: "1 Main St",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrderEndpointInsufficientStock(t *testing.T) {
	srv, _, _ := newTestServer(t, widget("p1", 10))

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", httpx.CreateOrderReq{
		Items:           []orders.CartLine{{ProductID: "p1", Quantity: 11}},
		ShippingAddress: "1 Main St",
	}, buyerHeaders("buyer-1"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetOrderEndpoint(t *testing.T) {
	srv, svc, _ := newTestServer(t, widget("p1", 10))

	ord, err := svc.CreateOrder(context.Background(), orders.CreateOrderInput{
		BuyerID:         "buyer-1",
		ShippingAddress: "1 Main St",
		Cart:            []orders.CartLine{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodGet, srv.URL+"/orders/"+ord.ID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got orders.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, ord.Number, got.Number)

	resp = doJSON(t, http.MethodGet, srv.URL+"/orders/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTransitionEndpointInvalid(t *testing.T) {
	srv, svc, _ := newTestServer(t, widget("p1", 10))

	ord, err := svc.CreateOrder(context.Background(), orders.CreateOrderInput{
		BuyerID:         "buyer-1",
		ShippingAddress: "1 Main St",
		Cart:            []orders.CartLine{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders/"+ord.ID+"/status",
		httpx.TransitionReq{Status: "shipped"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/orders/"+ord.ID+"/status",
		httpx.TransitionReq{Status: "confirmed"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got orders.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, orders.StatusConfirmed, got.Status)
}

func TestCancelEndpointAuthorization(t *testing.T) {
	srv, svc, store := newTestServer(t, widget("p1", 10))

	ord, err := svc.CreateOrder(context.Background(), orders.CreateOrderInput{
		BuyerID:         "buyer-1",
		ShippingAddress: "1 Main St",
		Cart:            []orders.CartLine{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)

	// someone else's buyer account may not cancel
	resp := doJSON(t, http.MethodPost, srv.URL+"/orders/"+ord.ID+"/cancel", nil, buyerHeaders("buyer-2"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// the owner may, while still pending
	resp = doJSON(t, http.MethodPost, srv.URL+"/orders/"+ord.ID+"/cancel", nil, buyerHeaders("buyer-1"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, store.ProductStock("p1"))
}

func TestCancelEndpointBuyerOnlyWhilePending(t *testing.T) {
	srv, svc, _ := newTestServer(t, widget("p1", 10))

	ord, err := svc.CreateOrder(context.Background(), orders.CreateOrderInput{
		BuyerID:         "buyer-1",
		ShippingAddress: "1 Main St",
		Cart:            []orders.CartLine{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.TransitionStatus(context.Background(), ord.ID, orders.StatusConfirmed, orders.TransitionInput{})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders/"+ord.ID+"/cancel", nil, buyerHeaders("buyer-1"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// a privileged actor may cancel any non-terminal order
	resp = doJSON(t, http.MethodPost, srv.URL+"/orders/"+ord.ID+"/cancel", nil,
		map[string]string{"X-Actor-Id": "admin-1", "X-Actor-Role": "admin"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := svc.GetOrder(context.Background(), ord.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, got.Status)
}
