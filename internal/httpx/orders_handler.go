package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/inventory"
	"github.com/ariefcatur/go-marketplace-orders.git/internal/orders"
	"github.com/ariefcatur/go-marketplace-orders.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// Actor identity comes from the (trusted) auth layer in front of this
// service; we only read its headers.
const (
	headerActorID   = "X-Actor-Id"
	headerActorRole = "X-Actor-Role"

	roleAdmin    = "admin"
	roleSupplier = "supplier"
	roleBuyer    = "buyer"
)

type OrdersHandler struct {
	Svc   *orders.Service
	Redis *redis.Client
}

type CreateOrderReq struct {
	Items           []orders.CartLine `json:"items"`
	ShippingAddress string            `json:"shipping_address"`
	BillingAddress  string            `json:"billing_address"`
	Notes           string            `json:"notes"`
}

type TransitionReq struct {
	Status            string     `json:"status"`
	TrackingNumber    *string    `json:"tracking_number"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/status", h.transitionStatus)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps core errors onto status codes. Validation and
// workflow errors are the caller's fault (4xx); anything unrecognized is 5xx.
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *orders.ValidationError
	var pna *orders.ProductNotAvailableError
	var ist *inventory.InsufficientStockError
	var itr *orders.InvalidTransitionError
	switch {
	case errors.As(err, &ve), errors.As(err, &pna):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &ist):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrConcurrentStockConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "stock changed, please retry with a fresh cart"})
	case errors.As(err, &itr):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	actor := r.Header.Get(headerActorID)
	if actor == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing actor"})
		return
	}
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ord, err := h.Svc.CreateOrder(ctx, orders.CreateOrderInput{
		BuyerID:         actor,
		Cart:            req.Items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.cacheOrder(ctx, ord)
	writeJSON(w, http.StatusCreated, ord)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first, DB as truth
	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	ord, err := h.Svc.GetOrder(ctx, orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.cacheOrder(ctx, ord)
	writeJSON(w, http.StatusOK, ord)
}

func (h *OrdersHandler) transitionStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req TransitionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	to := orders.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	ord, err := h.Svc.TransitionStatus(ctx, orderID, to, orders.TransitionInput{
		TrackingNumber:    req.TrackingNumber,
		EstimatedDelivery: req.EstimatedDelivery,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.cacheOrder(ctx, ord)
	writeJSON(w, http.StatusOK, ord)
}

// cancelOrder enforces the cancellation authorization rule at this layer: a
// buyer may cancel only their own order while it is still PENDING; an admin
// may cancel from any non-terminal status. The workflow itself re-checks the
// transition under the row lock.
func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	actor := r.Header.Get(headerActorID)
	role := r.Header.Get(headerActorRole)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if role != roleAdmin {
		ord, err := h.Svc.GetOrder(ctx, orderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if role != roleBuyer || ord.BuyerID != actor || ord.Status != orders.StatusPending {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "not allowed to cancel this order"})
			return
		}
	}

	if err := h.Svc.CancelOrder(ctx, orderID); err != nil {
		writeDomainError(w, err)
		return
	}
	if ord, err := h.Svc.GetOrder(ctx, orderID); err == nil {
		h.cacheOrder(ctx, ord)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(orders.StatusCancelled)})
}

func (h *OrdersHandler) cacheOrder(ctx context.Context, ord *orders.Order) {
	if h.Redis == nil {
		return
	}
	b, err := json.Marshal(ord)
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, ord.ID)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}
