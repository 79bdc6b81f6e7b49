package orders

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrConcurrentStockConflict: a reservation failed at commit time after
	// draft validation had passed. The caller must rebuild the draft against
	// fresh stock and resubmit, never blindly retry the stale draft.
	ErrConcurrentStockConflict = errors.New("concurrent stock conflict")

	// ErrDuplicateOrderNumber: generated order number collided with a
	// committed order. Retryable with a fresh number.
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
)

// ValidationError covers cart-level shape problems (empty cart, missing buyer
// or shipping address, non-positive quantity).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid order input: " + e.Reason }

// ProductNotAvailableError: the product is missing or not approved.
type ProductNotAvailableError struct {
	ProductID string
}

func (e *ProductNotAvailableError) Error() string {
	return fmt.Sprintf("product %s not available", e.ProductID)
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}
