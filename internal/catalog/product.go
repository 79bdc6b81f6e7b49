package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Eligibility string

const (
	EligibilityPending  Eligibility = "PENDING"
	EligibilityApproved Eligibility = "APPROVED"
	EligibilityRejected Eligibility = "REJECTED"
)

func (e Eligibility) Valid() bool {
	switch e {
	case EligibilityPending, EligibilityApproved, EligibilityRejected:
		return true
	}
	return false
}

type Product struct {
	ID          string          `json:"id"`
	SupplierID  string          `json:"supplier_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Eligibility Eligibility     `json:"eligibility"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Orderable: only approved products may appear in a cart.
func (p Product) Orderable() bool { return p.Eligibility == EligibilityApproved }
