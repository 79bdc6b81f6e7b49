package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, supplier_id, name, price::text, stock, eligibility, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var price string
	err := row.Scan(&p.ID, &p.SupplierID, &p.Name, &price, &p.Stock, &p.Eligibility, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return Product{}, fmt.Errorf("parse price: %w", err)
	}
	return p, nil
}

// Create inserts a new product. New products always start PENDING and go
// through approval before they become orderable.
func (r *Repo) Create(ctx context.Context, supplierID, name string, price decimal.Decimal, stock int) (Product, error) {
	if stock < 0 {
		return Product{}, fmt.Errorf("negative stock")
	}
	id := uuid.NewString()
	row := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, supplier_id, name, price, stock, eligibility)
		VALUES ($1, $2, $3, $4::numeric, $5, 'PENDING')
		RETURNING `+productCols,
		id, supplierID, name, price.String(), stock)
	return scanProduct(row)
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update applies a supplier edit. Edits reset eligibility to PENDING so the
// product re-enters the approval queue.
func (r *Repo) Update(ctx context.Context, id, supplierID, name string, price decimal.Decimal, stock int) (Product, error) {
	if stock < 0 {
		return Product{}, fmt.Errorf("negative stock")
	}
	row := r.DB.QueryRow(ctx, `
		UPDATE products
		SET name=$3, price=$4::numeric, stock=$5, eligibility='PENDING', updated_at=now()
		WHERE id=$1 AND supplier_id=$2
		RETURNING `+productCols,
		id, supplierID, name, price.String(), stock)
	return scanProduct(row)
}

// SetEligibility is the admin approve/reject operation.
func (r *Repo) SetEligibility(ctx context.Context, id string, e Eligibility) (Product, error) {
	if !e.Valid() {
		return Product{}, fmt.Errorf("invalid eligibility %q", e)
	}
	row := r.DB.QueryRow(ctx, `
		UPDATE products SET eligibility=$2, updated_at=now()
		WHERE id=$1
		RETURNING `+productCols,
		id, e)
	return scanProduct(row)
}
