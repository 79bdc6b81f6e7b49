package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PGStore implements Store on a pgx pool. Row locks (SELECT ... FOR UPDATE)
// serialize conflicting stock mutations and concurrent transitions of the
// same order.
type PGStore struct{ DB *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{DB: db} }

func (s *PGStore) View(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PGStore) Update(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct{ tx pgx.Tx }

const productCols = `id, supplier_id, name, price::text, stock, eligibility, created_at, updated_at`

func (t *pgTx) product(ctx context.Context, productID, suffix string) (catalog.Product, error) {
	var p catalog.Product
	var price string
	err := t.tx.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`+suffix, productID).
		Scan(&p.ID, &p.SupplierID, &p.Name, &price, &p.Stock, &p.Eligibility, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return catalog.Product{}, fmt.Errorf("parse price: %w", err)
	}
	return p, nil
}

func (t *pgTx) Product(ctx context.Context, productID string) (catalog.Product, error) {
	return t.product(ctx, productID, ``)
}

func (t *pgTx) ProductForUpdate(ctx context.Context, productID string) (catalog.Product, error) {
	return t.product(ctx, productID, ` FOR UPDATE`)
}

func (t *pgTx) SetStock(ctx context.Context, productID string, stock int) error {
	ct, err := t.tx.Exec(ctx, `UPDATE products SET stock=$2, updated_at=now() WHERE id=$1`, productID, stock)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return catalog.ErrNotFound
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders(id, order_number, buyer_id, status, total_amount,
		                   shipping_address, billing_address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10)`,
		o.ID, o.Number, o.BuyerID, o.Status, o.TotalAmount.String(),
		o.ShippingAddress, o.BillingAddress, o.Notes, o.CreatedAt, o.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key" {
		return ErrDuplicateOrderNumber
	}
	return err
}

func (t *pgTx) InsertItems(ctx context.Context, items []OrderItem) error {
	for _, it := range items {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, qty, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric)`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice.String(), it.Subtotal.String())
		if err != nil {
			return err
		}
	}
	return nil
}

const orderCols = `id, order_number, buyer_id, status, total_amount::text,
	shipping_address, billing_address, notes, tracking_number, estimated_delivery,
	created_at, updated_at`

func (t *pgTx) order(ctx context.Context, orderID, suffix string) (*Order, error) {
	var o Order
	var total string
	err := t.tx.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`+suffix, orderID).
		Scan(&o.ID, &o.Number, &o.BuyerID, &o.Status, &total,
			&o.ShippingAddress, &o.BillingAddress, &o.Notes, &o.TrackingNumber, &o.EstimatedDelivery,
			&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	rows, err := t.tx.Query(ctx, `
		SELECT id, order_id, product_id, qty, unit_price::text, subtotal::text
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it OrderItem
		var price, subtotal string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &price, &subtotal); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse unit price: %w", err)
		}
		if it.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("parse subtotal: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (t *pgTx) Order(ctx context.Context, orderID string) (*Order, error) {
	return t.order(ctx, orderID, ``)
}

func (t *pgTx) OrderForUpdate(ctx context.Context, orderID string) (*Order, error) {
	return t.order(ctx, orderID, ` FOR UPDATE`)
}

func (t *pgTx) SetOrderStatus(ctx context.Context, orderID string, st Status, trackingNumber *string, estimatedDelivery *time.Time, updatedAt time.Time) error {
	ct, err := t.tx.Exec(ctx, `
		UPDATE orders
		SET status=$2,
		    tracking_number=COALESCE($3, tracking_number),
		    estimated_delivery=COALESCE($4, estimated_delivery),
		    updated_at=$5
		WHERE id=$1`,
		orderID, st, trackingNumber, estimatedDelivery, updatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrOrderNotFound
	}
	return nil
}
