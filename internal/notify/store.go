package notify

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-marketplace-orders.git/internal/orders"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists notifications in the shared database.
type PGStore struct{ DB *pgxpool.Pool }

func (s *PGStore) BuyerOf(ctx context.Context, orderID string) (string, error) {
	var buyer string
	err := s.DB.QueryRow(ctx, `SELECT buyer_id FROM orders WHERE id=$1`, orderID).Scan(&buyer)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", orders.ErrOrderNotFound
	}
	return buyer, err
}

func (s *PGStore) Insert(ctx context.Context, n Notification) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO notifications(id, recipient, kind, order_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.Recipient, n.Kind, n.OrderID, n.Body, n.CreatedAt)
	return err
}
