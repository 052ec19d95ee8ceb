package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

const insertOrder = `
	INSERT INTO orders (id, status, total, email, created_at)
	VALUES (:id, :status, :total, :email, :created_at)`

// Lookup retrieves an order by id, ignoring case
func (s *Store) Lookup(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT id, status, total, email, created_at FROM orders WHERE LOWER(id) = LOWER($1)", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Create inserts a new order
func (s *Store) Create(ctx context.Context, order *models.Order) error {
	if _, err := s.db.NamedExecContext(ctx, insertOrder, order); err != nil {
		return fmt.Errorf("failed to insert order %s: %w", order.ID, err)
	}
	return nil
}

// SeedOrders inserts orders that are not present yet
func (s *Store) SeedOrders(ctx context.Context, orders []models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range orders {
		if _, err := tx.NamedExecContext(ctx, insertOrder+" ON CONFLICT (id) DO NOTHING", &orders[i]); err != nil {
			return fmt.Errorf("failed to seed order %s: %w", orders[i].ID, err)
		}
	}
	return tx.Commit()
}
