package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chalets-du-lac/api/internal/model"
)

const orderColumns = "id, chalet, service, items, created_at, updated_at"

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	if err := row.Scan(&o.ID, &o.Chalet, &o.Service, &o.Items, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// CreateOrder commits a new order and returns it with its generated ID.
// Never retried internally: a failed create leaves nothing behind and the
// caller's in-progress state intact.
func (s *Store) CreateOrder(ctx context.Context, chalet, service string, items model.OrderItems) (model.Order, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO orders (id, chalet, service, items)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+orderColumns,
		uuid.New(), chalet, service, items)
	return scanOrder(row)
}

// GetOrder fetches a committed order for the edit flow. Returns pgx.ErrNoRows
// when absent; callers treat that as "nothing to prefill".
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	return scanOrder(row)
}

// UpdateOrder overwrites a committed order's content and stamps updated_at.
// Returns pgx.ErrNoRows when absent.
func (s *Store) UpdateOrder(ctx context.Context, id uuid.UUID, chalet, service string, items model.OrderItems) (model.Order, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE orders
		 SET chalet = $2, service = $3, items = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+orderColumns,
		id, chalet, service, items)
	return scanOrder(row)
}

// DeleteOrder removes a committed order. Idempotent: deleting an already
// deleted ID is not an error.
func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM orders WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// ListOrdersByChalet returns a chalet's committed orders newest first, the
// shape the consumption aggregator consumes.
func (s *Store) ListOrdersByChalet(ctx context.Context, chalet string) ([]model.Order, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE chalet = $1 ORDER BY created_at DESC",
		chalet)
	if err != nil {
		return nil, fmt.Errorf("list orders by chalet: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListOrdersByService returns every committed order taken under one service,
// newest first. Feeds the per-service history screens and the breakfast
// roll-up.
func (s *Store) ListOrdersByService(ctx context.Context, service string) ([]model.Order, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE service = $1 ORDER BY created_at DESC",
		service)
	if err != nil {
		return nil, fmt.Errorf("list orders by service: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// DeleteOrdersByChalet removes every order on a chalet's tab, the bulk
// cleanup step of account closing.
func (s *Store) DeleteOrdersByChalet(ctx context.Context, chalet string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM orders WHERE chalet = $1", chalet); err != nil {
		return fmt.Errorf("delete orders by chalet: %w", err)
	}
	return nil
}
