package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/chalets-du-lac/api/internal/model"
)

// ErrChaletOccupied is returned when assigning a client to a chalet that is
// already booked. The conditional write closes the race between two staff
// devices assigning the same chalet.
var ErrChaletOccupied = errors.New("chalet already occupied")

// ListChalets returns every chalet sorted by number. Numbers are numeric
// strings, so ordering is done numerically in Go rather than lexically in SQL.
func (s *Store) ListChalets(ctx context.Context) ([]model.Chalet, error) {
	return s.listChalets(ctx, "SELECT number, booked, client_id FROM chalets")
}

// ListBookedChalets returns the occupied chalets sorted by number, the set a
// new order may be billed to.
func (s *Store) ListBookedChalets(ctx context.Context) ([]model.Chalet, error) {
	return s.listChalets(ctx, "SELECT number, booked, client_id FROM chalets WHERE booked = true")
}

func (s *Store) listChalets(ctx context.Context, query string) ([]model.Chalet, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list chalets: %w", err)
	}
	defer rows.Close()

	var chalets []model.Chalet
	for rows.Next() {
		var c model.Chalet
		if err := rows.Scan(&c.Number, &c.Booked, &c.ClientID); err != nil {
			return nil, fmt.Errorf("scan chalet: %w", err)
		}
		chalets = append(chalets, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(chalets, func(i, j int) bool {
		a, errA := strconv.Atoi(chalets[i].Number)
		b, errB := strconv.Atoi(chalets[j].Number)
		if errA != nil || errB != nil {
			return chalets[i].Number < chalets[j].Number
		}
		return a < b
	})
	return chalets, nil
}

// GetChalet fetches one chalet. Returns pgx.ErrNoRows when absent.
func (s *Store) GetChalet(ctx context.Context, number string) (model.Chalet, error) {
	var c model.Chalet
	err := s.pool.QueryRow(ctx,
		"SELECT number, booked, client_id FROM chalets WHERE number = $1", number).
		Scan(&c.Number, &c.Booked, &c.ClientID)
	if err != nil {
		return model.Chalet{}, err
	}
	return c, nil
}

// AssignChalet attaches a client to an unoccupied chalet and sets its booked
// flag. Returns ErrChaletOccupied when the chalet is already assigned and
// pgx.ErrNoRows when it does not exist.
func (s *Store) AssignChalet(ctx context.Context, number, clientID string) (model.Chalet, error) {
	var c model.Chalet
	err := s.pool.QueryRow(ctx,
		`UPDATE chalets SET booked = true, client_id = $2
		 WHERE number = $1 AND booked = false
		 RETURNING number, booked, client_id`,
		number, clientID).
		Scan(&c.Number, &c.Booked, &c.ClientID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Chalet{}, fmt.Errorf("assign chalet: %w", err)
	}

	// The conditional update matched nothing: missing chalet or occupied.
	if _, getErr := s.GetChalet(ctx, number); getErr != nil {
		return model.Chalet{}, getErr
	}
	return model.Chalet{}, ErrChaletOccupied
}

// ReleaseChalet clears the occupancy flag and client, the final step of
// account closing. Returns pgx.ErrNoRows when the chalet does not exist.
func (s *Store) ReleaseChalet(ctx context.Context, number string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE chalets SET booked = false, client_id = NULL WHERE number = $1", number)
	if err != nil {
		return fmt.Errorf("release chalet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CreateChalet registers a chalet number. Used by seeding.
func (s *Store) CreateChalet(ctx context.Context, number string) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO chalets (number) VALUES ($1) ON CONFLICT (number) DO NOTHING", number)
	if err != nil {
		return fmt.Errorf("create chalet: %w", err)
	}
	return nil
}
