package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chalets-du-lac/api/internal/model"
)

// CreateActivityParams carries a validated activity document.
type CreateActivityParams struct {
	Name        string
	Description string
	Location    string
	StartsAt    time.Time
}

const activityColumns = "id, name, description, location, starts_at"

func scanActivity(row pgx.Row) (model.Activity, error) {
	var a model.Activity
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Location, &a.StartsAt); err != nil {
		return model.Activity{}, err
	}
	return a, nil
}

// ListActivities returns all activities ordered by start time.
func (s *Store) ListActivities(ctx context.Context) ([]model.Activity, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+activityColumns+" FROM activities ORDER BY starts_at")
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// GetActivity fetches one activity. Returns pgx.ErrNoRows when absent.
func (s *Store) GetActivity(ctx context.Context, id uuid.UUID) (model.Activity, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE id = $1", id)
	return scanActivity(row)
}

// CreateActivity inserts a new activity and returns it.
func (s *Store) CreateActivity(ctx context.Context, arg CreateActivityParams) (model.Activity, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO activities (id, name, description, location, starts_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+activityColumns,
		uuid.New(), arg.Name, arg.Description, arg.Location, arg.StartsAt)
	return scanActivity(row)
}

// UpdateActivity overwrites an existing activity. Returns pgx.ErrNoRows when
// absent.
func (s *Store) UpdateActivity(ctx context.Context, id uuid.UUID, arg CreateActivityParams) (model.Activity, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE activities
		 SET name = $2, description = $3, location = $4, starts_at = $5
		 WHERE id = $1
		 RETURNING `+activityColumns,
		id, arg.Name, arg.Description, arg.Location, arg.StartsAt)
	return scanActivity(row)
}

// DeleteActivity removes an activity. Returns pgx.ErrNoRows when absent.
func (s *Store) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM activities WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
