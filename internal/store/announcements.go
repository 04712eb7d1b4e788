package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chalets-du-lac/api/internal/model"
)

// ListAnnouncements returns all announcements newest first.
func (s *Store) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, title, content, created_at FROM announcements ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var announcements []model.Announcement
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

// CreateAnnouncement inserts a new announcement and returns it.
func (s *Store) CreateAnnouncement(ctx context.Context, title, content string) (model.Announcement, error) {
	var a model.Announcement
	err := s.pool.QueryRow(ctx,
		`INSERT INTO announcements (id, title, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, content, created_at`,
		uuid.New(), title, content).
		Scan(&a.ID, &a.Title, &a.Content, &a.CreatedAt)
	if err != nil {
		return model.Announcement{}, err
	}
	return a, nil
}

// DeleteAnnouncement removes an announcement. Returns pgx.ErrNoRows when
// absent.
func (s *Store) DeleteAnnouncement(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM announcements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
