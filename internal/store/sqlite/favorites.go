package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/matineeapp/matinee-server/internal/store"
)

// Favorite marks a film the household wants to find again. Title and year
// are denormalized so the favorites list renders even when the film is not
// in the current catalog snapshot.
type Favorite struct {
	FilmID    string
	Title     string
	Year      int
	CreatedAt time.Time
}

// scanFavorite scans a sql.Row (or sql.Rows via its Scan method) into a Favorite.
func scanFavorite(scanner interface{ Scan(dest ...any) error }) (*Favorite, error) {
	var f Favorite

	var createdAt string

	err := scanner.Scan(
		&f.FilmID,
		&f.Title,
		&f.Year,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	f.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// AddFavorite creates or replaces a favorite.
// Re-adding an existing favorite refreshes its denormalized fields but
// keeps it idempotent from the caller's point of view.
func (s *Store) AddFavorite(ctx context.Context, favorite *Favorite) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO favorites (film_id, title, year, created_at)
		VALUES (?, ?, ?, ?)`,
		favorite.FilmID,
		favorite.Title,
		favorite.Year,
		formatTime(favorite.CreatedAt),
	)
	return err
}

// RemoveFavorite removes a favorite.
// This operation is idempotent.
func (s *Store) RemoveFavorite(ctx context.Context, filmID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE film_id = ?`, filmID)
	return err
}

// GetFavorite retrieves a favorite by film ID.
// Returns store.ErrNotFound if the film is not a favorite.
func (s *Store) GetFavorite(ctx context.Context, filmID string) (*Favorite, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT film_id, title, year, created_at FROM favorites WHERE film_id = ?`, filmID)

	favorite, err := scanFavorite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return favorite, nil
}

// IsFavorite reports whether a film is favorited.
func (s *Store) IsFavorite(ctx context.Context, filmID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE film_id = ?`, filmID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListFavorites returns all favorites, newest first.
func (s *Store) ListFavorites(ctx context.Context) ([]*Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT film_id, title, year, created_at FROM favorites ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []*Favorite
	for rows.Next() {
		favorite, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, favorite)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return favorites, nil
}
