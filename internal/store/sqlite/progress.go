package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/matineeapp/matinee-server/internal/store"
)

// PlaybackProgress records how far into a film a viewer is.
// The instance serves one household, so progress is keyed by film alone.
// Title and year are denormalized so continue-watching renders even after
// the catalog page that produced the film has been replaced.
type PlaybackProgress struct {
	FilmID       string
	Title        string
	Year         int
	PositionSec  int
	DurationSec  int
	Finished     bool
	FinishedAt   *time.Time
	StartedAt    time.Time
	LastPlayedAt time.Time
	UpdatedAt    time.Time
}

// progressColumns is the ordered list of columns selected in progress queries.
// Must match the scan order in scanProgress.
const progressColumns = `film_id, title, year, position_sec, duration_sec, is_finished,
	finished_at, started_at, last_played_at, updated_at`

// scanProgress scans a sql.Row (or sql.Rows via its Scan method) into a PlaybackProgress.
func scanProgress(scanner interface{ Scan(dest ...any) error }) (*PlaybackProgress, error) {
	var p PlaybackProgress

	var (
		isFinished int
		finishedAt sql.NullString
		startedAt  string
		lastPlayed string
		updatedAt  string
	)

	err := scanner.Scan(
		&p.FilmID,
		&p.Title,
		&p.Year,
		&p.PositionSec,
		&p.DurationSec,
		&isFinished,
		&finishedAt,
		&startedAt,
		&lastPlayed,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Finished = isFinished != 0

	// Parse nullable timestamp.
	p.FinishedAt, err = parseNullableTime(finishedAt)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	p.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, err
	}
	p.LastPlayedAt, err = parseTime(lastPlayed)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// UpsertProgress creates or replaces playback progress for a film.
func (s *Store) UpsertProgress(ctx context.Context, progress *PlaybackProgress) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO playback_progress (
			film_id, title, year, position_sec, duration_sec, is_finished,
			finished_at, started_at, last_played_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		progress.FilmID,
		progress.Title,
		progress.Year,
		progress.PositionSec,
		progress.DurationSec,
		boolToInt(progress.Finished),
		nullTimeString(progress.FinishedAt),
		formatTime(progress.StartedAt),
		formatTime(progress.LastPlayedAt),
		formatTime(progress.UpdatedAt),
	)
	return err
}

// GetProgress retrieves playback progress for a film.
// Returns store.ErrNotFound if no progress has been recorded.
func (s *Store) GetProgress(ctx context.Context, filmID string) (*PlaybackProgress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM playback_progress WHERE film_id = ?`, filmID)

	progress, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// DeleteProgress removes playback progress for a film.
// This operation is idempotent.
func (s *Store) DeleteProgress(ctx context.Context, filmID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM playback_progress WHERE film_id = ?`, filmID)
	return err
}

// ListContinueWatching returns in-progress films ordered by most recently
// played, up to limit. Finished films and films never actually started
// are excluded.
func (s *Store) ListContinueWatching(ctx context.Context, limit int) ([]*PlaybackProgress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+progressColumns+`
		FROM playback_progress
		WHERE is_finished = 0 AND position_sec > 0
		ORDER BY last_played_at DESC
		LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*PlaybackProgress
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, progress)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return states, nil
}
