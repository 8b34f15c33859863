package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/matineeapp/matinee-server/internal/catalog"
	domainerrors "github.com/matineeapp/matinee-server/internal/errors"
	"github.com/matineeapp/matinee-server/internal/media/posters"
	"github.com/matineeapp/matinee-server/internal/store"
	"github.com/matineeapp/matinee-server/internal/store/sqlite"
	"github.com/matineeapp/matinee-server/internal/validation"
)

// finishedThreshold marks a film watched once this fraction of it has
// played. Credits routinely run the last few minutes, so requiring
// the full duration would leave almost everything unfinished.
const finishedThreshold = 0.95

// defaultContinueWatchingLimit bounds the continue-watching shelf.
const defaultContinueWatchingLimit = 10

// ViewingService tracks the household's viewing state: playback
// progress for continue-watching and the favorites shelf. Both
// persist in SQLite and survive catalog page changes; snapshot data
// is only consulted to denormalize titles at write time.
type ViewingService struct {
	store     *sqlite.Store
	snapshot  *catalog.Snapshot
	pipeline  *posters.Pipeline
	validator *validation.Validator
	logger    *slog.Logger
}

// NewViewingService creates a viewing service.
func NewViewingService(
	store *sqlite.Store,
	snapshot *catalog.Snapshot,
	pipeline *posters.Pipeline,
	validator *validation.Validator,
	logger *slog.Logger,
) *ViewingService {
	return &ViewingService{
		store:     store,
		snapshot:  snapshot,
		pipeline:  pipeline,
		validator: validator,
		logger:    logger,
	}
}

// UpdateProgressRequest reports a playback position. The film
// identifier travels in the URL, not the body.
type UpdateProgressRequest struct {
	PositionSec int `json:"positionSec" validate:"gte=0,ltefield=DurationSec"`
	DurationSec int `json:"durationSec" validate:"gt=0"`
}

// ProgressResponse is the stored progress plus the derived fraction.
type ProgressResponse struct {
	FilmID       string     `json:"filmId"`
	Title        string     `json:"title,omitempty"`
	Year         int        `json:"year,omitempty"`
	PositionSec  int        `json:"positionSec"`
	DurationSec  int        `json:"durationSec"`
	Progress     float64    `json:"progress"`
	Finished     bool       `json:"finished"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
	LastPlayedAt time.Time  `json:"lastPlayedAt"`
}

// UpdateProgress records where playback stands for a film. The
// reported position always wins, forward or backward: scrubbing back
// must resume from the scrubbed point. Finished is sticky once the
// position crosses the threshold; only DeleteProgress resets it.
func (s *ViewingService) UpdateProgress(ctx context.Context, filmID string, req UpdateProgressRequest) (*ProgressResponse, error) {
	if filmID == "" {
		return nil, domainerrors.Validation("film identifier is required")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	progress, err := s.store.GetProgress(ctx, filmID)
	if err != nil {
		if !domainerrors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get progress: %w", err)
		}
		progress = &sqlite.PlaybackProgress{
			FilmID:    filmID,
			StartedAt: now,
		}
	}

	progress.PositionSec = req.PositionSec
	progress.DurationSec = req.DurationSec
	progress.LastPlayedAt = now
	progress.UpdatedAt = now

	if film, ok := s.snapshot.Film(filmID); ok {
		progress.Title = film.Title
		progress.Year = film.Year
	}

	if !progress.Finished && fraction(req.PositionSec, req.DurationSec) >= finishedThreshold {
		progress.Finished = true
		progress.FinishedAt = &now
	}

	if err := s.store.UpsertProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("store progress: %w", err)
	}

	s.logger.Debug("progress updated",
		"film_id", filmID,
		"position_sec", progress.PositionSec,
		"duration_sec", progress.DurationSec,
		"finished", progress.Finished,
	)

	return progressResponse(progress), nil
}

// GetProgress returns the stored progress for a film.
func (s *ViewingService) GetProgress(ctx context.Context, filmID string) (*ProgressResponse, error) {
	progress, err := s.store.GetProgress(ctx, filmID)
	if err != nil {
		return nil, err
	}
	return progressResponse(progress), nil
}

// ResetProgress removes all progress for a film.
func (s *ViewingService) ResetProgress(ctx context.Context, filmID string) error {
	return s.store.DeleteProgress(ctx, filmID)
}

// ContinueWatchingItem is a display-ready shelf entry: stored
// progress joined with the blurhash placeholder.
type ContinueWatchingItem struct {
	FilmID       string    `json:"filmId"`
	Title        string    `json:"title"`
	Year         int       `json:"year,omitempty"`
	PositionSec  int       `json:"positionSec"`
	DurationSec  int       `json:"durationSec"`
	Progress     float64   `json:"progress"`
	LastPlayedAt time.Time `json:"lastPlayedAt"`
	BlurHash     string    `json:"blurhash,omitempty"`
}

// ContinueWatching returns unfinished films, most recently played
// first.
func (s *ViewingService) ContinueWatching(ctx context.Context, limit int) ([]ContinueWatchingItem, error) {
	if limit <= 0 {
		limit = defaultContinueWatchingLimit
	}

	states, err := s.store.ListContinueWatching(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list continue watching: %w", err)
	}

	items := make([]ContinueWatchingItem, 0, len(states))
	for _, p := range states {
		items = append(items, ContinueWatchingItem{
			FilmID:       p.FilmID,
			Title:        p.Title,
			Year:         p.Year,
			PositionSec:  p.PositionSec,
			DurationSec:  p.DurationSec,
			Progress:     fraction(p.PositionSec, p.DurationSec),
			LastPlayedAt: p.LastPlayedAt,
			BlurHash:     s.pipeline.BlurHash(p.FilmID),
		})
	}
	return items, nil
}

// FavoriteItem is a display-ready favorites entry.
type FavoriteItem struct {
	FilmID   string    `json:"filmId"`
	Title    string    `json:"title"`
	Year     int       `json:"year,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
	BlurHash string    `json:"blurhash,omitempty"`
}

// AddFavorite marks a film as a favorite. The film must be on the
// current catalog page so its title can be denormalized; re-adding an
// existing favorite refreshes it.
func (s *ViewingService) AddFavorite(ctx context.Context, filmID string) (*FavoriteItem, error) {
	if filmID == "" {
		return nil, domainerrors.Validation("film identifier is required")
	}

	film, ok := s.snapshot.Film(filmID)
	if !ok {
		return nil, domainerrors.NotFound("film not in current catalog")
	}

	favorite := &sqlite.Favorite{
		FilmID:    filmID,
		Title:     film.Title,
		Year:      film.Year,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddFavorite(ctx, favorite); err != nil {
		return nil, fmt.Errorf("store favorite: %w", err)
	}

	s.logger.Debug("favorite added", "film_id", filmID, "title", film.Title)

	return &FavoriteItem{
		FilmID:   favorite.FilmID,
		Title:    favorite.Title,
		Year:     favorite.Year,
		AddedAt:  favorite.CreatedAt,
		BlurHash: s.pipeline.BlurHash(filmID),
	}, nil
}

// RemoveFavorite unmarks a film. Removing a film that was never a
// favorite is a no-op.
func (s *ViewingService) RemoveFavorite(ctx context.Context, filmID string) error {
	return s.store.RemoveFavorite(ctx, filmID)
}

// IsFavorite reports whether a film is on the favorites shelf.
func (s *ViewingService) IsFavorite(ctx context.Context, filmID string) (bool, error) {
	return s.store.IsFavorite(ctx, filmID)
}

// Favorites returns the favorites shelf, newest first.
func (s *ViewingService) Favorites(ctx context.Context) ([]FavoriteItem, error) {
	favorites, err := s.store.ListFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	items := make([]FavoriteItem, 0, len(favorites))
	for _, f := range favorites {
		items = append(items, FavoriteItem{
			FilmID:   f.FilmID,
			Title:    f.Title,
			Year:     f.Year,
			AddedAt:  f.CreatedAt,
			BlurHash: s.pipeline.BlurHash(f.FilmID),
		})
	}
	return items, nil
}

func fraction(position, duration int) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(position) / float64(duration)
}

func progressResponse(p *sqlite.PlaybackProgress) *ProgressResponse {
	return &ProgressResponse{
		FilmID:       p.FilmID,
		Title:        p.Title,
		Year:         p.Year,
		PositionSec:  p.PositionSec,
		DurationSec:  p.DurationSec,
		Progress:     fraction(p.PositionSec, p.DurationSec),
		Finished:     p.Finished,
		FinishedAt:   p.FinishedAt,
		LastPlayedAt: p.LastPlayedAt,
	}
}
