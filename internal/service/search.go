package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/matineeapp/matinee-server/internal/archive"
	"github.com/matineeapp/matinee-server/internal/catalog"
	domainerrors "github.com/matineeapp/matinee-server/internal/errors"
	"github.com/matineeapp/matinee-server/internal/search"
)

// SearchService bridges the catalog and the Bleve index. Browse pages
// feed it as they load, and films are re-indexed when their
// enrichment settles, so the index accumulates every film the server
// has seen with the richest facts it has for each.
type SearchService struct {
	index    *search.FilmIndex
	snapshot *catalog.Snapshot
	logger   *slog.Logger
}

// NewSearchService creates a search service.
func NewSearchService(index *search.FilmIndex, snapshot *catalog.Snapshot, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:    index,
		snapshot: snapshot,
		logger:   logger,
	}
}

// Search runs a query against the local film index.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, domainerrors.Validation("search query is required")
	}
	return s.index.Search(ctx, params)
}

// IndexItems indexes a freshly fetched catalog page. The films carry
// no enrichment yet; ReindexFilm upgrades each document as its facts
// arrive.
func (s *SearchService) IndexItems(items []archive.Item) error {
	if len(items) == 0 {
		return nil
	}

	docs := make([]*search.FilmDocument, 0, len(items))
	for i := range items {
		film := catalog.Film{Item: items[i]}
		docs = append(docs, search.DocumentFromFilm(&film))
	}

	if err := s.index.IndexFilms(docs); err != nil {
		return fmt.Errorf("index films: %w", err)
	}

	s.logger.Debug("indexed catalog page", "films", len(docs))
	return nil
}

// ReindexFilm refreshes one film's document from the current
// snapshot, folding in settled enrichment. Films that already left
// the snapshot keep their last indexed form.
func (s *SearchService) ReindexFilm(identifier string) {
	film, ok := s.snapshot.Film(identifier)
	if !ok {
		return
	}

	if err := s.index.IndexFilm(search.DocumentFromFilm(&film)); err != nil {
		s.logger.Warn("film reindex failed", "identifier", identifier, "error", err)
	}
}

// DocumentCount reports the number of films in the index.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
