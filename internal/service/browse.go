// Package service provides the business logic layer for browsing,
// enriching, searching, and tracking public-domain films.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/matineeapp/matinee-server/internal/archive"
	"github.com/matineeapp/matinee-server/internal/catalog"
	"github.com/matineeapp/matinee-server/internal/enrich"
	domainerrors "github.com/matineeapp/matinee-server/internal/errors"
	"github.com/matineeapp/matinee-server/internal/media/posters"
	"github.com/matineeapp/matinee-server/internal/metadata/moviedb"
	"github.com/matineeapp/matinee-server/internal/sse"
	"github.com/matineeapp/matinee-server/internal/validation"
)

// enrichWorkers is the number of concurrent per-film enrichment
// workers per catalog page. Outbound metadata lookups are paced
// globally by the resolver regardless, so this mostly bounds parallel
// poster downloads.
const enrichWorkers = 4

// BrowseService owns the catalog snapshot and orchestrates a browse:
// fetch a page from the archive, install it as the current snapshot,
// kick off background enrichment for every film on it, and derive the
// visible list. Enrichment facts land on the snapshot and stream out
// over SSE as they settle; the browse response itself never waits for
// them.
type BrowseService struct {
	archive   *archive.Client
	moviedb   *moviedb.Client
	resolver  *enrich.Resolver
	snapshot  *catalog.Snapshot
	search    *SearchService
	pipeline  *posters.Pipeline
	sse       *sse.Manager
	validator *validation.Validator
	logger    *slog.Logger
	enabled   bool
	pageSize  int

	// fetchMu serializes archive fetches; lastFetch memoizes the
	// upstream params so identical browses reuse the snapshot.
	fetchMu   sync.Mutex
	lastFetch string
}

// BrowseDeps collects the collaborators a BrowseService composes.
type BrowseDeps struct {
	Archive           *archive.Client
	MovieDB           *moviedb.Client
	Resolver          *enrich.Resolver
	Snapshot          *catalog.Snapshot
	Search            *SearchService
	Pipeline          *posters.Pipeline
	SSE               *sse.Manager
	Validator         *validation.Validator
	Logger            *slog.Logger
	EnrichmentEnabled bool
	DefaultPageSize   int
}

// NewBrowseService creates a browse service.
func NewBrowseService(deps BrowseDeps) *BrowseService {
	pageSize := deps.DefaultPageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	return &BrowseService{
		archive:   deps.Archive,
		moviedb:   deps.MovieDB,
		resolver:  deps.Resolver,
		snapshot:  deps.Snapshot,
		search:    deps.Search,
		pipeline:  deps.Pipeline,
		sse:       deps.SSE,
		validator: deps.Validator,
		logger:    deps.Logger,
		enabled:   deps.EnrichmentEnabled,
		pageSize:  pageSize,
	}
}

// BrowseRequest selects and shapes one catalog page. Query, Sort,
// Page, PageSize, and Genre go upstream to the archive; Bucket is
// applied locally, as is the rating sort and the poster filter.
type BrowseRequest struct {
	Query    string `json:"query" validate:"max=200"`
	Sort     string `json:"sort" validate:"omitempty,oneof=popularity year title archive-rating rating"`
	Page     int    `json:"page" validate:"omitempty,gte=1"`
	PageSize int    `json:"pageSize" validate:"omitempty,gte=1,lte=200"`
	Genre    string `json:"genre" validate:"max=64"`
	Bucket   string `json:"bucket" validate:"omitempty,oneof=all feature short"`
}

// BrowseResponse is one browse result: the visible films plus the
// snapshot coordinates a client needs to correlate later SSE facts.
type BrowseResponse struct {
	Films             []catalog.Film `json:"films"`
	Total             int            `json:"total"`
	Page              int            `json:"page"`
	PageSize          int            `json:"pageSize"`
	Epoch             uint64         `json:"epoch"`
	EnrichmentEnabled bool           `json:"enrichmentEnabled"`
}

// Browse fetches (or reuses) the catalog page selected by req and
// returns the enrichment-aware view of it. A fetch failure surfaces
// as an upstream error and leaves the previous snapshot intact, so
// the client's retry re-issues the same fetch.
func (s *BrowseService) Browse(ctx context.Context, req BrowseRequest) (*BrowseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	s.applyDefaults(&req)

	epoch, err := s.ensureSnapshot(ctx, req)
	if err != nil {
		return nil, err
	}

	films := s.snapshot.View(catalog.ViewParams{
		Bucket:            catalog.Bucket(req.Bucket),
		Genre:             req.Genre,
		Search:            req.Query,
		Sort:              catalog.SortKey(req.Sort),
		EnrichmentEnabled: s.enabled,
	})

	return &BrowseResponse{
		Films:             films,
		Total:             s.snapshot.Total(),
		Page:              req.Page,
		PageSize:          req.PageSize,
		Epoch:             epoch,
		EnrichmentEnabled: s.enabled,
	}, nil
}

// Film returns one film from the current snapshot with whatever
// enrichment facts have settled, plus its blurhash placeholder when a
// poster has been stored.
func (s *BrowseService) Film(_ context.Context, identifier string) (*FilmDetail, error) {
	film, ok := s.snapshot.Film(identifier)
	if !ok {
		return nil, domainerrors.NotFound("film not in current catalog")
	}

	return &FilmDetail{
		Film:       film,
		BlurHash:   s.pipeline.BlurHash(identifier),
		DetailsURL: s.archive.DetailsURL(identifier),
		EmbedURL:   s.archive.EmbedURL(identifier),
	}, nil
}

// FilmDetail is a snapshot film plus the presentation extras the
// detail page needs.
type FilmDetail struct {
	catalog.Film
	BlurHash   string `json:"blurhash,omitempty"`
	DetailsURL string `json:"detailsUrl"`
	EmbedURL   string `json:"embedUrl"`
}

func (s *BrowseService) applyDefaults(req *BrowseRequest) {
	if req.Sort == "" {
		req.Sort = string(catalog.SortPopularity)
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = s.pageSize
	}
	if req.Bucket == "" {
		req.Bucket = string(catalog.BucketAll)
	}
}

// ensureSnapshot fetches a fresh page when the upstream params differ
// from the last successful fetch, and starts enrichment for it.
// Returns the snapshot epoch serving this browse.
func (s *BrowseService) ensureSnapshot(ctx context.Context, req BrowseRequest) (uint64, error) {
	key := fetchKey(req)

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	if key == s.lastFetch {
		return s.snapshot.Epoch(), nil
	}

	page, err := s.archive.FetchCatalog(ctx, archive.CatalogParams{
		Query:    req.Query,
		Sort:     catalog.SortKey(req.Sort).ArchiveClause(),
		Page:     req.Page,
		PageSize: req.PageSize,
		Genre:    req.Genre,
	})
	if err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeUpstream, "archive fetch failed")
	}

	epoch := s.snapshot.Replace(page.Items, page.Total)
	s.lastFetch = key

	s.logger.Info("catalog page loaded",
		"epoch", epoch,
		"items", len(page.Items),
		"total", page.Total,
		"query", req.Query,
		"sort", req.Sort,
		"page", req.Page,
	)

	if s.sse != nil {
		s.sse.Emit(sse.NewCatalogLoadedEvent(epoch, len(page.Items), page.Total))
	}

	if err := s.search.IndexItems(page.Items); err != nil {
		s.logger.Warn("catalog indexing failed", "epoch", epoch, "error", err)
	}

	// Enrichment outlives the browse request: facts for this epoch
	// keep landing after the response is written and reach clients
	// over SSE.
	go s.enrichPage(context.WithoutCancel(ctx), epoch, page.Items)

	return epoch, nil
}

// fetchKey identifies one upstream fetch. Bucket is absent on
// purpose: it is a local filter and must not force a refetch.
func fetchKey(req BrowseRequest) string {
	return fmt.Sprintf("%s|%s|%d|%d|%s",
		strings.TrimSpace(req.Query), req.Sort, req.Page, req.PageSize, req.Genre)
}

// enrichPage resolves metadata for every film on a page through a
// small worker pool. Workers bail out as soon as the snapshot moves
// on to a newer epoch; the resolver's cache writes are never wasted
// either way.
func (s *BrowseService) enrichPage(ctx context.Context, epoch uint64, items []archive.Item) {
	if !s.enabled || len(items) == 0 {
		return
	}

	jobs := make(chan archive.Item, len(items))
	var wg sync.WaitGroup

	for range enrichWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if s.snapshot.Epoch() != epoch {
					return
				}
				s.enrichFilm(ctx, epoch, item)
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)
	wg.Wait()

	s.logger.Debug("page enrichment settled", "epoch", epoch, "items", len(items))
}

// enrichFilm resolves one film, reports the outcome to the snapshot,
// and settles its poster. Lookup errors are logged and left
// unreported so the next page visit retries them.
func (s *BrowseService) enrichFilm(ctx context.Context, epoch uint64, item archive.Item) {
	match, err := s.resolver.Resolve(ctx, item.Title, item.Year)
	if err != nil {
		s.logger.Warn("enrichment lookup failed",
			"identifier", item.Identifier,
			"title", item.Title,
			"error", err,
		)
		return
	}

	if !s.snapshot.ReportMatch(epoch, item.Identifier, match) {
		return
	}
	s.search.ReindexFilm(item.Identifier)

	if match == nil {
		if s.sse != nil {
			s.sse.Emit(sse.NewFilmUnmatchedEvent(item.Identifier, epoch))
		}
		s.settleThumbnail(ctx, epoch, item.Identifier)
		return
	}

	if s.sse != nil {
		s.sse.Emit(sse.NewFilmMatchedEvent(item.Identifier, epoch, match))
	}

	if match.PosterRef == "" {
		s.settleThumbnail(ctx, epoch, item.Identifier)
		return
	}

	url := s.moviedb.ImageURL(match.PosterRef, posters.SizeMedium)
	result, err := s.pipeline.EnsurePoster(ctx, item.Identifier, url, posters.SizeMedium)
	if err != nil {
		s.logger.Warn("poster download failed",
			"identifier", item.Identifier,
			"error", err,
		)
		// The match itself already settled the image status as
		// available; the client falls back to the archive thumbnail.
		return
	}
	if s.sse != nil {
		s.sse.Emit(sse.NewPosterReadyEvent(item.Identifier, result.BlurHash))
	}
}

// settleThumbnail decides displayability for a film without an
// external poster by fetching the archive's thumbnail. Success stores
// it as the film's only poster variant; failure reports the film as
// poster-missing so the view can exclude it.
func (s *BrowseService) settleThumbnail(ctx context.Context, epoch uint64, identifier string) {
	result, err := s.pipeline.EnsurePoster(ctx, identifier,
		s.archive.ThumbnailURL(identifier), posters.SizeOriginal)
	if err != nil {
		s.snapshot.ReportImageStatus(epoch, identifier, false)
		if s.sse != nil {
			s.sse.Emit(sse.NewPosterMissingEvent(identifier, epoch))
		}
		return
	}

	s.snapshot.ReportImageStatus(epoch, identifier, true)
	if s.sse != nil {
		s.sse.Emit(sse.NewPosterReadyEvent(identifier, result.BlurHash))
	}
}
