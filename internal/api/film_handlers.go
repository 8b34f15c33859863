package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/matineeapp/matinee-server/internal/service"
)

func (s *Server) registerFilmRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "browseFilms",
		Method:      http.MethodGet,
		Path:        "/api/v1/films",
		Summary:     "Browse films",
		Description: "Returns one catalog page with whatever enrichment has settled. Changing query, sort, page, pageSize, or genre refetches from the archive; bucket filters the loaded page locally.",
		Tags:        []string{"Films"},
	}, s.handleBrowseFilms)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFilm",
		Method:      http.MethodGet,
		Path:        "/api/v1/films/{id}",
		Summary:     "Get film",
		Description: "Returns one film from the current catalog page with its enrichment facts and viewing links",
		Tags:        []string{"Films"},
	}, s.handleGetFilm)
}

// === DTOs ===

// BrowseInput contains query parameters for browsing the catalog.
type BrowseInput struct {
	Query    string `query:"query" doc:"Free-text archive search"`
	Sort     string `query:"sort" doc:"Sort order: popularity, year, title, archive-rating, or rating"`
	Page     int    `query:"page" doc:"Page number, 1-based"`
	PageSize int    `query:"pageSize" doc:"Films per page, max 200"`
	Genre    string `query:"genre" doc:"Canonical genre slug filter"`
	Bucket   string `query:"bucket" doc:"Runtime bucket: all, feature, or short"`
}

// BrowseOutput wraps the browse response for Huma. The body is the
// service response directly: it is already wire-shaped, and the films
// on it update over SSE keyed by the epoch it carries.
type BrowseOutput struct {
	Body service.BrowseResponse
}

// GetFilmInput contains parameters for fetching one film.
type GetFilmInput struct {
	ID string `path:"id" doc:"Archive identifier"`
}

// FilmDetailOutput wraps the film detail response for Huma.
type FilmDetailOutput struct {
	Body service.FilmDetail
}

// === Handlers ===

func (s *Server) handleBrowseFilms(ctx context.Context, input *BrowseInput) (*BrowseOutput, error) {
	result, err := s.services.Browse.Browse(ctx, service.BrowseRequest{
		Query:    input.Query,
		Sort:     input.Sort,
		Page:     input.Page,
		PageSize: input.PageSize,
		Genre:    input.Genre,
		Bucket:   input.Bucket,
	})
	if err != nil {
		return nil, err
	}

	return &BrowseOutput{Body: *result}, nil
}

func (s *Server) handleGetFilm(ctx context.Context, input *GetFilmInput) (*FilmDetailOutput, error) {
	detail, err := s.services.Browse.Film(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &FilmDetailOutput{Body: *detail}, nil
}
