package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/matineeapp/matinee-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchFilms",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search films",
		Description: "Full-text search over every film this server has seen, with genre, year, and runtime filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the local film index.
type SearchInput struct {
	Query      string `query:"q" doc:"Search query"`
	Genres     string `query:"genres" doc:"Comma-separated canonical genre slugs"`
	MinYear    int    `query:"minYear" doc:"Earliest release year"`
	MaxYear    int    `query:"maxYear" doc:"Latest release year"`
	MinRuntime int    `query:"minRuntime" doc:"Minimum runtime in minutes"`
	MaxRuntime int    `query:"maxRuntime" doc:"Maximum runtime in minutes"`
	Limit      int    `query:"limit" doc:"Maximum hits to return, default 20"`
	Offset     int    `query:"offset" doc:"Pagination offset"`
	Sort       string `query:"sort" doc:"Sort by relevance, title, year, rating, or recent"`
	Order      string `query:"order" doc:"Sort direction: asc or desc"`
	Facets     bool   `query:"facets" doc:"Include genre facet counts"`
}

// SearchOutput wraps the search result for Huma. The index result is
// already wire-shaped: hits carry both the archive title and, once
// enrichment has settled, the matched external title.
type SearchOutput struct {
	Body search.SearchResult
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.MinYear = input.MinYear
	params.MaxYear = input.MaxYear
	params.MinRuntime = input.MinRuntime
	params.MaxRuntime = input.MaxRuntime
	params.IncludeFacets = input.Facets

	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}
	if input.Sort != "" {
		params.SortBy = input.Sort
	}
	if input.Order != "" {
		params.SortOrder = input.Order
	}

	for g := range strings.SplitSeq(input.Genres, ",") {
		if g = strings.TrimSpace(g); g != "" {
			params.GenreSlugs = append(params.GenreSlugs, g)
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}
