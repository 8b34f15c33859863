package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/matineeapp/matinee-server/internal/genre"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns the canonical genre taxonomy as a tree",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)
}

// === DTOs ===

// GenreNode is one genre in the taxonomy tree.
type GenreNode struct {
	Name     string      `json:"name" doc:"Display name"`
	Slug     string      `json:"slug" doc:"URL-safe slug used in browse filters"`
	Children []GenreNode `json:"children,omitempty" doc:"Subgenres"`
}

// ListGenresResponse contains the genre taxonomy.
type ListGenresResponse struct {
	Genres []GenreNode `json:"genres" doc:"Top-level genres"`
}

// ListGenresOutput wraps the genre list response for Huma.
type ListGenresOutput struct {
	Body ListGenresResponse
}

// === Handlers ===

// The taxonomy is static, so this handler is a pure reshape of the
// seed tree. Films reference it by slug in their genre lists.
func (s *Server) handleListGenres(_ context.Context, _ *struct{}) (*ListGenresOutput, error) {
	return &ListGenresOutput{
		Body: ListGenresResponse{Genres: genreNodes(genre.DefaultGenres)},
	}, nil
}

func genreNodes(seeds []genre.GenreSeed) []GenreNode {
	nodes := make([]GenreNode, len(seeds))
	for i, seed := range seeds {
		nodes[i] = GenreNode{
			Name:     seed.Name,
			Slug:     seed.Slug,
			Children: genreNodes(seed.Children),
		}
	}
	return nodes
}
