package moviedb

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/matineeapp/matinee-server/internal/enrich"
)

// rawMovie mirrors one entry of a TMDB /search/movie response.
type rawMovie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	Overview     string  `json:"overview"`
	GenreIDs     []int   `json:"genre_ids"`
}

// SearchFilms searches the TMDB movie catalog and returns candidates
// in the provider's relevance order. A year above zero narrows the
// search to that primary release year.
func (c *Client) SearchFilms(ctx context.Context, query string, year int) ([]enrich.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, wrapError("searchFilms", query, ErrBadRequest)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("page", "1")
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}

	body, err := c.doRequest(ctx, "/search/movie", params)
	if err != nil {
		return nil, wrapError("searchFilms", query, err)
	}

	var resp struct {
		Results []rawMovie `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("searchFilms", query, fmt.Errorf("parse response: %w", err))
	}

	candidates := make([]enrich.Candidate, 0, len(resp.Results))
	for i := range resp.Results {
		m := &resp.Results[i]
		candidates = append(candidates, enrich.Candidate{
			ID:          m.ID,
			Title:       m.Title,
			PosterRef:   m.PosterPath,
			BackdropRef: m.BackdropPath,
			Rating:      m.VoteAverage,
			Overview:    m.Overview,
			GenreIDs:    m.GenreIDs,
			ReleaseDate: m.ReleaseDate,
		})
	}

	return candidates, nil
}
