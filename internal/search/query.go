package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters
	GenreSlugs []string // Filter by exact genre slugs
	MinYear    int
	MaxYear    int
	MinRuntime int // Minutes
	MaxRuntime int // Minutes

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "title", "year", "rating", "recent"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool // Include genre facet counts in results
	Highlight     bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"tookMs"`
	Hits   []FilmHit    `json:"hits"`
	Facets SearchFacets `json:"facets,omitempty"`
}

// FilmHit represents a single search result.
type FilmHit struct {
	ID           string            `json:"id"`
	Score        float64           `json:"score"`
	Name         string            `json:"name"`
	MatchedTitle string            `json:"matchedTitle,omitempty"`
	Year         int               `json:"year,omitempty"`
	Runtime      int               `json:"runtime,omitempty"`
	Rating       float64           `json:"rating,omitempty"`
	GenreSlugs   []string          `json:"genreSlugs,omitempty"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Genres []FacetCount `json:"genres,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *FilmIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("genre_slugs", bleve.NewFacetRequest("genre_slugs", 25))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("matched_title")
	}

	// Request stored fields
	searchRequest.Fields = []string{
		"id", "name", "matched_title", "year", "runtime", "rating", "genre_slugs",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]FilmHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		filmHit := FilmHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if n, ok := hit.Fields["name"].(string); ok {
			filmHit.Name = n
		}
		if mt, ok := hit.Fields["matched_title"].(string); ok {
			filmHit.MatchedTitle = mt
		}
		if y, ok := hit.Fields["year"].(float64); ok {
			filmHit.Year = int(y)
		}
		if r, ok := hit.Fields["runtime"].(float64); ok {
			filmHit.Runtime = int(r)
		}
		if r, ok := hit.Fields["rating"].(float64); ok {
			filmHit.Rating = r
		}
		// Bleve returns a bare string for single-valued fields and a
		// slice once there is more than one value.
		switch slugs := hit.Fields["genre_slugs"].(type) {
		case string:
			filmHit.GenreSlugs = []string{slugs}
		case []interface{}:
			for _, v := range slugs {
				if slug, ok := v.(string); ok {
					filmHit.GenreSlugs = append(filmHit.GenreSlugs, slug)
				}
			}
		}

		if len(hit.Fragments) > 0 {
			filmHit.Highlights = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					filmHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, filmHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query: the archive title and the matched external
	// title are both fair targets, with the archive title weighted
	// higher. Fuzzy and prefix variants add typo tolerance and
	// as-you-type behavior.
	if params.Query != "" {
		textQueries := []query.Query{}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		matchedMatch := bleve.NewMatchQuery(params.Query)
		matchedMatch.SetField("matched_title")
		matchedMatch.SetBoost(2.0)
		textQueries = append(textQueries, matchedMatch)

		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		descMatch.SetBoost(0.5)
		textQueries = append(textQueries, descMatch)

		overviewMatch := bleve.NewMatchQuery(params.Query)
		overviewMatch.SetField("overview")
		overviewMatch.SetBoost(0.5)
		textQueries = append(textQueries, overviewMatch)

		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Genre slug filter (exact match, OR across slugs)
	if len(params.GenreSlugs) > 0 {
		genreQueries := make([]query.Query, len(params.GenreSlugs))
		for i, slug := range params.GenreSlugs {
			gq := bleve.NewTermQuery(slug)
			gq.SetField("genre_slugs")
			genreQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(genreQueries...))
	}

	// Year range filter
	if params.MinYear > 0 || params.MaxYear > 0 {
		min := float64(params.MinYear)
		max := float64(params.MaxYear)
		if params.MaxYear == 0 {
			max = 3000 // Far future
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("year")
		queries = append(queries, rangeQuery)
	}

	// Runtime range filter
	if params.MinRuntime > 0 || params.MaxRuntime > 0 {
		min := float64(params.MinRuntime)
		max := float64(params.MaxRuntime)
		if params.MaxRuntime == 0 {
			max = 24 * 60 // Nothing runs longer than a day
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("runtime")
		queries = append(queries, rangeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "title", "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "year":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-year", "name"})
		} else {
			req.SortBy([]string{"year", "name"})
		}
	case "rating":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"rating", "name"})
		} else {
			req.SortBy([]string{"-rating", "name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"indexed_at"})
		} else {
			req.SortBy([]string{"-indexed_at"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	facets := SearchFacets{}

	if genreFacet, ok := result.Facets["genre_slugs"]; ok {
		for _, term := range genreFacet.Terms.Terms() {
			facets.Genres = append(facets.Genres, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
