// Package enrich attaches external movie metadata to archive films.
// It owns the persistent match cache, the request de-duplicator, and
// the best-match heuristic that picks one candidate from a ranked
// provider response.
package enrich

import (
	"strconv"
	"strings"
)

// Key derives the cache and de-duplication key for a film:
// lowercase-trimmed title, "-", then the release year or "unknown".
// Two films with the same title and year collide on purpose and share
// one enrichment.
func Key(title string, year int) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if year > 0 {
		return t + "-" + strconv.Itoa(year)
	}
	return t + "-unknown"
}

// Match holds the external metadata attached to a film once a lookup
// resolves. A nil *Match in the cache is the explicit "looked up, no
// match" tombstone.
type Match struct {
	ExternalID  int     `json:"externalId"`
	Title       string  `json:"title"`
	PosterRef   string  `json:"posterRef,omitempty"`
	BackdropRef string  `json:"backdropRef,omitempty"`
	Rating      float64 `json:"rating"`
	Overview    string  `json:"overview,omitempty"`
	GenreIDs    []int   `json:"genreIds,omitempty"`
}

// Candidate is one ranked search result from the metadata provider.
type Candidate struct {
	ID          int
	Title       string
	PosterRef   string
	BackdropRef string
	Rating      float64
	Overview    string
	GenreIDs    []int
	ReleaseDate string
}

// BestMatch picks the candidate to attach for a normalized query title.
// Selection order: exact case-insensitive title match, then a
// containment match (either direction) in rank order, then the
// top-ranked candidate only when it carries a poster. Returns nil when
// no candidate qualifies.
//
// The exact pass keeps "Alien" from resolving to a higher-ranked
// "Aliens"; the poster condition on the last pass keeps text-only
// stubs from claiming a film.
func BestMatch(query string, candidates []Candidate) *Match {
	if len(candidates) == 0 {
		return nil
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	for _, c := range candidates {
		if strings.ToLower(strings.TrimSpace(c.Title)) == q {
			return matchFrom(c)
		}
	}

	for _, c := range candidates {
		t := strings.ToLower(strings.TrimSpace(c.Title))
		if t == "" {
			continue
		}
		if strings.Contains(t, q) || strings.Contains(q, t) {
			return matchFrom(c)
		}
	}

	if top := candidates[0]; top.PosterRef != "" {
		return matchFrom(top)
	}

	return nil
}

func matchFrom(c Candidate) *Match {
	return &Match{
		ExternalID:  c.ID,
		Title:       c.Title,
		PosterRef:   c.PosterRef,
		BackdropRef: c.BackdropRef,
		Rating:      c.Rating,
		Overview:    c.Overview,
		GenreIDs:    c.GenreIDs,
	}
}
