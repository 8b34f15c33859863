package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// View derives the visible film list from current state, never
// blocking on outstanding enrichment. Filter order: runtime bucket,
// then poster-known-missing exclusion, then genre. The poster
// exclusion applies only while enrichment is enabled and no text
// search is active; a search always shows every textual match, poster
// or not.
//
// Items arrive in source order, which already reflects every sort key
// except the external rating; that one is re-ranked here from the
// reported facts.
func (s *Snapshot) View(params ViewParams) []Film {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchActive := strings.TrimSpace(params.Search) != ""
	excludePosterless := params.EnrichmentEnabled && !searchActive

	films := make([]Film, 0, len(s.items))
	for i := range s.items {
		item := &s.items[i]
		if !params.Bucket.matches(item.Runtime) {
			continue
		}
		if excludePosterless && s.imageMissingLocked(item.Identifier) {
			continue
		}
		if params.Genre != "" && !slices.Contains(item.Genres, params.Genre) {
			continue
		}
		films = append(films, s.filmLocked(item))
	}

	if params.Sort == SortRating {
		// Stable: equal ratings keep their source order.
		slices.SortStableFunc(films, func(a, b Film) int {
			return cmp.Compare(b.rating(), a.rating())
		})
	}

	return films
}
