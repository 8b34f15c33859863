package moviedb

// genreSlugs maps TMDB movie genre identifiers to catalog genre slugs.
// "TV Movie" (10770) has no catalog equivalent and is omitted.
var genreSlugs = map[int]string{
	28:    "action",
	12:    "adventure",
	16:    "animation",
	35:    "comedy",
	80:    "crime",
	99:    "documentary",
	18:    "drama",
	10751: "family",
	14:    "fantasy",
	36:    "history",
	27:    "horror",
	10402: "music",
	9648:  "mystery",
	10749: "romance",
	878:   "science-fiction",
	53:    "thriller",
	10752: "war",
	37:    "western",
}

// GenreSlugs converts TMDB genre identifiers to catalog genre slugs,
// preserving order, dropping unknown identifiers and duplicates.
// Returns nil when nothing maps.
func GenreSlugs(ids []int) []string {
	var slugs []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		slug, ok := genreSlugs[id]
		if !ok || seen[slug] {
			continue
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}
	return slugs
}
