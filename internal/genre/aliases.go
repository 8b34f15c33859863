package genre

// CanonicalAliases maps slugified variations to canonical slugs. Keys
// are in slug form because NormalizeToSlugs slugifies before lookup.
// Archive subject tags are frequently plural ("comedies", "westerns"),
// so plural forms get entries too.
var CanonicalAliases = map[string][]string{
	// Science fiction variations
	"sci-fi":       {"science-fiction"},
	"scifi":        {"science-fiction"},
	"sf":           {"science-fiction"},
	"sci-fi-films": {"science-fiction"},

	// Combined tags -> multiple genres
	"sci-fi-horror":          {"science-fiction", "horror"},
	"science-fiction-horror": {"science-fiction", "horror"},
	"horror-sci-fi":          {"horror", "science-fiction"},
	"crime-drama":            {"crime", "drama"},
	"romantic-comedy":        {"romance", "comedy"},
	"romcom":                 {"romance", "comedy"},
	"mystery-thriller":       {"mystery", "thriller"},
	"action-adventure":       {"action", "adventure"},

	// Noir
	"noir":       {"film-noir"},
	"noir-films": {"film-noir"},

	// Thriller variations
	"suspense":  {"thriller"},
	"espionage": {"spy"},

	// Horror variations
	"creature-feature": {"monster"},
	"kaiju":            {"monster"},
	"vampire":          {"gothic-horror"},
	"zombies":          {"zombie"},
	"scary":            {"horror"},
	"horror-films":     {"horror"},

	// Documentary variations
	"documentaries":     {"documentary"},
	"educational":       {"documentary"},
	"educational-films": {"documentary"},
	"newsreels":         {"newsreel"},
	"propaganda":        {"documentary"},

	// Silent era
	"silent-film":  {"silent"},
	"silent-films": {"silent"},
	"silent-movie": {"silent"},

	// Serials and shorts
	"serials":      {"serial"},
	"shorts":       {"short"},
	"short-films":  {"short"},
	"short-film":   {"short"},
	"movie-serial": {"serial"},

	// Animation
	"animated":       {"animation"},
	"animated-films": {"animation"},
	"cartoons":       {"cartoon"},
	"anime":          {"animation"},

	// Plural and adjectival forms
	"comedies":       {"comedy"},
	"dramas":         {"drama"},
	"westerns":       {"western"},
	"musicals":       {"musical"},
	"thrillers":      {"thriller"},
	"mysteries":      {"mystery"},
	"romances":       {"romance"},
	"war-films":      {"war"},
	"war-movies":     {"war"},
	"spy-films":      {"spy"},
	"gangster-films": {"gangster"},
	"biopic":         {"drama"},
	"melodramas":     {"melodrama"},

	// Sword-and-sandal pictures
	"sword-and-sandal": {"adventure"},
	"peplum":           {"adventure"},
}

// NormalizeToSlugs takes a raw genre tag and returns canonical slug(s).
// The tag is slugified, resolved through the alias table, then checked
// against the default taxonomy. Unrecognized tags return nil.
func NormalizeToSlugs(raw string) []string {
	slug := Slugify(raw)

	if canonical, ok := CanonicalAliases[slug]; ok {
		return canonical
	}

	if Known(slug) {
		return []string{slug}
	}

	return nil
}
