package genre

// Uncategorized is the sentinel slug applied to films whose raw subject
// tags contain no recognized genre.
const Uncategorized = "uncategorized"

// GenreSeed defines a genre in the default tree.
type GenreSeed struct {
	Name     string
	Slug     string
	Children []GenreSeed
}

// DefaultGenres is the default genre taxonomy for a public-domain film
// catalog. Skews toward what the archives actually hold: serials,
// B-westerns, atomic-age science fiction, silent era.
var DefaultGenres = []GenreSeed{
	{
		Name: "Action",
		Slug: "action",
		Children: []GenreSeed{
			{Name: "Swashbuckler", Slug: "swashbuckler"},
			{Name: "Martial Arts", Slug: "martial-arts"},
		},
	},
	{
		Name: "Adventure",
		Slug: "adventure",
		Children: []GenreSeed{
			{Name: "Serial", Slug: "serial"},
			{Name: "Jungle Adventure", Slug: "jungle-adventure"},
		},
	},
	{
		Name: "Animation",
		Slug: "animation",
		Children: []GenreSeed{
			{Name: "Cartoon", Slug: "cartoon"},
			{Name: "Stop Motion", Slug: "stop-motion"},
		},
	},
	{
		Name: "Comedy",
		Slug: "comedy",
		Children: []GenreSeed{
			{Name: "Slapstick", Slug: "slapstick"},
			{Name: "Screwball", Slug: "screwball"},
			{Name: "Parody", Slug: "parody"},
		},
	},
	{
		Name: "Crime",
		Slug: "crime",
		Children: []GenreSeed{
			{Name: "Film Noir", Slug: "film-noir"},
			{Name: "Gangster", Slug: "gangster"},
			{Name: "Heist", Slug: "heist"},
		},
	},
	{
		Name: "Documentary",
		Slug: "documentary",
		Children: []GenreSeed{
			{Name: "Newsreel", Slug: "newsreel"},
			{Name: "Nature", Slug: "nature-documentary"},
		},
	},
	{
		Name: "Drama",
		Slug: "drama",
		Children: []GenreSeed{
			{Name: "Melodrama", Slug: "melodrama"},
			{Name: "Courtroom", Slug: "courtroom"},
			{Name: "Social Drama", Slug: "social-drama"},
		},
	},
	{
		Name: "Family",
		Slug: "family",
	},
	{
		Name: "Fantasy",
		Slug: "fantasy",
	},
	{
		Name: "History",
		Slug: "history",
	},
	{
		Name: "Horror",
		Slug: "horror",
		Children: []GenreSeed{
			{Name: "Gothic Horror", Slug: "gothic-horror"},
			{Name: "Monster", Slug: "monster"},
			{Name: "Zombie", Slug: "zombie"},
			{Name: "Psychological Horror", Slug: "psychological-horror"},
		},
	},
	{
		Name: "Music",
		Slug: "music",
		Children: []GenreSeed{
			{Name: "Musical", Slug: "musical"},
		},
	},
	{
		Name: "Mystery",
		Slug: "mystery",
		Children: []GenreSeed{
			{Name: "Detective", Slug: "detective"},
			{Name: "Whodunit", Slug: "whodunit"},
		},
	},
	{
		Name: "Romance",
		Slug: "romance",
	},
	{
		Name: "Science Fiction",
		Slug: "science-fiction",
		Children: []GenreSeed{
			{Name: "Alien Invasion", Slug: "alien-invasion"},
			{Name: "Atomic Age", Slug: "atomic-age"},
			{Name: "Space Opera", Slug: "space-opera"},
			{Name: "Time Travel", Slug: "time-travel"},
			{Name: "Dystopian", Slug: "dystopian"},
		},
	},
	{
		Name: "Short",
		Slug: "short",
	},
	{
		Name: "Silent",
		Slug: "silent",
	},
	{
		Name: "Thriller",
		Slug: "thriller",
		Children: []GenreSeed{
			{Name: "Spy", Slug: "spy"},
		},
	},
	{
		Name: "War",
		Slug: "war",
	},
	{
		Name: "Western",
		Slug: "western",
		Children: []GenreSeed{
			{Name: "B-Western", Slug: "b-western"},
			{Name: "Spaghetti Western", Slug: "spaghetti-western"},
		},
	},
	{
		Name: "Uncategorized",
		Slug: Uncategorized,
	},
}

// canonicalNames maps every slug in the default tree to its display name.
//
//nolint:gochecknoglobals // Derived lookup built once from the static tree
var canonicalNames = buildNames(DefaultGenres)

func buildNames(seeds []GenreSeed) map[string]string {
	names := make(map[string]string)
	var walk func([]GenreSeed)
	walk = func(gs []GenreSeed) {
		for _, g := range gs {
			names[g.Slug] = g.Name
			walk(g.Children)
		}
	}
	walk(seeds)
	return names
}

// Known reports whether slug is part of the default taxonomy.
func Known(slug string) bool {
	_, ok := canonicalNames[slug]
	return ok
}

// DisplayName returns the display name for a canonical slug, or the
// empty string when the slug is not part of the taxonomy.
func DisplayName(slug string) string {
	return canonicalNames[slug]
}
