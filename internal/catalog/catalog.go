// Package catalog holds the browsing state: the current page of films
// from the archive, the asynchronous enrichment facts reported against
// it, and the filter/sort pipeline that derives the visible list.
package catalog

import (
	"github.com/matineeapp/matinee-server/internal/archive"
	"github.com/matineeapp/matinee-server/internal/enrich"
)

// ImageStatus says whether a film has something displayable as a
// poster. It starts unknown and settles exactly once per snapshot,
// from either an external match carrying a poster reference or the
// thumbnail probe's verdict.
type ImageStatus string

const (
	ImageUnknown   ImageStatus = "unknown"
	ImageAvailable ImageStatus = "available"
	ImageMissing   ImageStatus = "missing"
)

// Film is a catalog item plus whatever enrichment has arrived for it.
// Match stays nil both before a lookup resolves and when it resolved
// to no external record; MatchReported distinguishes the two.
type Film struct {
	archive.Item
	Match         *enrich.Match `json:"match,omitempty"`
	MatchReported bool          `json:"matchReported"`
	ImageStatus   ImageStatus   `json:"imageStatus"`

	// PlaceholderColor is the tile color clients render while no
	// poster is displayable. Deterministic per title, cleared once a
	// poster is available.
	PlaceholderColor string `json:"placeholderColor,omitempty"`
}

// rating is the external-rating sort key; unrated films sort as zero.
func (f *Film) rating() float64 {
	if f.Match != nil {
		return f.Match.Rating
	}
	return 0
}

// Bucket selects a runtime class. Films with unknown runtime pass
// every bucket: spotty archive metadata would otherwise hide them
// from both lists.
type Bucket string

const (
	BucketAll     Bucket = "all"
	BucketFeature Bucket = "feature"
	BucketShort   Bucket = "short"
)

// featureRuntimeMin is the feature-length boundary in minutes.
const featureRuntimeMin = 40

func (b Bucket) matches(runtime int) bool {
	if runtime == 0 {
		return true
	}
	switch b {
	case BucketFeature:
		return runtime >= featureRuntimeMin
	case BucketShort:
		return runtime < featureRuntimeMin
	default:
		return true
	}
}

// SortKey names a catalog ordering.
type SortKey string

const (
	SortPopularity    SortKey = "popularity"
	SortYear          SortKey = "year"
	SortTitle         SortKey = "title"
	SortArchiveRating SortKey = "archive-rating"
	SortRating        SortKey = "rating"
)

// ArchiveClause maps a sort key to the archive's sort parameter.
// SortRating is resolved locally from the enrichment facts, so it
// fetches by popularity and re-ranks in View.
func (k SortKey) ArchiveClause() string {
	switch k {
	case SortYear:
		return "year asc"
	case SortTitle:
		return "titleSorter asc"
	case SortArchiveRating:
		return "avg_rating desc"
	default:
		return "downloads desc"
	}
}

// ViewParams filters and orders the snapshot into a visible list.
// Search carries the active text query only so the pipeline knows a
// search is in effect; the text matching itself happened upstream.
type ViewParams struct {
	Bucket            Bucket
	Genre             string
	Search            string
	Sort              SortKey
	EnrichmentEnabled bool
}
