package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for film documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on titles with English stemming
//  2. The matched external title searchable alongside the archive title
//  3. Exact keyword matching for genre filters and facets
//  4. Numeric range queries for year and runtime
//  5. Term vectors on title fields for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Matched external title - the clean title enrichment found
	matchedFieldMapping := bleve.NewTextFieldMapping()
	matchedFieldMapping.Analyzer = en.AnalyzerName
	matchedFieldMapping.Store = true
	matchedFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("matched_title", matchedFieldMapping)

	// Description - searchable but not stored (too large)
	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	// Overview from the external match - searchable, not stored
	overviewFieldMapping := bleve.NewTextFieldMapping()
	overviewFieldMapping.Analyzer = en.AnalyzerName
	overviewFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("overview", overviewFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Genre slugs - keyword analyzer keeps compound slugs intact
	// (e.g., "film-noir")
	genreSlugsFieldMapping := bleve.NewTextFieldMapping()
	genreSlugsFieldMapping.Analyzer = keyword.Name
	genreSlugsFieldMapping.Store = true
	genreSlugsFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("genre_slugs", genreSlugsFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	yearFieldMapping := bleve.NewNumericFieldMapping()
	yearFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("year", yearFieldMapping)

	runtimeFieldMapping := bleve.NewNumericFieldMapping()
	runtimeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("runtime", runtimeFieldMapping)

	downloadsFieldMapping := bleve.NewNumericFieldMapping()
	downloadsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("downloads", downloadsFieldMapping)

	ratingFieldMapping := bleve.NewNumericFieldMapping()
	ratingFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("rating", ratingFieldMapping)

	indexedAtFieldMapping := bleve.NewNumericFieldMapping()
	indexedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("indexed_at", indexedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
