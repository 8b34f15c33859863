// Package search provides full-text film search using Bleve, with
// fuzzy matching, genre and year filtering, and genre facets. Browse
// pages feed the index as they load, so it accumulates every film the
// server has seen rather than mirroring one archive page.
package search

import (
	"time"

	"github.com/matineeapp/matinee-server/internal/catalog"
)

// FilmDocument is the indexed representation of a film.
//
// The archive title and the matched external title are indexed
// separately: "Nosferatu - 1922" and "Nosferatu" should both hit, and
// the match arrives later than the archive record (documents are
// re-indexed when enrichment settles).
type FilmDocument struct {
	ID           string   `json:"id"` // Archive identifier
	Name         string   `json:"name"`
	MatchedTitle string   `json:"matched_title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Overview     string   `json:"overview,omitempty"`
	GenreSlugs   []string `json:"genre_slugs,omitempty"`
	Year         int      `json:"year,omitempty"`
	Runtime      int      `json:"runtime,omitempty"` // Minutes
	Downloads    int64    `json:"downloads,omitempty"`
	Rating       float64  `json:"rating,omitempty"` // External rating
	IndexedAt    int64    `json:"indexed_at"`       // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *FilmDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"name":       d.Name,
		"indexed_at": d.IndexedAt,
	}

	if d.MatchedTitle != "" {
		m["matched_title"] = d.MatchedTitle
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Overview != "" {
		m["overview"] = d.Overview
	}
	if len(d.GenreSlugs) > 0 {
		m["genre_slugs"] = d.GenreSlugs
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}
	if d.Runtime > 0 {
		m["runtime"] = d.Runtime
	}
	if d.Downloads > 0 {
		m["downloads"] = d.Downloads
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}

	return m
}

// DocumentFromFilm converts a catalog film to its indexed form,
// folding in whatever enrichment has arrived.
func DocumentFromFilm(f *catalog.Film) *FilmDocument {
	doc := &FilmDocument{
		ID:          f.Identifier,
		Name:        f.Title,
		Description: f.Description,
		GenreSlugs:  f.Genres,
		Year:        f.Year,
		Runtime:     f.Runtime,
		Downloads:   f.Downloads,
		IndexedAt:   time.Now().UnixMilli(),
	}

	if f.Match != nil {
		doc.MatchedTitle = f.Match.Title
		doc.Overview = f.Match.Overview
		doc.Rating = f.Match.Rating
	}

	return doc
}
