// Package sse implements Server-Sent Events for pushing catalog and
// enrichment updates to connected browsers.
package sse

import (
	"time"

	"github.com/matineeapp/matinee-server/internal/enrich"
)

// Matinee uses SSE strictly server-to-client: the browser renders the
// catalog immediately and patches films in place as enrichment facts
// arrive. Nothing here needs a return channel.

// EventType represents the type of SSE event.
type EventType string

const (
	// EventFilmMatched fires when an enrichment lookup attaches external
	// metadata to a film.
	EventFilmMatched EventType = "film.matched"
	// EventFilmUnmatched fires when an enrichment lookup completed but no
	// external record qualified. Clients stop showing a pending state.
	EventFilmUnmatched EventType = "film.unmatched"

	// EventPosterReady fires when a poster image has been fetched and is
	// servable from this instance, including its blurhash placeholder.
	EventPosterReady EventType = "film.poster_ready"
	// EventPosterMissing fires when neither the external poster nor the
	// archive thumbnail produced a displayable image.
	EventPosterMissing EventType = "film.poster_missing"

	// EventCatalogLoaded fires after a catalog page replaces the snapshot.
	EventCatalogLoaded EventType = "catalog.loaded"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct
// deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// FilmMatchedEventData is the data payload for film.matched events.
// Epoch identifies the catalog snapshot the fact belongs to; clients on
// an older snapshot discard it.
type FilmMatchedEventData struct {
	Identifier string        `json:"identifier"`
	Epoch      uint64        `json:"epoch"`
	Match      *enrich.Match `json:"match"`
}

// FilmUnmatchedEventData is the data payload for film.unmatched events.
type FilmUnmatchedEventData struct {
	Identifier string `json:"identifier"`
	Epoch      uint64 `json:"epoch"`
}

// PosterReadyEventData is the data payload for film.poster_ready events.
type PosterReadyEventData struct {
	Identifier string `json:"identifier"`
	BlurHash   string `json:"blurhash,omitempty"`
}

// PosterMissingEventData is the data payload for film.poster_missing events.
type PosterMissingEventData struct {
	Identifier string `json:"identifier"`
	Epoch      uint64 `json:"epoch"`
}

// CatalogLoadedEventData is the data payload for catalog.loaded events.
type CatalogLoadedEventData struct {
	Epoch uint64 `json:"epoch"`
	Count int    `json:"count"`
	Total int    `json:"total"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"serverTime"`
}

// NewFilmMatchedEvent creates a film.matched event.
func NewFilmMatchedEvent(identifier string, epoch uint64, match *enrich.Match) Event {
	return Event{
		Type: EventFilmMatched,
		Data: FilmMatchedEventData{
			Identifier: identifier,
			Epoch:      epoch,
			Match:      match,
		},
		Timestamp: time.Now(),
	}
}

// NewFilmUnmatchedEvent creates a film.unmatched event.
func NewFilmUnmatchedEvent(identifier string, epoch uint64) Event {
	return Event{
		Type: EventFilmUnmatched,
		Data: FilmUnmatchedEventData{
			Identifier: identifier,
			Epoch:      epoch,
		},
		Timestamp: time.Now(),
	}
}

// NewPosterReadyEvent creates a film.poster_ready event.
func NewPosterReadyEvent(identifier, blurHash string) Event {
	return Event{
		Type: EventPosterReady,
		Data: PosterReadyEventData{
			Identifier: identifier,
			BlurHash:   blurHash,
		},
		Timestamp: time.Now(),
	}
}

// NewPosterMissingEvent creates a film.poster_missing event.
func NewPosterMissingEvent(identifier string, epoch uint64) Event {
	return Event{
		Type: EventPosterMissing,
		Data: PosterMissingEventData{
			Identifier: identifier,
			Epoch:      epoch,
		},
		Timestamp: time.Now(),
	}
}

// NewCatalogLoadedEvent creates a catalog.loaded event.
func NewCatalogLoadedEvent(epoch uint64, count, total int) Event {
	return Event{
		Type: EventCatalogLoaded,
		Data: CatalogLoadedEventData{
			Epoch: epoch,
			Count: count,
			Total: total,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
