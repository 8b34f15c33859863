package catalog

import (
	"sync"

	"github.com/matineeapp/matinee-server/internal/archive"
	"github.com/matineeapp/matinee-server/internal/color"
	"github.com/matineeapp/matinee-server/internal/enrich"
)

// Snapshot is the current archive result page and the enrichment
// facts reported against it. Every Replace starts a new epoch;
// reports carry the epoch they were computed for, and stale ones are
// dropped (their cache writes already happened and stay valid).
//
// Facts are one-shot per film per epoch. The guard exists because a
// lookup settling and the view recomputing would otherwise feed each
// other forever.
type Snapshot struct {
	mu      sync.RWMutex
	epoch   uint64
	items   []archive.Item
	total   int
	index   map[string]int
	matched map[string]bool
	matches map[string]*enrich.Match
	images  map[string]bool
}

// NewSnapshot creates an empty snapshot at epoch zero.
func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.resetLocked(nil, 0)
	return s
}

// Replace installs a new result page, clears all facts, and returns
// the new epoch for reporters to carry.
func (s *Snapshot) Replace(items []archive.Item, total int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.resetLocked(items, total)
	return s.epoch
}

func (s *Snapshot) resetLocked(items []archive.Item, total int) {
	s.items = items
	s.total = total
	s.index = make(map[string]int, len(items))
	for i := range items {
		s.index[items[i].Identifier] = i
	}
	s.matched = make(map[string]bool)
	s.matches = make(map[string]*enrich.Match)
	s.images = make(map[string]bool)
}

// Epoch returns the current epoch.
func (s *Snapshot) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Total returns the archive's total match count for the current query.
func (s *Snapshot) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Len returns the number of items in the snapshot.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Items returns the snapshot's items in source order.
func (s *Snapshot) Items() []archive.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]archive.Item, len(s.items))
	copy(items, s.items)
	return items
}

// Film returns one item with its current enrichment facts.
func (s *Snapshot) Film(identifier string) (Film, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[identifier]
	if !ok {
		return Film{}, false
	}
	return s.filmLocked(&s.items[i]), true
}

// ReportMatch records a settled lookup for one film. A match carrying
// a poster reference settles the image status as available; a match
// without one, or a nil match (no external record), leaves the image
// status to the thumbnail probe. Returns false when the fact was
// dropped: stale epoch, unknown film, or already reported.
func (s *Snapshot) ReportMatch(epoch uint64, identifier string, match *enrich.Match) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return false
	}
	if _, ok := s.index[identifier]; !ok {
		return false
	}
	if s.matched[identifier] {
		return false
	}

	s.matched[identifier] = true
	s.matches[identifier] = match
	if match != nil && match.PosterRef != "" {
		s.setImageLocked(identifier, true)
	}
	return true
}

// ReportImageStatus records the thumbnail probe's verdict for one
// film. Returns false when dropped: stale epoch, unknown film, or the
// status already settled.
func (s *Snapshot) ReportImageStatus(epoch uint64, identifier string, displayable bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return false
	}
	if _, ok := s.index[identifier]; !ok {
		return false
	}
	return s.setImageLocked(identifier, displayable)
}

func (s *Snapshot) setImageLocked(identifier string, displayable bool) bool {
	if _, ok := s.images[identifier]; ok {
		return false
	}
	s.images[identifier] = displayable
	return true
}

func (s *Snapshot) imageMissingLocked(identifier string) bool {
	displayable, ok := s.images[identifier]
	return ok && !displayable
}

func (s *Snapshot) filmLocked(item *archive.Item) Film {
	f := Film{
		Item:        *item,
		ImageStatus: ImageUnknown,
	}
	if s.matched[item.Identifier] {
		f.Match = s.matches[item.Identifier]
		f.MatchReported = true
	}
	if displayable, ok := s.images[item.Identifier]; ok {
		if displayable {
			f.ImageStatus = ImageAvailable
		} else {
			f.ImageStatus = ImageMissing
		}
	}
	if f.ImageStatus != ImageAvailable {
		f.PlaceholderColor = color.ForTitle(item.Title)
	}
	return f
}
