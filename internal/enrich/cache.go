package enrich

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"sync"
	"time"

	"github.com/matineeapp/matinee-server/internal/logger"
)

const (
	// envelopeKey is the single fixed blob name the whole cache
	// persists under. There is exactly one envelope per data dir.
	envelopeKey = "match-cache"

	// envelopeVersion invalidates previously persisted envelopes when
	// the match schema changes. Bump on any incompatible change to
	// Match or the envelope layout.
	envelopeVersion = 1

	// DefaultTTL is the validity window for a persisted envelope.
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultFlushDelay is the debounce quiet period before a durable
	// write. A page of resolving films produces one write, not fifty.
	DefaultFlushDelay = 2 * time.Second
)

// BlobStore is the narrow durable-storage surface the cache needs.
type BlobStore interface {
	GetBlob(ctx context.Context, name string) ([]byte, bool, error)
	SetBlob(ctx context.Context, name string, data []byte) error
	DeleteBlob(ctx context.Context, name string) error
}

// envelope is the persisted cache layout: one versioned blob holding
// the whole key->match map. Timestamp is epoch milliseconds of the
// last write; the envelope expires as a unit, entries never expire
// individually.
type envelope struct {
	Version   int               `json:"version"`
	Timestamp int64             `json:"timestamp"`
	Data      map[string]*Match `json:"data"`
}

// CacheOptions configures a MatchCache.
type CacheOptions struct {
	Store      BlobStore
	Logger     *logger.Logger
	TTL        time.Duration // zero means DefaultTTL
	FlushDelay time.Duration // zero means DefaultFlushDelay
}

// MatchCache is the persistent (title, year) -> match cache. Values
// are tri-state: a present non-nil match, a present nil match (the
// explicit "no match" tombstone), or an absent key (never looked up).
//
// Construction never fails: a missing, expired, version-skewed, or
// corrupt envelope loads as an empty cache, and a broken store degrades
// the cache to memory-only for the session. Enrichment quality degrades;
// the catalog never does.
type MatchCache struct {
	mu         sync.Mutex
	data       map[string]*Match
	dirty      bool
	memoryOnly bool
	flushTimer *time.Timer
	closed     bool

	store      BlobStore
	logger     *logger.Logger
	ttl        time.Duration
	flushDelay time.Duration
}

// NewMatchCache loads the persisted envelope and returns a ready cache.
func NewMatchCache(ctx context.Context, opts CacheOptions) *MatchCache {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	c := &MatchCache{
		data:       make(map[string]*Match),
		store:      opts.Store,
		logger:     log,
		ttl:        opts.TTL,
		flushDelay: opts.FlushDelay,
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.flushDelay <= 0 {
		c.flushDelay = DefaultFlushDelay
	}
	if c.store == nil {
		c.memoryOnly = true
		return c
	}

	c.load(ctx)
	return c
}

// load reads the persisted envelope. Any problem leaves the cache
// empty; only a store failure flips it to memory-only.
func (c *MatchCache) load(ctx context.Context) {
	raw, ok, err := c.store.GetBlob(ctx, envelopeKey)
	if err != nil {
		c.memoryOnly = true
		c.logger.Warn("match cache storage unavailable, continuing in memory only", "error", err)
		return
	}
	if !ok {
		return
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("discarding corrupt match cache envelope", "error", err)
		return
	}
	if env.Version != envelopeVersion {
		c.logger.Info("discarding match cache envelope with stale version",
			"found", env.Version,
			"want", envelopeVersion,
		)
		return
	}
	age := time.Since(time.UnixMilli(env.Timestamp))
	if age > c.ttl {
		c.logger.Info("discarding expired match cache envelope", "age", age.String())
		return
	}

	if env.Data != nil {
		c.data = env.Data
	}
	c.logger.Info("match cache loaded", "entries", len(c.data), "age", age.String())
}

// Get returns the cached match for key. ok is false when the key has
// never been looked up; ok=true with a nil match is the explicit
// "looked up, no match" tombstone.
func (c *MatchCache) Get(key string) (match *Match, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	match, ok = c.data[key]
	return match, ok
}

// Put records a resolution for key. A nil match records the tombstone.
// The durable write is debounced; back-to-back puts coalesce into one.
func (c *MatchCache) Put(key string, match *Match) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.data[key] = match
	c.dirty = true
	c.scheduleFlushLocked()
}

// Len returns the number of cached resolutions, tombstones included.
func (c *MatchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// MemoryOnly reports whether the cache has degraded to unpersisted
// operation for this session.
func (c *MatchCache) MemoryOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memoryOnly
}

func (c *MatchCache) scheduleFlushLocked() {
	if c.memoryOnly {
		return
	}
	if c.flushTimer != nil {
		c.flushTimer.Reset(c.flushDelay)
		return
	}
	c.flushTimer = time.AfterFunc(c.flushDelay, func() {
		// Detached from any caller; the flush belongs to the cache.
		if err := c.Flush(context.Background()); err != nil {
			c.logger.Warn("debounced match cache flush failed", "error", err)
		}
	})
}

// Flush writes the cache to durable storage immediately, canceling any
// pending debounced write. A write failure degrades the cache to
// memory-only for the rest of the session.
func (c *MatchCache) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.flushTimer != nil {
		c.flushTimer.Stop()
		c.flushTimer = nil
	}
	if !c.dirty || c.memoryOnly {
		c.mu.Unlock()
		return nil
	}

	env := envelope{
		Version:   envelopeVersion,
		Timestamp: time.Now().UnixMilli(),
		Data:      c.data,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to marshal match cache envelope: %w", err)
	}
	c.dirty = false
	c.mu.Unlock()

	if err := c.store.SetBlob(ctx, envelopeKey, raw); err != nil {
		c.mu.Lock()
		c.memoryOnly = true
		c.mu.Unlock()
		c.logger.Warn("match cache write failed, continuing in memory only", "error", err)
		return nil
	}
	return nil
}

// Close performs a final flush and stops the debounce timer. The cache
// rejects writes afterwards.
func (c *MatchCache) Close(ctx context.Context) error {
	err := c.Flush(ctx)

	c.mu.Lock()
	c.closed = true
	if c.flushTimer != nil {
		c.flushTimer.Stop()
		c.flushTimer = nil
	}
	c.mu.Unlock()

	return err
}
