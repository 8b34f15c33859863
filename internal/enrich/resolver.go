package enrich

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matineeapp/matinee-server/internal/logger"
	"github.com/matineeapp/matinee-server/internal/normalize"
	"github.com/matineeapp/matinee-server/internal/ratelimit"
)

// DefaultLookupTimeout bounds a single provider lookup. Without it a
// hung call would hold the de-duplication slot and block every later
// caller for the same key.
const DefaultLookupTimeout = 15 * time.Second

// Searcher performs ranked film searches against the metadata provider.
type Searcher interface {
	SearchFilms(ctx context.Context, query string, year int) ([]Candidate, error)
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	Cache    *MatchCache
	Searcher Searcher
	Pacer    *ratelimit.Pacer
	Logger   *logger.Logger
	Timeout  time.Duration // zero means DefaultLookupTimeout
}

// Resolver turns (title, year) pairs into matches. It is the single
// gate for outbound metadata lookups: cache first, then at most one
// in-flight provider call per key, spaced through the shared pacer.
type Resolver struct {
	cache    *MatchCache
	searcher Searcher
	pacer    *ratelimit.Pacer
	logger   *logger.Logger
	timeout  time.Duration

	group singleflight.Group
}

// NewResolver creates a resolver over the given cache and provider.
func NewResolver(opts ResolverOptions) *Resolver {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &Resolver{
		cache:    opts.Cache,
		searcher: opts.Searcher,
		pacer:    opts.Pacer,
		logger:   log,
		timeout:  timeout,
	}
}

// Resolve returns the match for a film title and release year.
// (nil, nil) means the provider was asked and had nothing; that
// negative is cached and not re-asked within the envelope TTL. A
// non-nil error means the lookup failed in transit and nothing was
// cached, so a later call retries.
//
// Concurrent calls for the same key share one provider call and one
// result. The in-flight slot is released the moment the lookup
// settles, success or failure.
func (r *Resolver) Resolve(ctx context.Context, title string, year int) (*Match, error) {
	query := normalize.Title(title)
	if query == "" {
		// Nothing searchable. Skip the provider and the cache both:
		// a blank key would pool unrelated junk entries.
		return nil, nil
	}

	key := Key(title, year)

	if match, ok := r.cache.Get(key); ok {
		return match, nil
	}

	result, err, _ := r.group.Do(key, func() (any, error) {
		return r.lookup(ctx, key, query, year)
	})
	if err != nil {
		return nil, err
	}
	match, _ := result.(*Match)
	return match, nil
}

func (r *Resolver) lookup(ctx context.Context, key, query string, year int) (*Match, error) {
	// Waiters share this one call, so detach it from whichever caller
	// happened to trigger it; only the resolver timeout bounds it.
	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	// Someone may have resolved and cached the key while we queued.
	if match, ok := r.cache.Get(key); ok {
		return match, nil
	}

	if err := r.pacer.Wait(lookupCtx); err != nil {
		return nil, err
	}

	candidates, err := r.searcher.SearchFilms(lookupCtx, query, year)
	if err != nil {
		// Transport and server errors are not cached: the next
		// request for this key retries instead of inheriting a
		// permanent false negative.
		r.logger.Warn("metadata lookup failed",
			"key", key,
			"error", err,
		)
		return nil, err
	}

	match := BestMatch(query, candidates)
	r.cache.Put(key, match)

	if match == nil {
		r.logger.Debug("no metadata match", "key", key, "candidates", len(candidates))
	} else {
		r.logger.Debug("metadata match resolved",
			"key", key,
			"external_id", match.ExternalID,
			"title", match.Title,
		)
	}
	return match, nil
}
