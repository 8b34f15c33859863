package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/matineeapp/matinee-server/internal/config"
	"github.com/matineeapp/matinee-server/internal/enrich"
	"github.com/matineeapp/matinee-server/internal/logger"
	"github.com/matineeapp/matinee-server/internal/metadata/moviedb"
	"github.com/matineeapp/matinee-server/internal/ratelimit"
)

// MatchCacheHandle wraps the match cache so shutdown flushes pending writes.
type MatchCacheHandle struct {
	*enrich.MatchCache
}

// Shutdown implements do.Shutdownable.
func (h *MatchCacheHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.MatchCache.Close(ctx)
}

// ProvideMatchCache provides the persistent (title, year) match cache.
func ProvideMatchCache(i do.Injector) (*MatchCacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	cache := enrich.NewMatchCache(context.Background(), enrich.CacheOptions{
		Store:      storeHandle.Store,
		Logger:     log,
		TTL:        cfg.Enrichment.CacheTTL,
		FlushDelay: cfg.Enrichment.FlushDelay,
	})

	log.Info("Match cache loaded", "entries", cache.Len())

	return &MatchCacheHandle{MatchCache: cache}, nil
}

// ProvidePacer provides the shared pacer that spaces outbound metadata lookups.
func ProvidePacer(i do.Injector) (*ratelimit.Pacer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.NewPacer(cfg.Enrichment.MinInterval), nil
}

// ProvideMovieDBClient provides the TMDB metadata client.
func ProvideMovieDBClient(i do.Injector) (*moviedb.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := moviedb.New(moviedb.Options{
		APIKey:       cfg.MovieDB.APIKey,
		BaseURL:      cfg.MovieDB.BaseURL,
		ImageBaseURL: cfg.MovieDB.ImageBaseURL,
		Language:     cfg.MovieDB.Language,
		Logger:       log.Logger,
	})

	if cfg.Enrichment.Enabled && cfg.MovieDB.APIKey == "" {
		log.Warn("MovieDB API key not configured, metadata lookups will fail")
	}

	return client, nil
}

// ProvideResolver provides the match resolver.
func ProvideResolver(i do.Injector) (*enrich.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cacheHandle := do.MustInvoke[*MatchCacheHandle](i)
	pacer := do.MustInvoke[*ratelimit.Pacer](i)
	client := do.MustInvoke[*moviedb.Client](i)

	return enrich.NewResolver(enrich.ResolverOptions{
		Cache:    cacheHandle.MatchCache,
		Searcher: client,
		Pacer:    pacer,
		Logger:   log,
		Timeout:  cfg.Enrichment.LookupTimeout,
	}), nil
}
