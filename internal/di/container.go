// Package di provides dependency injection configuration for the Matinee server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/matineeapp/matinee-server/internal/archive"
	"github.com/matineeapp/matinee-server/internal/catalog"
	"github.com/matineeapp/matinee-server/internal/config"
	"github.com/matineeapp/matinee-server/internal/di/providers"
	"github.com/matineeapp/matinee-server/internal/enrich"
	"github.com/matineeapp/matinee-server/internal/logger"
	"github.com/matineeapp/matinee-server/internal/media/posters"
	"github.com/matineeapp/matinee-server/internal/metadata/moviedb"
	"github.com/matineeapp/matinee-server/internal/ratelimit"
	"github.com/matineeapp/matinee-server/internal/service"
	"github.com/matineeapp/matinee-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Event layer
	do.Provide(injector, providers.ProvideSSEManager)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideViewingStore)
	do.Provide(injector, providers.ProvidePosterStorage)
	do.Provide(injector, providers.ProvidePosterPipeline)

	// Catalog layer
	do.Provide(injector, providers.ProvideArchiveClient)
	do.Provide(injector, providers.ProvideSnapshot)

	// Search layer
	do.Provide(injector, providers.ProvideFilmIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Enrichment layer
	do.Provide(injector, providers.ProvideMatchCache)
	do.Provide(injector, providers.ProvidePacer)
	do.Provide(injector, providers.ProvideMovieDBClient)
	do.Provide(injector, providers.ProvideResolver)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideInstanceService)
	do.Provide(injector, providers.ProvideBrowseService)
	do.Provide(injector, providers.ProvideViewingService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.ViewingStoreHandle](injector)
	_ = do.MustInvoke[*posters.Storage](injector)
	_ = do.MustInvoke[*posters.Pipeline](injector)
	_ = do.MustInvoke[*archive.Client](injector)
	_ = do.MustInvoke[*catalog.Snapshot](injector)
	_ = do.MustInvoke[*providers.FilmIndexHandle](injector)
	_ = do.MustInvoke[*providers.MatchCacheHandle](injector)
	_ = do.MustInvoke[*ratelimit.Pacer](injector)
	_ = do.MustInvoke[*moviedb.Client](injector)
	_ = do.MustInvoke[*enrich.Resolver](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	// Business services
	_ = do.MustInvoke[*service.InstanceService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.BrowseService](injector)
	_ = do.MustInvoke[*service.ViewingService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	_ = do.MustInvoke[*providers.MDNSServiceHandle](injector)

	// Warm the default catalog view so the first client sees a populated shelf
	go providers.PrewarmCatalog(injector)

	return nil
}
