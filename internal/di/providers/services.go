package providers

import (
	"github.com/samber/do/v2"

	"github.com/matineeapp/matinee-server/internal/archive"
	"github.com/matineeapp/matinee-server/internal/catalog"
	"github.com/matineeapp/matinee-server/internal/config"
	"github.com/matineeapp/matinee-server/internal/enrich"
	"github.com/matineeapp/matinee-server/internal/logger"
	"github.com/matineeapp/matinee-server/internal/media/posters"
	"github.com/matineeapp/matinee-server/internal/metadata/moviedb"
	"github.com/matineeapp/matinee-server/internal/service"
	"github.com/matineeapp/matinee-server/internal/validation"
)

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideInstanceService provides the instance service.
func ProvideInstanceService(i do.Injector) (*service.InstanceService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewInstanceService(storeHandle.Store, cfg, log.Logger), nil
}

// ProvideBrowseService provides the catalog browse service.
func ProvideBrowseService(i do.Injector) (*service.BrowseService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	archiveClient := do.MustInvoke[*archive.Client](i)
	movieDBClient := do.MustInvoke[*moviedb.Client](i)
	resolver := do.MustInvoke[*enrich.Resolver](i)
	snapshot := do.MustInvoke[*catalog.Snapshot](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	pipeline := do.MustInvoke[*posters.Pipeline](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)

	return service.NewBrowseService(service.BrowseDeps{
		Archive:           archiveClient,
		MovieDB:           movieDBClient,
		Resolver:          resolver,
		Snapshot:          snapshot,
		Search:            searchService,
		Pipeline:          pipeline,
		SSE:               sseHandle.Manager,
		Validator:         validator,
		Logger:            log.Logger,
		EnrichmentEnabled: cfg.Enrichment.Enabled,
		DefaultPageSize:   cfg.Archive.PageSize,
	}), nil
}

// ProvideViewingService provides the progress and favorites service.
func ProvideViewingService(i do.Injector) (*service.ViewingService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	viewingHandle := do.MustInvoke[*ViewingStoreHandle](i)
	snapshot := do.MustInvoke[*catalog.Snapshot](i)
	pipeline := do.MustInvoke[*posters.Pipeline](i)
	validator := do.MustInvoke[*validation.Validator](i)

	return service.NewViewingService(viewingHandle.Store, snapshot, pipeline, validator, log.Logger), nil
}
