package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/matineeapp/matinee-server/internal/archive"
	"github.com/matineeapp/matinee-server/internal/catalog"
	"github.com/matineeapp/matinee-server/internal/config"
	"github.com/matineeapp/matinee-server/internal/logger"
	"github.com/matineeapp/matinee-server/internal/service"
)

// ProvideArchiveClient provides the Internet Archive catalog client.
func ProvideArchiveClient(i do.Injector) (*archive.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := archive.New(archive.Options{
		BaseURL:    cfg.Archive.BaseURL,
		Collection: cfg.Archive.Collection,
		Timeout:    cfg.Archive.Timeout,
		Logger:     log.Logger,
	})

	log.Info("Archive client ready", "collection", cfg.Archive.Collection)

	return client, nil
}

// ProvideSnapshot provides the shared catalog snapshot.
func ProvideSnapshot(i do.Injector) (*catalog.Snapshot, error) {
	return catalog.NewSnapshot(), nil
}

// PrewarmCatalog fetches the first catalog page so the default shelf is
// populated and enrichment is underway before the first client connects.
// Should be called after all services are wired.
func PrewarmCatalog(i do.Injector) {
	browseService := do.MustInvoke[*service.BrowseService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), prewarmTimeout)
	defer cancel()

	resp, err := browseService.Browse(ctx, service.BrowseRequest{})
	if err != nil {
		log.Warn("Catalog prewarm failed", "error", err)
		return
	}

	log.Info("Catalog prewarmed", "films", len(resp.Films), "total", resp.Total)
}
