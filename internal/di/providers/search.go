package providers

import (
	"github.com/samber/do/v2"

	"github.com/matineeapp/matinee-server/internal/catalog"
	"github.com/matineeapp/matinee-server/internal/config"
	"github.com/matineeapp/matinee-server/internal/logger"
	"github.com/matineeapp/matinee-server/internal/search"
	"github.com/matineeapp/matinee-server/internal/service"
)

// FilmIndexHandle wraps the search index with shutdown capability.
type FilmIndexHandle struct {
	*search.FilmIndex
}

// Shutdown implements do.Shutdownable.
func (h *FilmIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideFilmIndex provides the Bleve search index.
func ProvideFilmIndex(i do.Injector) (*FilmIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewFilmIndex(search.Options{
		DataPath: cfg.Storage.DataPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &FilmIndexHandle{FilmIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*FilmIndexHandle](i)
	snapshot := do.MustInvoke[*catalog.Snapshot](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.FilmIndex, snapshot, log.Logger), nil
}
