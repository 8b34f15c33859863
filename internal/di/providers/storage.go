package providers

import (
	"github.com/samber/do/v2"

	"github.com/matineeapp/matinee-server/internal/config"
	"github.com/matineeapp/matinee-server/internal/logger"
	"github.com/matineeapp/matinee-server/internal/media/posters"
)

// ProvidePosterStorage provides the on-disk poster storage.
func ProvidePosterStorage(i do.Injector) (*posters.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := posters.NewStorage(cfg.Storage.DataPath)
	if err != nil {
		return nil, err
	}

	log.Info("Poster storage initialized", "base_path", cfg.Storage.DataPath)

	return storage, nil
}

// ProvidePosterPipeline provides the poster download pipeline.
func ProvidePosterPipeline(i do.Injector) (*posters.Pipeline, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*posters.Storage](i)

	return posters.NewPipeline(storage, log.Logger), nil
}
