package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/matineeapp/matinee-server/internal/config"
	"github.com/matineeapp/matinee-server/internal/logger"
	"github.com/matineeapp/matinee-server/internal/sse"
	"github.com/matineeapp/matinee-server/internal/store"
	"github.com/matineeapp/matinee-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the badger store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the instance and blob store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Storage.DataPath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ViewingStoreHandle wraps the viewing store with shutdown capability.
type ViewingStoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *ViewingStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideViewingStore provides the SQLite store for progress and favorites.
func ProvideViewingStore(i do.Injector) (*ViewingStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Storage.DataPath, "viewing.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Viewing store initialized", "path", dbPath)

	return &ViewingStoreHandle{Store: db}, nil
}
