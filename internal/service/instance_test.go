package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matineeapp/matinee-server/internal/config"
	domainerrors "github.com/matineeapp/matinee-server/internal/errors"
	"github.com/matineeapp/matinee-server/internal/store"
)

func setupInstance(t *testing.T, cfg *config.Config) (*InstanceService, *store.Store) {
	t.Helper()

	discard := slog.New(slog.DiscardHandler)
	testStore, err := store.New(t.TempDir(), discard)
	require.NoError(t, err)
	t.Cleanup(func() { testStore.Close() })

	return NewInstanceService(testStore, cfg, discard), testStore
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Environment: "development"},
		Server:  config.ServerConfig{Name: "Living Room Matinee"},
		Archive: config.ArchiveConfig{Collection: "feature_films"},
		Enrichment: config.EnrichmentConfig{
			Enabled: true,
		},
	}
}

func TestInstance_InitializeCreatesIdentity(t *testing.T) {
	svc, _ := setupInstance(t, testConfig())
	ctx := context.Background()

	instance, err := svc.Initialize(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, instance.ID)
	assert.Equal(t, "Living Room Matinee", instance.Name)

	// Initializing again keeps the same identity.
	again, err := svc.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, instance.ID, again.ID)
}

func TestInstance_RenamePersistsAcrossInit(t *testing.T) {
	cfg := testConfig()
	svc, testStore := setupInstance(t, cfg)
	ctx := context.Background()

	first, err := svc.Initialize(ctx)
	require.NoError(t, err)

	cfg.Server.Name = "Projector Room"
	renamed, err := NewInstanceService(testStore, cfg, slog.New(slog.DiscardHandler)).Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, renamed.ID)
	assert.Equal(t, "Projector Room", renamed.Name)
}

func TestInstance_Info(t *testing.T) {
	svc, _ := setupInstance(t, testConfig())
	ctx := context.Background()

	_, err := svc.Initialize(ctx)
	require.NoError(t, err)

	info, err := svc.Info(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "Living Room Matinee", info.Name)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, "development", info.Environment)
	assert.Equal(t, "feature_films", info.Collection)
	assert.True(t, info.EnrichmentEnabled)
}

func TestInstance_InfoBeforeInitialize(t *testing.T) {
	svc, _ := setupInstance(t, testConfig())

	_, err := svc.Info(context.Background())
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)
}
