package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matineeapp/matinee-server/internal/config"
	domainerrors "github.com/matineeapp/matinee-server/internal/errors"
	"github.com/matineeapp/matinee-server/internal/store"
)

// Version is the server release reported by the instance endpoint and
// the mDNS TXT record.
const Version = "0.3.0"

// InstanceService manages the server's persistent identity: a stable
// UUID plus the advertised name, created on first run and reused on
// every start after that.
type InstanceService struct {
	store  *store.Store
	config *config.Config
	logger *slog.Logger
}

// NewInstanceService creates an instance service.
func NewInstanceService(store *store.Store, config *config.Config, logger *slog.Logger) *InstanceService {
	return &InstanceService{
		store:  store,
		config: config,
		logger: logger,
	}
}

// InstanceInfo is the identity and capability summary served at
// /api/v1/instance and advertised over mDNS.
type InstanceInfo struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Version           string `json:"version"`
	Environment       string `json:"environment"`
	Collection        string `json:"collection"`
	EnrichmentEnabled bool   `json:"enrichmentEnabled"`
}

// Initialize ensures the instance identity exists, creating it with
// the configured name on first run and persisting a changed name on
// later ones. Called once at startup before anything advertises the
// instance.
func (s *InstanceService) Initialize(ctx context.Context) (*store.Instance, error) {
	instance, err := s.store.InitializeInstance(ctx, s.config.Server.Name)
	if err != nil {
		return nil, fmt.Errorf("initialize instance: %w", err)
	}

	s.logger.Info("instance ready",
		"instance_id", instance.ID,
		"name", instance.Name,
		"version", Version,
	)
	return instance, nil
}

// Info returns the served instance summary.
func (s *InstanceService) Info(ctx context.Context) (*InstanceInfo, error) {
	instance, err := s.store.GetInstance(ctx)
	if err != nil {
		if domainerrors.Is(err, store.ErrInstanceNotFound) {
			return nil, domainerrors.NotFound("instance not initialized").WithCause(err)
		}
		return nil, fmt.Errorf("get instance: %w", err)
	}

	return &InstanceInfo{
		ID:                instance.ID,
		Name:              instance.Name,
		Version:           Version,
		Environment:       s.config.App.Environment,
		Collection:        s.config.Archive.Collection,
		EnrichmentEnabled: s.config.Enrichment.Enabled,
	}, nil
}
