package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var (
	// instanceKey is the singleton key for the server instance record.
	instanceKey = []byte("server:instance")

	// ErrInstanceNotFound is returned when no instance record exists.
	ErrInstanceNotFound = errors.New("instance not found")

	// ErrInstanceAlreadyExists is returned when trying to create an instance that already exists.
	ErrInstanceAlreadyExists = errors.New("instance already exists")
)

// Instance is the persistent identity of this server: a stable UUID
// that survives restarts and renames, plus the advertised name. Clients
// and mDNS discovery key off the ID, not the name.
type Instance struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetInstance retrieves the singleton server instance record.
// Returns ErrInstanceNotFound if none exists.
func (s *Store) GetInstance(_ context.Context) (*Instance, error) {
	var instance Instance

	err := s.get(instanceKey, &instance)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}

	return &instance, nil
}

// CreateInstance creates a new singleton server instance record with a
// fresh UUID. Returns ErrInstanceAlreadyExists if one already exists.
func (s *Store) CreateInstance(_ context.Context, name string) (*Instance, error) {
	exists, err := s.exists(instanceKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check instance existence: %w", err)
	}

	if exists {
		return nil, ErrInstanceAlreadyExists
	}

	now := time.Now()
	instance := &Instance{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.set(instanceKey, instance); err != nil {
		return nil, fmt.Errorf("failed to create instance: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Server instance record created",
			"id", instance.ID,
			"name", instance.Name,
		)
	}

	return instance, nil
}

// UpdateInstance updates the server instance record. The ID is never
// changed; callers update the name.
func (s *Store) UpdateInstance(ctx context.Context, instance *Instance) error {
	// Verify instance exists.
	_, err := s.GetInstance(ctx)
	if err != nil {
		return err
	}

	instance.UpdatedAt = time.Now()

	if err := s.set(instanceKey, instance); err != nil {
		return fmt.Errorf("failed to update instance: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Server instance record updated",
			"id", instance.ID,
			"name", instance.Name,
		)
	}

	return nil
}

// InitializeInstance ensures a server instance record exists, creating
// one with the given name when missing. A changed name on an existing
// record is persisted; the ID is stable for the life of the data dir.
func (s *Store) InitializeInstance(ctx context.Context, name string) (*Instance, error) {
	instance, err := s.GetInstance(ctx)
	if err == nil {
		if instance.Name != name && name != "" {
			instance.Name = name
			if err := s.UpdateInstance(ctx, instance); err != nil {
				return nil, err
			}
		}
		if s.logger != nil {
			s.logger.Info("Server instance record found",
				"id", instance.ID,
				"name", instance.Name,
			)
		}
		return instance, nil
	}

	if errors.Is(err, ErrInstanceNotFound) {
		if s.logger != nil {
			s.logger.Info("No server instance record found, creating new instance")
		}
		return s.CreateInstance(ctx, name)
	}

	return nil, fmt.Errorf("failed to initialize instance: %w", err)
}
