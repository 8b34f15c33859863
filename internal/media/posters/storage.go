// Package posters provides poster image downloading, placeholder hashing,
// and filesystem storage.
package posters

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Size tokens accepted by the poster API. These are Matinee's vocabulary;
// provider clients map them to whatever width ladder the upstream exposes.
const (
	SizeSmall    = "small"
	SizeMedium   = "medium"
	SizeLarge    = "large"
	SizeOriginal = "original"
)

// Sizes lists every valid size token.
var Sizes = []string{SizeSmall, SizeMedium, SizeLarge, SizeOriginal}

// ValidSize reports whether s is a known size token.
func ValidSize(s string) bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge, SizeOriginal:
		return true
	}
	return false
}

// Storage manages poster files on disk.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a new Storage instance.
// basePath should be the metadata directory; posters are stored in
// {basePath}/posters/.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	storagePath := filepath.Join(basePath, "posters")

	// Create directory if it doesn't exist.
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create posters directory: %w", err)
	}

	return &Storage{
		basePath: storagePath,
	}, nil
}

// Save stores poster data for a film at one size.
// Filename format: {identifier}_{size}.jpg.
func (s *Storage) Save(identifier, size string, imgData []byte) error {
	if identifier == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !ValidSize(size) {
		return fmt.Errorf("unknown poster size %q", size)
	}
	if len(imgData) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(identifier, size)

	// Write file with appropriate permissions.
	if err := os.WriteFile(path, imgData, 0644); err != nil {
		return fmt.Errorf("failed to write poster file: %w", err)
	}

	return nil
}

// Get retrieves poster data for a film at one size.
func (s *Storage) Get(identifier, size string) ([]byte, error) {
	if identifier == "" {
		return nil, fmt.Errorf("identifier cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(identifier, size)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("poster not found for %s at %s: %w", identifier, size, err)
		}
		return nil, fmt.Errorf("failed to read poster file: %w", err)
	}

	return data, nil
}

// Exists checks if a poster exists for a film at one size.
func (s *Storage) Exists(identifier, size string) bool {
	if identifier == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(identifier, size))
	return err == nil
}

// AnySize returns the first size token with a stored poster for the film,
// preferring larger variants. Empty string when nothing is stored.
func (s *Storage) AnySize(identifier string) string {
	if identifier == "" {
		return ""
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, size := range []string{SizeOriginal, SizeLarge, SizeMedium, SizeSmall} {
		if _, err := os.Stat(s.Path(identifier, size)); err == nil {
			return size
		}
	}
	return ""
}

// Delete removes every stored size for a film.
func (s *Storage) Delete(identifier string) error {
	if identifier == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, size := range Sizes {
		if err := os.Remove(s.Path(identifier, size)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete poster file: %w", err)
		}
	}

	return nil
}

// Hash computes the SHA256 hash of a stored poster.
// Returns hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(identifier, size string) (string, error) {
	data, err := s.Get(identifier, size)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path for a film's poster at one size.
func (s *Storage) Path(identifier, size string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s_%s.jpg", identifier, size))
}
