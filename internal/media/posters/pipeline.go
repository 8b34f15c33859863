package posters

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// PosterResult describes a poster that is now stored locally.
type PosterResult struct {
	BlurHash  string // Placeholder hash, empty if computation failed
	Source    string // Where the bytes came from, empty on cache hit
	FromCache bool   // True when the poster was already stored
}

// Pipeline coordinates poster downloads: it deduplicates concurrent
// fetches for the same film and size, and computes a blurhash placeholder
// once per film.
type Pipeline struct {
	downloader *Downloader
	storage    *Storage
	logger     *slog.Logger
	group      singleflight.Group

	mu         sync.RWMutex
	blurhashes map[string]string
}

// NewPipeline creates a poster pipeline over the given storage.
func NewPipeline(storage *Storage, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		downloader: NewDownloader(storage, logger),
		storage:    storage,
		logger:     logger,
		blurhashes: make(map[string]string),
	}
}

// EnsurePoster makes sure a poster at the given size is stored locally,
// downloading from url when absent. Concurrent calls for the same film
// and size share one download. The download is detached from the caller's
// cancellation; an impatient first caller must not kill the fetch for
// everyone behind it.
func (p *Pipeline) EnsurePoster(ctx context.Context, identifier, url, size string) (*PosterResult, error) {
	if identifier == "" {
		return nil, fmt.Errorf("identifier cannot be empty")
	}
	if !ValidSize(size) {
		return nil, fmt.Errorf("unknown poster size %q", size)
	}

	key := identifier + ":" + size
	v, err, _ := p.group.Do(key, func() (any, error) {
		if p.storage.Exists(identifier, size) {
			return &PosterResult{BlurHash: p.BlurHash(identifier), FromCache: true}, nil
		}

		result := p.downloader.Download(context.WithoutCancel(ctx), identifier, url, size)
		if !result.Success {
			return nil, result.Error
		}

		return &PosterResult{
			BlurHash: p.blurHashFrom(identifier, size),
			Source:   result.Source,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PosterResult), nil
}

// BlurHash returns the placeholder hash for a film's poster, computing it
// from a stored file on first use. Empty when nothing is stored.
func (p *Pipeline) BlurHash(identifier string) string {
	p.mu.RLock()
	hash, ok := p.blurhashes[identifier]
	p.mu.RUnlock()
	if ok {
		return hash
	}

	size := p.storage.AnySize(identifier)
	if size == "" {
		return ""
	}
	return p.blurHashFrom(identifier, size)
}

// blurHashFrom computes and caches the blurhash for a stored poster.
func (p *Pipeline) blurHashFrom(identifier, size string) string {
	hash, err := ComputeBlurHash(p.storage.Path(identifier, size))
	if err != nil {
		p.logger.Warn("failed to compute blurhash",
			"identifier", identifier,
			"error", err,
		)
		return ""
	}

	p.mu.Lock()
	p.blurhashes[identifier] = hash
	p.mu.Unlock()
	return hash
}

// HasPoster reports whether any size is stored for the film.
func (p *Pipeline) HasPoster(identifier string) bool {
	return p.storage.AnySize(identifier) != ""
}

// Remove deletes every stored size and the cached blurhash for a film.
func (p *Pipeline) Remove(identifier string) error {
	p.mu.Lock()
	delete(p.blurhashes, identifier)
	p.mu.Unlock()

	return p.storage.Delete(identifier)
}
