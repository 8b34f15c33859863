package posters

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestPipeline(t *testing.T) (*Pipeline, *Storage) {
	t.Helper()
	storage := setupTestStorage(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPipeline(storage, logger), storage
}

func TestPipeline_EnsurePoster(t *testing.T) {
	t.Run("downloads once and serves from cache after", func(t *testing.T) {
		var hits atomic.Int32
		poster := encodeJPEG(t, 342, 513)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write(poster)
		}))
		defer server.Close()

		pipeline, storage := setupTestPipeline(t)

		first, err := pipeline.EnsurePoster(context.Background(), "film-1", server.URL, SizeMedium)
		require.NoError(t, err)
		assert.False(t, first.FromCache)
		assert.Equal(t, "unknown", first.Source)
		assert.NotEmpty(t, first.BlurHash)
		assert.True(t, storage.Exists("film-1", SizeMedium))

		second, err := pipeline.EnsurePoster(context.Background(), "film-1", server.URL, SizeMedium)
		require.NoError(t, err)
		assert.True(t, second.FromCache)
		assert.Equal(t, first.BlurHash, second.BlurHash)

		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("propagates download failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		pipeline, storage := setupTestPipeline(t)

		result, err := pipeline.EnsurePoster(context.Background(), "film-1", server.URL, SizeMedium)
		assert.Error(t, err)
		assert.Nil(t, result)
		assert.False(t, storage.Exists("film-1", SizeMedium))
	})

	t.Run("rejects unknown size", func(t *testing.T) {
		pipeline, _ := setupTestPipeline(t)

		_, err := pipeline.EnsurePoster(context.Background(), "film-1", "http://example.invalid", "gigantic")
		assert.ErrorContains(t, err, "unknown poster size")
	})

	t.Run("rejects empty identifier", func(t *testing.T) {
		pipeline, _ := setupTestPipeline(t)

		_, err := pipeline.EnsurePoster(context.Background(), "", "http://example.invalid", SizeMedium)
		assert.ErrorContains(t, err, "identifier cannot be empty")
	})
}

func TestPipeline_BlurHash(t *testing.T) {
	t.Run("computes lazily from a stored poster", func(t *testing.T) {
		pipeline, storage := setupTestPipeline(t)

		require.NoError(t, storage.Save("film-1", SizeOriginal, encodePNG(t, 64, 96)))

		hash := pipeline.BlurHash("film-1")
		assert.NotEmpty(t, hash)

		// Second call returns the cached value.
		assert.Equal(t, hash, pipeline.BlurHash("film-1"))
	})

	t.Run("empty when nothing is stored", func(t *testing.T) {
		pipeline, _ := setupTestPipeline(t)
		assert.Empty(t, pipeline.BlurHash("never-fetched"))
	})

	t.Run("empty for undecodable poster data", func(t *testing.T) {
		pipeline, storage := setupTestPipeline(t)

		require.NoError(t, storage.Save("film-1", SizeMedium, []byte("not an image at all")))
		assert.Empty(t, pipeline.BlurHash("film-1"))
	})
}

func TestPipeline_HasPosterAndRemove(t *testing.T) {
	pipeline, storage := setupTestPipeline(t)

	assert.False(t, pipeline.HasPoster("film-1"))

	require.NoError(t, storage.Save("film-1", SizeMedium, encodePNG(t, 64, 96)))
	assert.True(t, pipeline.HasPoster("film-1"))
	require.NotEmpty(t, pipeline.BlurHash("film-1"))

	require.NoError(t, pipeline.Remove("film-1"))
	assert.False(t, pipeline.HasPoster("film-1"))
	assert.Empty(t, pipeline.BlurHash("film-1"))
}

func TestComputeBlurHash(t *testing.T) {
	t.Run("hashes a decodable image", func(t *testing.T) {
		storage := setupTestStorage(t)
		require.NoError(t, storage.Save("film-1", SizeMedium, encodeJPEG(t, 128, 192)))

		hash, err := ComputeBlurHash(storage.Path("film-1", SizeMedium))
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.GreaterOrEqual(t, len(hash), 6)
	})

	t.Run("errors on missing file", func(t *testing.T) {
		_, err := ComputeBlurHash("/nonexistent/poster.jpg")
		assert.Error(t, err)
	})

	t.Run("errors on undecodable data", func(t *testing.T) {
		storage := setupTestStorage(t)
		require.NoError(t, storage.Save("film-1", SizeMedium, []byte("plain text")))

		_, err := ComputeBlurHash(storage.Path("film-1", SizeMedium))
		assert.Error(t, err)
	})
}
