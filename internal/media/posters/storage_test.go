package posters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	return storage
}

func TestNewStorage(t *testing.T) {
	t.Run("creates storage with valid path", func(t *testing.T) {
		tmpDir := t.TempDir()

		storage, err := NewStorage(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, storage)

		// Verify posters directory was created.
		info, err := os.Stat(filepath.Join(tmpDir, "posters"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("returns error for empty path", func(t *testing.T) {
		storage, err := NewStorage("")
		assert.Error(t, err)
		assert.Nil(t, storage)
		assert.Contains(t, err.Error(), "base path cannot be empty")
	})

	t.Run("creates nested directories if needed", func(t *testing.T) {
		tmpDir := t.TempDir()
		nestedPath := filepath.Join(tmpDir, "nested", "path")

		storage, err := NewStorage(nestedPath)
		require.NoError(t, err)
		require.NotNil(t, storage)

		info, err := os.Stat(filepath.Join(nestedPath, "posters"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestStorage_Save(t *testing.T) {
	t.Run("saves poster data successfully", func(t *testing.T) {
		storage := setupTestStorage(t)
		testData := []byte("test poster data")

		err := storage.Save("night_of_the_living_dead", SizeMedium, testData)
		require.NoError(t, err)

		data, err := os.ReadFile(storage.Path("night_of_the_living_dead", SizeMedium))
		require.NoError(t, err)
		assert.Equal(t, testData, data)
	})

	t.Run("returns error for empty identifier", func(t *testing.T) {
		storage := setupTestStorage(t)

		err := storage.Save("", SizeMedium, []byte("data"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "identifier cannot be empty")
	})

	t.Run("returns error for unknown size", func(t *testing.T) {
		storage := setupTestStorage(t)

		err := storage.Save("film-1", "gigantic", []byte("data"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown poster size")
	})

	t.Run("returns error for empty image data", func(t *testing.T) {
		storage := setupTestStorage(t)

		err := storage.Save("film-1", SizeMedium, []byte{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "image data cannot be empty")
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		storage := setupTestStorage(t)

		require.NoError(t, storage.Save("film-1", SizeMedium, []byte("initial data")))
		require.NoError(t, storage.Save("film-1", SizeMedium, []byte("updated data")))

		data, err := storage.Get("film-1", SizeMedium)
		require.NoError(t, err)
		assert.Equal(t, []byte("updated data"), data)
	})

	t.Run("sizes are stored independently", func(t *testing.T) {
		storage := setupTestStorage(t)

		require.NoError(t, storage.Save("film-1", SizeSmall, []byte("small")))
		require.NoError(t, storage.Save("film-1", SizeLarge, []byte("large")))

		small, err := storage.Get("film-1", SizeSmall)
		require.NoError(t, err)
		assert.Equal(t, []byte("small"), small)

		large, err := storage.Get("film-1", SizeLarge)
		require.NoError(t, err)
		assert.Equal(t, []byte("large"), large)
	})
}

func TestStorage_Get(t *testing.T) {
	t.Run("retrieves saved poster data", func(t *testing.T) {
		storage := setupTestStorage(t)
		testData := []byte("test poster data")

		require.NoError(t, storage.Save("film-1", SizeMedium, testData))

		data, err := storage.Get("film-1", SizeMedium)
		require.NoError(t, err)
		assert.Equal(t, testData, data)
	})

	t.Run("returns error for non-existent poster", func(t *testing.T) {
		storage := setupTestStorage(t)

		data, err := storage.Get("nope", SizeMedium)
		assert.Error(t, err)
		assert.Nil(t, data)
		assert.Contains(t, err.Error(), "poster not found")
	})
}

func TestStorage_Exists(t *testing.T) {
	storage := setupTestStorage(t)

	assert.False(t, storage.Exists("film-1", SizeMedium))
	assert.False(t, storage.Exists("", SizeMedium))

	require.NoError(t, storage.Save("film-1", SizeMedium, []byte("data")))
	assert.True(t, storage.Exists("film-1", SizeMedium))
	assert.False(t, storage.Exists("film-1", SizeLarge))
}

func TestStorage_AnySize(t *testing.T) {
	storage := setupTestStorage(t)

	assert.Empty(t, storage.AnySize("film-1"))

	require.NoError(t, storage.Save("film-1", SizeSmall, []byte("small")))
	assert.Equal(t, SizeSmall, storage.AnySize("film-1"))

	// Larger variants win.
	require.NoError(t, storage.Save("film-1", SizeLarge, []byte("large")))
	assert.Equal(t, SizeLarge, storage.AnySize("film-1"))

	require.NoError(t, storage.Save("film-1", SizeOriginal, []byte("original")))
	assert.Equal(t, SizeOriginal, storage.AnySize("film-1"))
}

func TestStorage_Delete(t *testing.T) {
	t.Run("removes every stored size", func(t *testing.T) {
		storage := setupTestStorage(t)

		require.NoError(t, storage.Save("film-1", SizeMedium, []byte("medium")))
		require.NoError(t, storage.Save("film-1", SizeOriginal, []byte("original")))

		require.NoError(t, storage.Delete("film-1"))
		assert.False(t, storage.Exists("film-1", SizeMedium))
		assert.False(t, storage.Exists("film-1", SizeOriginal))
	})

	t.Run("is a no-op for unknown film", func(t *testing.T) {
		storage := setupTestStorage(t)
		assert.NoError(t, storage.Delete("never-saved"))
	})
}

func TestStorage_Hash(t *testing.T) {
	storage := setupTestStorage(t)

	require.NoError(t, storage.Save("film-1", SizeMedium, []byte("test poster data")))

	hash, err := storage.Hash("film-1", SizeMedium)
	require.NoError(t, err)
	assert.Len(t, hash, 64, "hash should be 64 characters (SHA256)")

	// Identical content hashes identically.
	require.NoError(t, storage.Save("film-2", SizeMedium, []byte("test poster data")))
	hash2, err := storage.Hash("film-2", SizeMedium)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)

	_, err = storage.Hash("missing", SizeMedium)
	assert.Error(t, err)
}
