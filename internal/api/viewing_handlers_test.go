package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matineeapp/matinee-server/internal/service"
)

func TestUpdateProgress_RoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	ts.browseAndSettle(t)

	resp := ts.api.Put("/api/v1/films/night_of_the_living_dead/progress", map[string]any{
		"positionSec": 300,
		"durationSec": 5742,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[service.ProgressResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	assert.Equal(t, "night_of_the_living_dead", envelope.Data.FilmID)
	assert.Equal(t, 300, envelope.Data.PositionSec)
	assert.Equal(t, 5742, envelope.Data.DurationSec)
	assert.InDelta(t, 300.0/5742.0, envelope.Data.Progress, 0.001)
	assert.False(t, envelope.Data.Finished)
	// Title and year are denormalized from the snapshot.
	assert.Equal(t, "Night of the Living Dead", envelope.Data.Title)
	assert.Equal(t, 1968, envelope.Data.Year)
	assert.False(t, envelope.Data.LastPlayedAt.IsZero())

	resp = ts.api.Get("/api/v1/films/night_of_the_living_dead/progress")
	require.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 300, envelope.Data.PositionSec)
}

func TestUpdateProgress_ValidationError(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/films/some_film/progress", map[string]any{
		"positionSec": 10,
		"durationSec": 0,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope testErrorEnvelope
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Equal(t, "validation failed", envelope.Message)
	assert.Contains(t, envelope.Details, "durationSec")
}

func TestUpdateProgress_ScrubbingBackKeepsFinished(t *testing.T) {
	ts := setupTestServer(t)
	ts.browseAndSettle(t)

	resp := ts.api.Put("/api/v1/films/night_of_the_living_dead/progress", map[string]any{
		"positionSec": 5600,
		"durationSec": 5742,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.ProgressResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Finished)
	require.NotNil(t, envelope.Data.FinishedAt)

	// Rewatching from the start moves the position but the film
	// stays watched.
	resp = ts.api.Put("/api/v1/films/night_of_the_living_dead/progress", map[string]any{
		"positionSec": 100,
		"durationSec": 5742,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 100, envelope.Data.PositionSec)
	assert.True(t, envelope.Data.Finished)
}

func TestGetProgress_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/films/never_played/progress")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testErrorEnvelope
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestResetProgress(t *testing.T) {
	ts := setupTestServer(t)
	ts.browseAndSettle(t)

	resp := ts.api.Put("/api/v1/films/night_of_the_living_dead/progress", map[string]any{
		"positionSec": 300,
		"durationSec": 5742,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/films/night_of_the_living_dead/progress")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[MessageResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "progress reset", envelope.Data.Message)

	resp = ts.api.Get("/api/v1/films/night_of_the_living_dead/progress")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestContinueWatching(t *testing.T) {
	ts := setupTestServer(t)
	ts.browseAndSettle(t)

	resp := ts.api.Put("/api/v1/films/night_of_the_living_dead/progress", map[string]any{
		"positionSec": 300,
		"durationSec": 5742,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	time.Sleep(10 * time.Millisecond)

	resp = ts.api.Put("/api/v1/films/the_great_train_robbery/progress", map[string]any{
		"positionSec": 120,
		"durationSec": 660,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/continue-watching")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ContinueWatchingResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Items, 2)
	assert.Equal(t, "the_great_train_robbery", envelope.Data.Items[0].FilmID)
	assert.Equal(t, "night_of_the_living_dead", envelope.Data.Items[1].FilmID)

	// Finishing a film drops it off the shelf.
	resp = ts.api.Put("/api/v1/films/the_great_train_robbery/progress", map[string]any{
		"positionSec": 650,
		"durationSec": 660,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/continue-watching")
	require.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Items, 1)
	assert.Equal(t, "night_of_the_living_dead", envelope.Data.Items[0].FilmID)
}

func TestContinueWatching_LimitApplied(t *testing.T) {
	ts := setupTestServer(t)
	ts.browseAndSettle(t)

	for _, id := range []string{"night_of_the_living_dead", "the_great_train_robbery"} {
		resp := ts.api.Put("/api/v1/films/"+id+"/progress", map[string]any{
			"positionSec": 60,
			"durationSec": 600,
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/continue-watching?limit=1")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ContinueWatchingResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Items, 1)
}

func TestFavorites_RoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	ts.browseAndSettle(t)

	resp := ts.api.Put("/api/v1/films/night_of_the_living_dead/favorite")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var favorite testEnvelope[service.FavoriteItem]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &favorite))
	assert.Equal(t, "night_of_the_living_dead", favorite.Data.FilmID)
	assert.Equal(t, "Night of the Living Dead", favorite.Data.Title)
	assert.Equal(t, 1968, favorite.Data.Year)
	assert.False(t, favorite.Data.AddedAt.IsZero())

	// Re-adding is idempotent.
	resp = ts.api.Put("/api/v1/films/night_of_the_living_dead/favorite")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/favorites")
	require.Equal(t, http.StatusOK, resp.Code)

	var list testEnvelope[FavoritesResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Data.Favorites, 1)

	resp = ts.api.Delete("/api/v1/films/night_of_the_living_dead/favorite")
	require.Equal(t, http.StatusOK, resp.Code)

	var message testEnvelope[MessageResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &message))
	assert.Equal(t, "favorite removed", message.Data.Message)

	resp = ts.api.Get("/api/v1/favorites")
	require.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Empty(t, list.Data.Favorites)
}

func TestAddFavorite_NotInCatalog(t *testing.T) {
	ts := setupTestServer(t)
	ts.browseAndSettle(t)

	resp := ts.api.Put("/api/v1/films/never_heard_of_it/favorite")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testErrorEnvelope
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.Equal(t, "film not in current catalog", envelope.Message)
}
