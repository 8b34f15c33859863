package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matineeapp/matinee-server/internal/archive"
	"github.com/matineeapp/matinee-server/internal/catalog"
	"github.com/matineeapp/matinee-server/internal/config"
	"github.com/matineeapp/matinee-server/internal/enrich"
	"github.com/matineeapp/matinee-server/internal/logger"
	"github.com/matineeapp/matinee-server/internal/media/posters"
	"github.com/matineeapp/matinee-server/internal/metadata/moviedb"
	"github.com/matineeapp/matinee-server/internal/ratelimit"
	"github.com/matineeapp/matinee-server/internal/search"
	"github.com/matineeapp/matinee-server/internal/service"
	"github.com/matineeapp/matinee-server/internal/sse"
	"github.com/matineeapp/matinee-server/internal/store"
	"github.com/matineeapp/matinee-server/internal/store/sqlite"
	"github.com/matineeapp/matinee-server/internal/validation"
)

// catalogJSON is the advancedsearch page the fake archive serves: a
// feature with an external match, a short without one, and a fragment
// whose thumbnail is gone.
const catalogJSON = `{
  "response": {
    "numFound": 7412,
    "docs": [
      {
        "identifier": "night_of_the_living_dead",
        "title": "Night of the Living Dead",
        "year": 1968,
        "runtime": "1:35:42",
        "subject": ["Horror"],
        "downloads": 2141543,
        "avg_rating": 4.53,
        "description": "A group of strangers barricade themselves in a farmhouse."
      },
      {
        "identifier": "the_great_train_robbery",
        "title": "The Great Train Robbery",
        "year": 1903,
        "runtime": "11 min",
        "subject": ["Western"],
        "downloads": 402113
      },
      {
        "identifier": "lost_film_fragment",
        "title": "Lost Film Fragment",
        "subject": ["Drama"],
        "downloads": 93
      }
    ]
  }
}`

// testEnvelope mirrors the wire envelope for decoding responses in
// tests. The client embeds the same shape.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testErrorEnvelope decodes the coded error envelope.
type testErrorEnvelope struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// testPNG returns a tiny encoded PNG for the fake image endpoints.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 12))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(2, 3, color.RGBA{R: 0xd0, G: 0x20, B: 0x20, A: 0xff})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fakeSearcher serves ranked candidates from a fixed table keyed by
// the normalized query.
type fakeSearcher struct {
	mu         sync.Mutex
	candidates map[string][]enrich.Candidate
}

func (f *fakeSearcher) SearchFilms(_ context.Context, query string, _ int) ([]enrich.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.candidates[query], nil
}

type testServer struct {
	*Server
	api      humatest.TestAPI
	snapshot *catalog.Snapshot
}

// setupTestServer builds a server on real stores in temp dirs, with
// the archive and metadata provider faked behind one httptest server.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	discard := slog.New(slog.DiscardHandler)
	poster := testPNG(t)

	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/advancedsearch.php":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(catalogJSON))
		case strings.HasPrefix(r.URL.Path, "/services/img/"):
			// The fragment's thumbnail is gone from the archive.
			if strings.HasSuffix(r.URL.Path, "lost_film_fragment") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			w.Write(poster)
		case strings.HasPrefix(r.URL.Path, "/w342/") || strings.HasPrefix(r.URL.Path, "/original/"):
			w.Header().Set("Content-Type", "image/png")
			w.Write(poster)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fake.Close)

	st, err := store.New(t.TempDir(), discard)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	viewingStore, err := sqlite.Open(filepath.Join(t.TempDir(), "viewing.db"), discard)
	require.NoError(t, err)
	t.Cleanup(func() { viewingStore.Close() })

	index, err := search.NewFilmIndex(search.Options{DataPath: t.TempDir(), Logger: discard})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	storage, err := posters.NewStorage(t.TempDir())
	require.NoError(t, err)
	pipeline := posters.NewPipeline(storage, discard)

	searcher := &fakeSearcher{candidates: map[string][]enrich.Candidate{
		"Night of the Living Dead": {
			{
				ID:          10331,
				Title:       "Night of the Living Dead",
				PosterRef:   "/notld.jpg",
				Rating:      7.9,
				Overview:    "The living dead feast on the living.",
				ReleaseDate: "1968-10-04",
			},
		},
	}}
	resolver := enrich.NewResolver(enrich.ResolverOptions{
		Cache:    enrich.NewMatchCache(context.Background(), enrich.CacheOptions{}),
		Searcher: searcher,
		Pacer:    ratelimit.NewPacer(time.Millisecond),
		Logger:   logger.Nop(),
	})

	snapshot := catalog.NewSnapshot()
	sseManager := sse.NewManager(discard)
	validator := validation.New()

	cfg := &config.Config{}
	cfg.Server.Name = "Matinee Test"
	cfg.App.Environment = "test"
	cfg.Archive.Collection = "feature_films"
	cfg.Enrichment.Enabled = true

	searchSvc := service.NewSearchService(index, snapshot, discard)
	services := &Services{
		Instance: service.NewInstanceService(st, cfg, discard),
		Browse: service.NewBrowseService(service.BrowseDeps{
			Archive: archive.New(archive.Options{
				BaseURL: fake.URL,
				Logger:  discard,
			}),
			MovieDB: moviedb.New(moviedb.Options{
				APIKey:       "test-key",
				BaseURL:      fake.URL,
				ImageBaseURL: fake.URL,
				Logger:       discard,
			}),
			Resolver:          resolver,
			Snapshot:          snapshot,
			Search:            searchSvc,
			Pipeline:          pipeline,
			SSE:               sseManager,
			Validator:         validator,
			Logger:            discard,
			EnrichmentEnabled: true,
		}),
		Viewing: service.NewViewingService(viewingStore, snapshot, pipeline, validator, discard),
		Search:  searchSvc,
	}

	_, err = services.Instance.Initialize(context.Background())
	require.NoError(t, err)

	server := NewServer(ServerOptions{
		Services:          services,
		Store:             st,
		ViewingStore:      viewingStore,
		SSEManager:        sseManager,
		SSEHandler:        sse.NewHandler(sseManager, discard),
		PosterHandler:     posters.NewHandler(storage, discard),
		EnrichmentEnabled: true,
		Logger:            discard,
	})
	t.Cleanup(server.Close)

	return &testServer{
		Server:   server,
		api:      humatest.Wrap(t, server.api),
		snapshot: snapshot,
	}
}

// browseAndSettle loads the first catalog page through the API and
// waits until enrichment facts have landed on the snapshot, so later
// requests see settled films.
func (ts *testServer) browseAndSettle(t *testing.T) {
	t.Helper()

	resp := ts.api.Get("/api/v1/films")
	require.Equal(t, http.StatusOK, resp.Code, "browse failed: %s", resp.Body.String())

	require.Eventually(t, func() bool {
		for _, id := range []string{"night_of_the_living_dead", "the_great_train_robbery", "lost_film_fragment"} {
			film, ok := ts.snapshot.Film(id)
			if !ok || !film.MatchReported {
				return false
			}
			if film.ImageStatus == catalog.ImageUnknown {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)
}

// The poster route sits outside the JSON envelope: it serves raw image
// bytes with cache headers.
func TestPosterRoute_ServesStoredPoster(t *testing.T) {
	ts := setupTestServer(t)
	ts.browseAndSettle(t)

	var resp *httptest.ResponseRecorder
	// The poster download can trail the image-status settle by a
	// moment, so poll.
	require.Eventually(t, func() bool {
		resp = ts.api.Get("/api/v1/films/night_of_the_living_dead/poster")
		return resp.Code == http.StatusOK
	}, 5*time.Second, 25*time.Millisecond)

	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.NotEmpty(t, resp.Body.Bytes())

	etag := resp.Header().Get("ETag")
	require.NotEmpty(t, etag)

	resp = ts.api.Get("/api/v1/films/night_of_the_living_dead/poster", "If-None-Match: "+etag)
	assert.Equal(t, http.StatusNotModified, resp.Code)
}

func TestPosterRoute_UnknownFilm(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/films/never_heard_of_it/poster")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "poster not found", body["error"])
}
