package posters

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matineeapp/matinee-server/internal/http/response"
)

// Handler serves stored poster bytes at GET /api/v1/films/{id}/poster.
type Handler struct {
	storage *Storage
	logger  *slog.Logger
}

// NewHandler creates a poster-serving handler.
func NewHandler(storage *Storage, logger *slog.Logger) *Handler {
	return &Handler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP serves a film's poster. The size query parameter picks a
// variant (default medium); when the requested variant is not stored the
// handler falls back to whatever size is, so a film that only has the
// archive thumbnail still renders.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	identifier := chi.URLParam(r, "id")
	if identifier == "" {
		response.BadRequest(w, "missing film identifier", h.logger)
		return
	}

	size := r.URL.Query().Get("size")
	if size == "" {
		size = SizeMedium
	}
	if !ValidSize(size) {
		response.BadRequest(w, "unknown poster size", h.logger)
		return
	}

	if !h.storage.Exists(identifier, size) {
		size = h.storage.AnySize(identifier)
		if size == "" {
			response.NotFound(w, "poster not found", h.logger)
			return
		}
	}

	etag, err := h.storage.Hash(identifier, size)
	if err != nil {
		response.NotFound(w, "poster not found", h.logger)
		return
	}

	if match := r.Header.Get("If-None-Match"); match != "" && match == `"`+etag+`"` {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	data, err := h.storage.Get(identifier, size)
	if err != nil {
		response.NotFound(w, "poster not found", h.logger)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("ETag", `"`+etag+`"`)
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := w.Write(data); err != nil {
		h.logger.Debug("failed to write poster response",
			"identifier", identifier,
			"error", err,
		)
	}
}
