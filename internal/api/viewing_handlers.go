package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/matineeapp/matinee-server/internal/service"
)

func (s *Server) registerViewingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "updateProgress",
		Method:      http.MethodPut,
		Path:        "/api/v1/films/{id}/progress",
		Summary:     "Update playback progress",
		Description: "Records where playback stands. The reported position always wins, and a film near its end is marked finished.",
		Tags:        []string{"Viewing"},
	}, s.handleUpdateProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/films/{id}/progress",
		Summary:     "Get playback progress",
		Description: "Returns stored progress for a film",
		Tags:        []string{"Viewing"},
	}, s.handleGetProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetProgress",
		Method:      http.MethodDelete,
		Path:        "/api/v1/films/{id}/progress",
		Summary:     "Reset playback progress",
		Description: "Removes stored progress for a film, clearing its finished state",
		Tags:        []string{"Viewing"},
	}, s.handleResetProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "continueWatching",
		Method:      http.MethodGet,
		Path:        "/api/v1/continue-watching",
		Summary:     "Continue watching",
		Description: "Returns unfinished films, most recently played first",
		Tags:        []string{"Viewing"},
	}, s.handleContinueWatching)

	huma.Register(s.api, huma.Operation{
		OperationID: "addFavorite",
		Method:      http.MethodPut,
		Path:        "/api/v1/films/{id}/favorite",
		Summary:     "Add favorite",
		Description: "Marks a film on the current catalog page as a favorite",
		Tags:        []string{"Viewing"},
	}, s.handleAddFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFavorite",
		Method:      http.MethodDelete,
		Path:        "/api/v1/films/{id}/favorite",
		Summary:     "Remove favorite",
		Description: "Removes a film from favorites",
		Tags:        []string{"Viewing"},
	}, s.handleRemoveFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFavorites",
		Method:      http.MethodGet,
		Path:        "/api/v1/favorites",
		Summary:     "List favorites",
		Description: "Returns favorited films, newest first",
		Tags:        []string{"Viewing"},
	}, s.handleListFavorites)
}

// === DTOs ===

// UpdateProgressRequest is the request body for a progress report.
type UpdateProgressRequest struct {
	PositionSec int `json:"positionSec" doc:"Playback position in seconds"`
	DurationSec int `json:"durationSec" doc:"Total film duration in seconds"`
}

// UpdateProgressInput wraps the progress report for Huma.
type UpdateProgressInput struct {
	ID   string `path:"id" doc:"Archive identifier"`
	Body UpdateProgressRequest
}

// ProgressOutput wraps the progress response for Huma.
type ProgressOutput struct {
	Body service.ProgressResponse
}

// FilmIDInput identifies a film by its archive identifier.
type FilmIDInput struct {
	ID string `path:"id" doc:"Archive identifier"`
}

// ContinueWatchingInput contains parameters for the shelf listing.
type ContinueWatchingInput struct {
	Limit int `query:"limit" doc:"Maximum entries, default 10"`
}

// ContinueWatchingResponse contains the continue-watching shelf.
type ContinueWatchingResponse struct {
	Items []service.ContinueWatchingItem `json:"items" doc:"Unfinished films, most recent first"`
}

// ContinueWatchingOutput wraps the shelf for Huma.
type ContinueWatchingOutput struct {
	Body ContinueWatchingResponse
}

// FavoriteOutput wraps a single favorite for Huma.
type FavoriteOutput struct {
	Body service.FavoriteItem
}

// FavoritesResponse contains the favorites list.
type FavoritesResponse struct {
	Favorites []service.FavoriteItem `json:"favorites" doc:"Favorited films, newest first"`
}

// FavoritesOutput wraps the favorites list for Huma.
type FavoritesOutput struct {
	Body FavoritesResponse
}

// MessageResponse is a simple success message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleUpdateProgress(ctx context.Context, input *UpdateProgressInput) (*ProgressOutput, error) {
	progress, err := s.services.Viewing.UpdateProgress(ctx, input.ID, service.UpdateProgressRequest{
		PositionSec: input.Body.PositionSec,
		DurationSec: input.Body.DurationSec,
	})
	if err != nil {
		return nil, err
	}

	return &ProgressOutput{Body: *progress}, nil
}

func (s *Server) handleGetProgress(ctx context.Context, input *FilmIDInput) (*ProgressOutput, error) {
	progress, err := s.services.Viewing.GetProgress(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ProgressOutput{Body: *progress}, nil
}

func (s *Server) handleResetProgress(ctx context.Context, input *FilmIDInput) (*MessageOutput, error) {
	if err := s.services.Viewing.ResetProgress(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "progress reset"}}, nil
}

func (s *Server) handleContinueWatching(ctx context.Context, input *ContinueWatchingInput) (*ContinueWatchingOutput, error) {
	items, err := s.services.Viewing.ContinueWatching(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ContinueWatchingOutput{Body: ContinueWatchingResponse{Items: items}}, nil
}

func (s *Server) handleAddFavorite(ctx context.Context, input *FilmIDInput) (*FavoriteOutput, error) {
	favorite, err := s.services.Viewing.AddFavorite(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &FavoriteOutput{Body: *favorite}, nil
}

func (s *Server) handleRemoveFavorite(ctx context.Context, input *FilmIDInput) (*MessageOutput, error) {
	if err := s.services.Viewing.RemoveFavorite(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "favorite removed"}}, nil
}

func (s *Server) handleListFavorites(ctx context.Context, _ *struct{}) (*FavoritesOutput, error) {
	favorites, err := s.services.Viewing.Favorites(ctx)
	if err != nil {
		return nil, err
	}

	return &FavoritesOutput{Body: FavoritesResponse{Favorites: favorites}}, nil
}
