package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerInstanceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getInstance",
		Method:      http.MethodGet,
		Path:        "/api/v1/instance",
		Summary:     "Get server instance",
		Description: "Returns instance identity and capability flags",
		Tags:        []string{"Instance"},
	}, s.handleGetInstance)
}

// InstanceResponse contains server instance data in API responses.
type InstanceResponse struct {
	ID                string `json:"id" doc:"Instance ID"`
	Name              string `json:"name" doc:"Server name"`
	Version           string `json:"version" doc:"Server version"`
	Environment       string `json:"environment" doc:"Runtime environment"`
	Collection        string `json:"collection" doc:"Archive collection being browsed"`
	EnrichmentEnabled bool   `json:"enrichmentEnabled" doc:"Whether metadata enrichment is active"`
}

// InstanceOutput wraps the instance response for Huma.
type InstanceOutput struct {
	Body InstanceResponse
}

func (s *Server) handleGetInstance(ctx context.Context, _ *struct{}) (*InstanceOutput, error) {
	info, err := s.services.Instance.Info(ctx)
	if err != nil {
		return nil, err
	}

	return &InstanceOutput{
		Body: InstanceResponse{
			ID:                info.ID,
			Name:              info.Name,
			Version:           info.Version,
			Environment:       info.Environment,
			Collection:        info.Collection,
			EnrichmentEnabled: info.EnrichmentEnabled,
		},
	}, nil
}
