package api

import (
	"github.com/matineeapp/matinee-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Instance *service.InstanceService
	Browse   *service.BrowseService
	Viewing  *service.ViewingService
	Search   *service.SearchService
}
