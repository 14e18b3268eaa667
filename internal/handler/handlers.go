// Package handler is the first layer after the router.
//
// It binds and validates requests through the typed Handle pipeline,
// calls the service layer and writes the response.
package handler

import (
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/deppfellow/phonebook/internal/service"
)

// Handlers groups all HTTP handlers so the router receives one value.
type Handlers struct {
	Contact *ContactHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Contact: NewContactHandler(s, services.Contacts),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
