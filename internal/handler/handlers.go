package handler

import (
	"github.com/deppfellow/swiftsave-helpdesk/internal/server"
	"github.com/deppfellow/swiftsave-helpdesk/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Caso    *CasoHandler
	System  *SystemHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Caso:    NewCasoHandler(s, services.Solicitudes),
		System:  NewSystemHandler(s),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
