package handler

import (
	"net/http"

	"github.com/deppfellow/swiftsave-helpdesk/internal/config"
	"github.com/deppfellow/swiftsave-helpdesk/internal/server"
	"github.com/labstack/echo/v4"
)

const serviceDisplayName = "SwiftSave HelpDesk API"

// SystemHandler serves the static identity endpoints.
type SystemHandler struct {
	Handler
}

func NewSystemHandler(s *server.Server) *SystemHandler {
	return &SystemHandler{Handler: NewHandler(s)}
}

type rootResponse struct {
	Mensaje       string `json:"mensaje"`
	Version       string `json:"version"`
	Documentacion string `json:"documentacion"`
}

type livenessResponse struct {
	Status   string `json:"status"`
	Servicio string `json:"servicio"`
}

// Root describes the service and points at the docs.
func (h *SystemHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, rootResponse{
		Mensaje:       "Bienvenido a " + serviceDisplayName,
		Version:       config.Version,
		Documentacion: "/docs",
	})
}

// Health is a liveness probe; it never touches dependencies. /status reports those.
func (h *SystemHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, livenessResponse{
		Status:   "healthy",
		Servicio: serviceDisplayName,
	})
}
