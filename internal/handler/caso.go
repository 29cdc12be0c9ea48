package handler

import (
	"github.com/deppfellow/swiftsave-helpdesk/internal/model/solicitud"
	"github.com/deppfellow/swiftsave-helpdesk/internal/server"
	"github.com/deppfellow/swiftsave-helpdesk/internal/service"
	"github.com/labstack/echo/v4"
)

// CasoHandler serves the /casos endpoints.
type CasoHandler struct {
	Handler
	solicitudes *service.SolicitudService
}

func NewCasoHandler(s *server.Server, solicitudes *service.SolicitudService) *CasoHandler {
	return &CasoHandler{
		Handler:     NewHandler(s),
		solicitudes: solicitudes,
	}
}

func (h *CasoHandler) Create(c echo.Context, req *solicitud.CreateSolicitudRequest) (*solicitud.Solicitud, error) {
	return h.solicitudes.Create(c.Request().Context(), req)
}

func (h *CasoHandler) List(c echo.Context, req *solicitud.ListSolicitudesRequest) (*solicitud.Page, error) {
	return h.solicitudes.List(c.Request().Context(), req.Pagina, req.PorPagina, req.Filter())
}

func (h *CasoHandler) Get(c echo.Context, req *solicitud.SolicitudIDRequest) (*solicitud.Solicitud, error) {
	return h.solicitudes.Get(c.Request().Context(), req.ID)
}

func (h *CasoHandler) UpdateEstado(c echo.Context, req *solicitud.UpdateEstadoRequest) (*solicitud.Solicitud, error) {
	return h.solicitudes.UpdateStatus(c.Request().Context(), req.ID, req.Estado)
}

func (h *CasoHandler) Delete(c echo.Context, req *solicitud.SolicitudIDRequest) (*solicitud.DeleteResult, error) {
	return h.solicitudes.Delete(c.Request().Context(), req.ID)
}
