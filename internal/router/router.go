// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"net/http"

	"github.com/deppfellow/swiftsave-helpdesk/internal/handler"
	"github.com/deppfellow/swiftsave-helpdesk/internal/middleware"
	"github.com/deppfellow/swiftsave-helpdesk/internal/model/solicitud"
	"github.com/deppfellow/swiftsave-helpdesk/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance with the global middleware chain,
// the system routes and the /casos API.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Pre(middlewares.Global.RemoveTrailingSlash())

	// Order matters: the request id feeds tracing and the context logger,
	// which the request logger then reads.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)
	registerCasoRoutes(router, h.Caso, middlewares.RateLimit)

	return router
}

func registerCasoRoutes(r *echo.Echo, h *handler.CasoHandler, rl *middleware.RateLimitMiddleware) {
	casos := r.Group("/casos")

	casos.POST("", handler.Handle(
		h.Handler,
		h.Create,
		http.StatusCreated,
		&solicitud.CreateSolicitudRequest{},
	), rl.Limit("casos:create"))

	casos.GET("", handler.Handle(
		h.Handler,
		h.List,
		http.StatusOK,
		&solicitud.ListSolicitudesRequest{},
	))

	casos.GET("/:id", handler.Handle(
		h.Handler,
		h.Get,
		http.StatusOK,
		&solicitud.SolicitudIDRequest{},
	))

	casos.PATCH("/:id", handler.Handle(
		h.Handler,
		h.UpdateEstado,
		http.StatusOK,
		&solicitud.UpdateEstadoRequest{},
	))

	casos.DELETE("/:id", handler.Handle(
		h.Handler,
		h.Delete,
		http.StatusOK,
		&solicitud.SolicitudIDRequest{},
	))
}
