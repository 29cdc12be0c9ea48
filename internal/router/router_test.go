package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/swiftsave-helpdesk/internal/config"
	"github.com/deppfellow/swiftsave-helpdesk/internal/errs"
	"github.com/deppfellow/swiftsave-helpdesk/internal/handler"
	"github.com/deppfellow/swiftsave-helpdesk/internal/model/solicitud"
	"github.com/deppfellow/swiftsave-helpdesk/internal/repository"
	"github.com/deppfellow/swiftsave-helpdesk/internal/server"
	"github.com/deppfellow/swiftsave-helpdesk/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter wires the full middleware chain over an in-memory store.
// There is no database, so /status reports it as unhealthy.
func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	nop := zerolog.Nop()
	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			CORSAllowedOrigins: []string{"http://localhost:5173"},
		},
		Observability: config.DefaultObservabilityConfig(),
	}
	s := &server.Server{Config: cfg, Logger: &nop}

	services := &service.Services{
		Solicitudes: service.NewSolicitudService(repository.NewMemorySolicitudRepository()),
	}
	return NewRouter(s, handler.NewHandlers(s, services))
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createBody(documento string) string {
	return fmt.Sprintf(`{"cliente":"Ana Pérez","documento":%q,"email":"ana@example.com","monto_inicial":500000}`, documento)
}

func create(t *testing.T, e *echo.Echo, documento string) solicitud.Solicitud {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/casos", createBody(documento))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[solicitud.Solicitud](t, rec)
}

func TestCasos_Create(t *testing.T) {
	e := newTestRouter(t)

	created := create(t, e, "12345678")
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Ana Pérez", created.Cliente)
	assert.Equal(t, "12345678", created.Documento)
	assert.Equal(t, 500000.0, created.MontoInicial)
	assert.Equal(t, solicitud.EstadoPendiente, created.Estado)
	assert.False(t, created.FechaCreacion.IsZero())

	t.Run("duplicate documento", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/casos", createBody("12345678"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errs.HTTPError](t, rec)
		assert.Equal(t, "DUPLICATE_DOCUMENT", body.Code)
		assert.Equal(t, "Ya existe una solicitud con el documento 12345678", body.Message)
	})

	t.Run("field violations", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/casos",
			`{"cliente":"Al","documento":"12a","email":"not-an-email","monto_inicial":0}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := decode[errs.HTTPError](t, rec)
		assert.Equal(t, "VALIDATION_ERROR", body.Code)

		fields := map[string]bool{}
		for _, fe := range body.Errors {
			fields[fe.Field] = true
		}
		assert.Equal(t, map[string]bool{
			"cliente": true, "documento": true, "email": true, "monto_inicial": true,
		}, fields)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/casos", `{}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode[errs.HTTPError](t, rec)
		assert.Len(t, body.Errors, 4)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/casos", `{"cliente": nope}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode[errs.HTTPError](t, rec)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "body", body.Errors[0].Field)
	})

	t.Run("wrong type", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/casos",
			`{"cliente":"Ana","documento":"12345","email":"a@b.co","monto_inicial":"mucho"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode[errs.HTTPError](t, rec)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "monto_inicial", body.Errors[0].Field)
	})
}

func TestCasos_List(t *testing.T) {
	e := newTestRouter(t)

	for i := 0; i < 12; i++ {
		create(t, e, fmt.Sprintf("%08d", i))
	}

	rec := do(t, e, http.MethodGet, "/casos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[solicitud.Page](t, rec)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 1, page.Pagina)
	assert.Equal(t, 10, page.PorPagina)
	assert.Equal(t, 2, page.TotalPaginas)
	assert.Len(t, page.Solicitudes, 10)

	rec = do(t, e, http.MethodGet, "/casos/?pagina=2&por_pagina=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[solicitud.Page](t, rec)
	assert.Len(t, page.Solicitudes, 2)

	rec = do(t, e, http.MethodGet, "/casos?estado=Cerrado", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[solicitud.Page](t, rec)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 0, page.TotalPaginas)
	assert.NotNil(t, page.Solicitudes)

	for _, query := range []string{"pagina=0", "por_pagina=101", "estado=Abierto", "pagina=abc"} {
		rec = do(t, e, http.MethodGet, "/casos?"+query, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, query)
	}
}

func TestCasos_GetUpdateDelete(t *testing.T) {
	e := newTestRouter(t)
	created := create(t, e, "87654321")
	path := "/casos/" + created.ID.String()

	rec := do(t, e, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[solicitud.Solicitud](t, rec))

	rec = do(t, e, http.MethodPatch, path, `{"estado":"Pendiente"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "STATUS_UNCHANGED", decode[errs.HTTPError](t, rec).Code)

	rec = do(t, e, http.MethodPatch, path, `{"estado":"Abierto"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, e, http.MethodPatch, path, `{"estado":"Procesando"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[solicitud.Solicitud](t, rec)
	assert.Equal(t, solicitud.EstadoProcesando, updated.Estado)
	assert.Equal(t, created.Documento, updated.Documento)
	assert.True(t, created.FechaCreacion.Equal(updated.FechaCreacion))

	rec = do(t, e, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := decode[solicitud.DeleteResult](t, rec)
	assert.Equal(t, "Solicitud eliminada exitosamente", deleted.Mensaje)
	assert.Equal(t, created.ID.String(), deleted.ID)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = do(t, e, method, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.Equal(t, "SOLICITUD_NOT_FOUND", decode[errs.HTTPError](t, rec).Code)
	}
	rec = do(t, e, http.MethodPatch, path, `{"estado":"Cerrado"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCasos_InvalidID(t *testing.T) {
	e := newTestRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := do(t, e, method, "/casos/not-an-id", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, method)
		body := decode[errs.HTTPError](t, rec)
		assert.Equal(t, "INVALID_ID", body.Code)
		assert.Equal(t, "ID de solicitud inválido", body.Message)
	}

	rec := do(t, e, http.MethodPatch, "/casos/not-an-id", `{"estado":"Cerrado"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSystemRoutes(t *testing.T) {
	e := newTestRouter(t)

	rec := do(t, e, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	root := decode[map[string]string](t, rec)
	assert.Equal(t, config.Version, root["version"])
	assert.Equal(t, "/docs", root["documentacion"])

	rec = do(t, e, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])

	rec = do(t, e, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database not initialized")

	rec = do(t, e, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[errs.HTTPError](t, rec).Code)

	rec = do(t, e, http.MethodGet, "/casos", "")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}
