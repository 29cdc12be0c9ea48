package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/swiftsave-helpdesk/internal/errs"
	"github.com/deppfellow/swiftsave-helpdesk/internal/model/solicitud"
	"github.com/deppfellow/swiftsave-helpdesk/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(v float64) *float64 { return &v }

func validRequest(documento string) *solicitud.CreateSolicitudRequest {
	return &solicitud.CreateSolicitudRequest{
		Cliente:      "Ana Pérez",
		Documento:    documento,
		Email:        "ana@example.com",
		MontoInicial: amount(500000),
	}
}

func requireHTTPError(t *testing.T, err error, status int, code string) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, status, httpErr.Status)
	assert.Equal(t, code, httpErr.Code)
	return httpErr
}

// seed stores n records created one minute apart, the newest last.
func seed(t *testing.T, repo *repository.MemorySolicitudRepository, n int, estado func(i int) solicitud.Estado) []solicitud.Solicitud {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]solicitud.Solicitud, 0, n)
	for i := 0; i < n; i++ {
		s := solicitud.Solicitud{
			ID:            uuid.New(),
			Cliente:       fmt.Sprintf("Cliente %d", i),
			Documento:     fmt.Sprintf("%08d", i),
			Email:         fmt.Sprintf("c%d@example.com", i),
			MontoInicial:  1000,
			Estado:        estado(i),
			FechaCreacion: base.Add(time.Duration(i) * time.Minute),
		}
		_, err := repo.Create(context.Background(), s)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func pendiente(int) solicitud.Estado { return solicitud.EstadoPendiente }

func TestCreate_ThenGetReturnsSameRecord(t *testing.T) {
	svc := NewSolicitudService(repository.NewMemorySolicitudRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest(" 12345 "))
	require.NoError(t, err)
	assert.Equal(t, solicitud.EstadoPendiente, created.Estado)
	assert.Equal(t, "12345", created.Documento)
	assert.Equal(t, "Ana Pérez", created.Cliente)

	got, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreate_DuplicateDocument(t *testing.T) {
	svc := NewSolicitudService(repository.NewMemorySolicitudRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest("12345"))
	require.NoError(t, err)

	other := &solicitud.CreateSolicitudRequest{
		Cliente:      "Otro Cliente",
		Documento:    "12345",
		Email:        "otro@example.com",
		MontoInicial: amount(10),
	}
	_, err = svc.Create(ctx, other)

	httpErr := requireHTTPError(t, err, http.StatusBadRequest, CodeDuplicateDocument)
	assert.Contains(t, httpErr.Message, "12345")
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "12345", httpErr.Errors[0].Value)
}

// staleCheckStore never sees existing documents, as when two creations
// race past the existence check.
type staleCheckStore struct {
	*repository.MemorySolicitudRepository
}

func (staleCheckStore) ExistsByDocumento(context.Context, string) (bool, error) {
	return false, nil
}

func TestCreate_UniqueViolationOnInsertIsDuplicate(t *testing.T) {
	svc := NewSolicitudService(staleCheckStore{repository.NewMemorySolicitudRepository()})
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest("12345"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validRequest("12345"))
	requireHTTPError(t, err, http.StatusBadRequest, CodeDuplicateDocument)
}

func TestCreate_ValidationError(t *testing.T) {
	svc := NewSolicitudService(repository.NewMemorySolicitudRepository())

	req := validRequest("12a45")
	req.Cliente = "   "
	_, err := svc.Create(context.Background(), req)

	httpErr := requireHTTPError(t, err, http.StatusUnprocessableEntity, errs.ValidationCode)
	require.Len(t, httpErr.Errors, 2)
	assert.Equal(t, errs.FieldError{Field: "cliente", Error: "must not be empty", Value: "   "}, httpErr.Errors[0])
	assert.Equal(t, errs.FieldError{Field: "documento", Error: "must contain only digits", Value: "12a45"}, httpErr.Errors[1])
}

func TestList_Pagination(t *testing.T) {
	repo := repository.NewMemorySolicitudRepository()
	records := seed(t, repo, 25, pendiente)
	svc := NewSolicitudService(repo)
	ctx := context.Background()

	page, err := svc.List(ctx, 1, 10, solicitud.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 3, page.TotalPaginas)
	assert.Equal(t, 1, page.Pagina)
	assert.Equal(t, 10, page.PorPagina)
	require.Len(t, page.Solicitudes, 10)
	assert.Equal(t, records[24].ID, page.Solicitudes[0].ID)

	last, err := svc.List(ctx, 3, 10, solicitud.Filter{})
	require.NoError(t, err)
	require.Len(t, last.Solicitudes, 5)
	assert.Equal(t, records[0].ID, last.Solicitudes[4].ID)

	beyond, err := svc.List(ctx, 4, 10, solicitud.Filter{})
	require.NoError(t, err)
	assert.Empty(t, beyond.Solicitudes)
	assert.NotNil(t, beyond.Solicitudes)
}

// listSpy records every window requested from the store.
type listSpy struct {
	*repository.MemorySolicitudRepository
	offsets []int
}

func (s *listSpy) List(ctx context.Context, filter solicitud.Filter, offset, limit int) ([]solicitud.Solicitud, error) {
	s.offsets = append(s.offsets, offset)
	return s.MemorySolicitudRepository.List(ctx, filter, offset, limit)
}

func TestList_PageBeyondLastSkipsStore(t *testing.T) {
	repo := repository.NewMemorySolicitudRepository()
	seed(t, repo, 25, pendiente)
	spy := &listSpy{MemorySolicitudRepository: repo}
	svc := NewSolicitudService(spy)
	ctx := context.Background()

	for _, page := range []int{4, math.MaxInt64 / 5, math.MaxInt64} {
		got, err := svc.List(ctx, page, 10, solicitud.Filter{})
		require.NoError(t, err, page)
		assert.Equal(t, int64(25), got.Total)
		assert.Equal(t, 3, got.TotalPaginas)
		assert.Equal(t, page, got.Pagina)
		assert.NotNil(t, got.Solicitudes)
		assert.Empty(t, got.Solicitudes)
	}
	assert.Empty(t, spy.offsets)

	_, err := svc.List(ctx, 3, 10, solicitud.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int{20}, spy.offsets)
}

func TestList_Empty(t *testing.T) {
	svc := NewSolicitudService(repository.NewMemorySolicitudRepository())

	page, err := svc.List(context.Background(), 1, 10, solicitud.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 0, page.TotalPaginas)
	assert.NotNil(t, page.Solicitudes)
	assert.Empty(t, page.Solicitudes)
}

func TestList_FilterByEstadoSortedNewestFirst(t *testing.T) {
	repo := repository.NewMemorySolicitudRepository()
	seed(t, repo, 9, func(i int) solicitud.Estado {
		if i%3 == 0 {
			return solicitud.EstadoCerrado
		}
		return solicitud.EstadoProcesando
	})
	svc := NewSolicitudService(repo)

	cerrado := solicitud.EstadoCerrado
	page, err := svc.List(context.Background(), 1, 10, solicitud.Filter{Estado: &cerrado})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Solicitudes, 3)

	for i, s := range page.Solicitudes {
		assert.Equal(t, solicitud.EstadoCerrado, s.Estado)
		if i > 0 {
			assert.True(t, page.Solicitudes[i-1].FechaCreacion.After(s.FechaCreacion))
		}
	}
}

func TestList_RejectsBadPaging(t *testing.T) {
	svc := NewSolicitudService(repository.NewMemorySolicitudRepository())
	ctx := context.Background()

	_, err := svc.List(ctx, 0, 10, solicitud.Filter{})
	requireHTTPError(t, err, http.StatusUnprocessableEntity, errs.ValidationCode)

	_, err = svc.List(ctx, 1, 101, solicitud.Filter{})
	requireHTTPError(t, err, http.StatusUnprocessableEntity, errs.ValidationCode)

	abierto := solicitud.Estado("Abierto")
	_, err = svc.List(ctx, 1, 10, solicitud.Filter{Estado: &abierto})
	httpErr := requireHTTPError(t, err, http.StatusUnprocessableEntity, errs.ValidationCode)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "Abierto", httpErr.Errors[0].Value)
}

func TestUpdateStatus(t *testing.T) {
	repo := repository.NewMemorySolicitudRepository()
	original := seed(t, repo, 1, pendiente)[0]
	svc := NewSolicitudService(repo)
	ctx := context.Background()
	id := original.ID.String()

	_, err := svc.UpdateStatus(ctx, id, solicitud.EstadoPendiente)
	httpErr := requireHTTPError(t, err, http.StatusBadRequest, CodeStatusUnchanged)
	assert.Contains(t, httpErr.Message, "Pendiente")

	updated, err := svc.UpdateStatus(ctx, id, solicitud.EstadoCerrado)
	require.NoError(t, err)
	assert.Equal(t, solicitud.EstadoCerrado, updated.Estado)

	expected := original
	expected.Estado = solicitud.EstadoCerrado
	assert.Equal(t, expected, *updated)

	stored, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, expected, *stored)
}

func TestUpdateStatus_NotFoundAndInvalidEstado(t *testing.T) {
	svc := NewSolicitudService(repository.NewMemorySolicitudRepository())
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, uuid.NewString(), solicitud.EstadoCerrado)
	requireHTTPError(t, err, http.StatusNotFound, CodeSolicitudNotFound)

	_, err = svc.UpdateStatus(ctx, uuid.NewString(), "Abierto")
	requireHTTPError(t, err, http.StatusUnprocessableEntity, errs.ValidationCode)
}

func TestDelete(t *testing.T) {
	repo := repository.NewMemorySolicitudRepository()
	record := seed(t, repo, 1, pendiente)[0]
	svc := NewSolicitudService(repo)
	ctx := context.Background()
	id := record.ID.String()

	result, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, result.ID)
	assert.NotEmpty(t, result.Mensaje)

	_, err = svc.Get(ctx, id)
	requireHTTPError(t, err, http.StatusNotFound, CodeSolicitudNotFound)

	_, err = svc.Delete(ctx, id)
	requireHTTPError(t, err, http.StatusNotFound, CodeSolicitudNotFound)
}

// countingStore records how many times the store was reached.
type countingStore struct {
	*repository.MemorySolicitudRepository
	calls int
}

func (s *countingStore) GetByID(ctx context.Context, id uuid.UUID) (*solicitud.Solicitud, error) {
	s.calls++
	return s.MemorySolicitudRepository.GetByID(ctx, id)
}

func (s *countingStore) UpdateEstado(ctx context.Context, id uuid.UUID, e solicitud.Estado) (*solicitud.Solicitud, error) {
	s.calls++
	return s.MemorySolicitudRepository.UpdateEstado(ctx, id, e)
}

func (s *countingStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.calls++
	return s.MemorySolicitudRepository.Delete(ctx, id)
}

func TestInvalidIDRejectedBeforeStore(t *testing.T) {
	store := &countingStore{MemorySolicitudRepository: repository.NewMemorySolicitudRepository()}
	svc := NewSolicitudService(store)
	ctx := context.Background()

	for _, id := range []string{"", "abc", "507f1f77bcf86cd799439011", "3f2b8c1e-9d4a-4f6b-8a2e-1c5d7e9f0a1"} {
		_, err := svc.Get(ctx, id)
		requireHTTPError(t, err, http.StatusBadRequest, CodeInvalidID)

		_, err = svc.UpdateStatus(ctx, id, solicitud.EstadoCerrado)
		requireHTTPError(t, err, http.StatusBadRequest, CodeInvalidID)

		_, err = svc.Delete(ctx, id)
		requireHTTPError(t, err, http.StatusBadRequest, CodeInvalidID)
	}

	assert.Zero(t, store.calls)
}

// brokenStore fails every call the way an unreachable database would.
type brokenStore struct {
	err error
}

func (b brokenStore) ExistsByDocumento(context.Context, string) (bool, error) { return false, b.err }
func (b brokenStore) Create(context.Context, solicitud.Solicitud) (*solicitud.Solicitud, error) {
	return nil, b.err
}
func (b brokenStore) GetByID(context.Context, uuid.UUID) (*solicitud.Solicitud, error) {
	return nil, b.err
}
func (b brokenStore) List(context.Context, solicitud.Filter, int, int) ([]solicitud.Solicitud, error) {
	return nil, b.err
}
func (b brokenStore) Count(context.Context, solicitud.Filter) (int64, error) { return 0, b.err }
func (b brokenStore) UpdateEstado(context.Context, uuid.UUID, solicitud.Estado) (*solicitud.Solicitud, error) {
	return nil, b.err
}
func (b brokenStore) Delete(context.Context, uuid.UUID) error { return b.err }

func TestStoreFailuresAreInternal(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewSolicitudService(brokenStore{err: cause})
	ctx := context.Background()
	id := uuid.NewString()

	_, err := svc.Create(ctx, validRequest("12345"))
	requireHTTPError(t, err, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR")
	assert.ErrorIs(t, err, cause)

	_, err = svc.List(ctx, 1, 10, solicitud.Filter{})
	requireHTTPError(t, err, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR")

	_, err = svc.Get(ctx, id)
	requireHTTPError(t, err, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR")

	_, err = svc.UpdateStatus(ctx, id, solicitud.EstadoCerrado)
	requireHTTPError(t, err, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR")

	_, err = svc.Delete(ctx, id)
	httpErr := requireHTTPError(t, err, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR")
	assert.False(t, httpErr.Override)
}
