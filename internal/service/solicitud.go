package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/deppfellow/swiftsave-helpdesk/internal/errs"
	"github.com/deppfellow/swiftsave-helpdesk/internal/model/solicitud"
	"github.com/deppfellow/swiftsave-helpdesk/internal/repository"
	"github.com/deppfellow/swiftsave-helpdesk/internal/sqlerr"
	"github.com/deppfellow/swiftsave-helpdesk/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SolicitudStore is the persistence contract of SolicitudService.
// Lookups of missing ids return repository.ErrNotFound.
type SolicitudStore interface {
	ExistsByDocumento(ctx context.Context, documento string) (bool, error)
	Create(ctx context.Context, s solicitud.Solicitud) (*solicitud.Solicitud, error)
	GetByID(ctx context.Context, id uuid.UUID) (*solicitud.Solicitud, error)
	List(ctx context.Context, filter solicitud.Filter, offset, limit int) ([]solicitud.Solicitud, error)
	Count(ctx context.Context, filter solicitud.Filter) (int64, error)
	UpdateEstado(ctx context.Context, id uuid.UUID, estado solicitud.Estado) (*solicitud.Solicitud, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SolicitudService implements the /casos operations.
//
// Every error it returns is an *errs.HTTPError; store failures are wrapped
// as 500s with the driver error kept as cause.
type SolicitudService struct {
	store SolicitudStore
}

func NewSolicitudService(store SolicitudStore) *SolicitudService {
	return &SolicitudService{store: store}
}

// Create registers a new Pendiente solicitud.
//
// The documento check and the insert are separate round trips; the unique
// index on documento turns a lost race into the same DUPLICATE_DOCUMENT error.
func (s *SolicitudService) Create(ctx context.Context, req *solicitud.CreateSolicitudRequest) (*solicitud.Solicitud, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	exists, err := s.store.ExistsByDocumento(ctx, req.Documento)
	if err != nil {
		return nil, errs.NewInternalError("Error al crear la solicitud", err)
	}
	if exists {
		return nil, ErrDuplicateDocument(req.Documento)
	}

	created, err := s.store.Create(ctx, solicitud.New(req.Cliente, req.Documento, req.Email, req.Amount()))
	if err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return nil, ErrDuplicateDocument(req.Documento).WithCause(err)
		}
		return nil, errs.NewInternalError("Error al crear la solicitud", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("solicitud_id", created.ID.String()).
		Msg("solicitud created")

	return created, nil
}

// List returns one page of solicitudes, newest first.
func (s *SolicitudService) List(ctx context.Context, page, pageSize int, filter solicitud.Filter) (*solicitud.Page, error) {
	var v validation.CustomValidationErrors
	if page < 1 {
		v = v.AddValue("pagina", strconv.Itoa(page), "must be at least 1")
	}
	if pageSize < 1 || pageSize > solicitud.MaxPageSize {
		v = v.AddValue("por_pagina", strconv.Itoa(pageSize), "must be between 1 and 100")
	}
	if filter.Estado != nil && !filter.Estado.Valid() {
		v = v.AddValue("estado", string(*filter.Estado), validation.OneOf(string(*filter.Estado), solicitud.EstadoNames()...)...)
	}
	if err := v.Err(); err != nil {
		return nil, validationError(err)
	}

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, errs.NewInternalError("Error al obtener solicitudes", err)
	}

	records := []solicitud.Solicitud{}

	// Pages past the last one are empty. Checking against total first also
	// keeps (page-1)*pageSize within total, so it cannot overflow.
	if total > 0 && int64(page-1) <= (total-1)/int64(pageSize) {
		records, err = s.store.List(ctx, filter, (page-1)*pageSize, pageSize)
		if err != nil {
			return nil, errs.NewInternalError("Error al obtener solicitudes", err)
		}
		if records == nil {
			records = []solicitud.Solicitud{}
		}
	}

	return &solicitud.Page{
		Total:        total,
		Pagina:       page,
		PorPagina:    pageSize,
		TotalPaginas: solicitud.TotalPages(total, pageSize),
		Solicitudes:  records,
	}, nil
}

func (s *SolicitudService) Get(ctx context.Context, id string) (*solicitud.Solicitud, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	found, err := s.store.GetByID(ctx, uid)
	if err != nil {
		return nil, storeError(err, id, "Error al obtener la solicitud")
	}
	return found, nil
}

// UpdateStatus changes only the estado of a solicitud. Setting the status
// it already has is rejected with STATUS_UNCHANGED.
func (s *SolicitudService) UpdateStatus(ctx context.Context, id string, estado solicitud.Estado) (*solicitud.Solicitud, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	if !estado.Valid() {
		var v validation.CustomValidationErrors
		v = v.AddValue("estado", string(estado), validation.OneOf(string(estado), solicitud.EstadoNames()...)...)
		return nil, validationError(v)
	}

	current, err := s.store.GetByID(ctx, uid)
	if err != nil {
		return nil, storeError(err, id, "Error al actualizar la solicitud")
	}
	if current.Estado == estado {
		return nil, ErrStatusUnchanged(estado)
	}

	updated, err := s.store.UpdateEstado(ctx, uid, estado)
	if err != nil {
		return nil, storeError(err, id, "Error al actualizar la solicitud")
	}

	zerolog.Ctx(ctx).Info().
		Str("solicitud_id", id).
		Str("from", current.Estado.String()).
		Str("to", estado.String()).
		Msg("solicitud status updated")

	return updated, nil
}

func (s *SolicitudService) Delete(ctx context.Context, id string) (*solicitud.DeleteResult, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, uid); err != nil {
		return nil, storeError(err, id, "Error al eliminar la solicitud")
	}

	zerolog.Ctx(ctx).Info().Str("solicitud_id", id).Msg("solicitud deleted")

	return &solicitud.DeleteResult{
		Mensaje: "Solicitud eliminada exitosamente",
		ID:      uid.String(),
	}, nil
}

func parseID(id string) (uuid.UUID, error) {
	if !validation.IsValidUUID(id) {
		return uuid.Nil, ErrInvalidID(id)
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrInvalidID(id)
	}
	return uid, nil
}

func storeError(err error, id, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSolicitudNotFound(id)
	}
	return errs.NewInternalError(message, err)
}

func validationError(err error) error {
	var v validation.CustomValidationErrors
	if !errors.As(err, &v) {
		return errs.ValidationError([]errs.FieldError{{Field: "body", Error: err.Error()}})
	}
	fieldErrors := make([]errs.FieldError, 0, len(v))
	for _, e := range v {
		fieldErrors = append(fieldErrors, errs.FieldError{Field: e.Field, Error: e.Message, Value: e.Value})
	}
	return errs.ValidationError(fieldErrors)
}
