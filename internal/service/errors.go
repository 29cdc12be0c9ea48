package service

import (
	"fmt"

	"github.com/deppfellow/swiftsave-helpdesk/internal/errs"
	"github.com/deppfellow/swiftsave-helpdesk/internal/model/solicitud"
)

// Error codes returned by the solicitud operations.
const (
	CodeDuplicateDocument = "DUPLICATE_DOCUMENT"
	CodeInvalidID         = "INVALID_ID"
	CodeSolicitudNotFound = "SOLICITUD_NOT_FOUND"
	CodeStatusUnchanged   = "STATUS_UNCHANGED"
)

func ErrDuplicateDocument(documento string) *errs.HTTPError {
	code := CodeDuplicateDocument
	return errs.NewBadRequestError(
		fmt.Sprintf("Ya existe una solicitud con el documento %s", documento),
		true,
		&code,
		[]errs.FieldError{{Field: "documento", Error: "already registered", Value: documento}},
		nil,
	)
}

func ErrInvalidID(id string) *errs.HTTPError {
	code := CodeInvalidID
	return errs.NewBadRequestError(
		"ID de solicitud inválido",
		true,
		&code,
		[]errs.FieldError{{Field: "id", Error: "must be a valid UUID", Value: id}},
		nil,
	)
}

func ErrSolicitudNotFound(id string) *errs.HTTPError {
	code := CodeSolicitudNotFound
	err := errs.NewNotFoundError("Solicitud no encontrada", true, &code)
	err.Errors = []errs.FieldError{{Field: "id", Error: "does not exist", Value: id}}
	return err
}

func ErrStatusUnchanged(estado solicitud.Estado) *errs.HTTPError {
	code := CodeStatusUnchanged
	return errs.NewBadRequestError(
		fmt.Sprintf("La solicitud ya tiene el estado %s", estado),
		true,
		&code,
		[]errs.FieldError{{Field: "estado", Error: "is already the current status", Value: string(estado)}},
		nil,
	)
}
