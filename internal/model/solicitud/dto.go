package solicitud

import (
	"strconv"

	"github.com/deppfellow/swiftsave-helpdesk/internal/validation"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ------------------------------------------------------------

// CreateSolicitudRequest is the body of POST /casos.
//
// MontoInicial is a pointer so a missing amount is reported as required
// rather than as "must be greater than 0".
type CreateSolicitudRequest struct {
	Cliente      string   `json:"cliente"`
	Documento    string   `json:"documento"`
	Email        string   `json:"email"`
	MontoInicial *float64 `json:"monto_inicial"`
}

// Validate checks every field and trims cliente and documento in place.
// All violations are reported, in field order.
func (r *CreateSolicitudRequest) Validate() error {
	var v validation.CustomValidationErrors

	cliente, msgs := validation.ClientName(r.Cliente)
	v = v.AddValue("cliente", r.Cliente, msgs...)
	r.Cliente = cliente

	documento, msgs := validation.DocumentID(r.Documento)
	v = v.AddValue("documento", r.Documento, msgs...)
	r.Documento = documento

	v = v.AddValue("email", r.Email, validation.Email(r.Email)...)
	v = v.AddValue("monto_inicial", formatAmount(r.MontoInicial), validation.InitialAmount(r.MontoInicial)...)

	return v.Err()
}

func formatAmount(amount *float64) string {
	if amount == nil {
		return ""
	}
	return strconv.FormatFloat(*amount, 'f', -1, 64)
}

// Amount returns the validated initial amount.
func (r *CreateSolicitudRequest) Amount() float64 {
	if r.MontoInicial == nil {
		return 0
	}
	return *r.MontoInicial
}

// ------------------------------------------------------------

// ListSolicitudesRequest holds the query parameters of GET /casos.
type ListSolicitudesRequest struct {
	Pagina    int    `query:"pagina" validate:"min=1"`
	PorPagina int    `query:"por_pagina" validate:"min=1,max=100"`
	Estado    Estado `query:"estado" validate:"omitempty,oneof=Pendiente Procesando Cerrado"`
}

func (r *ListSolicitudesRequest) SetDefaults() {
	r.Pagina = DefaultPage
	r.PorPagina = DefaultPageSize
}

func (r *ListSolicitudesRequest) Validate() error {
	return validation.Validator().Struct(r)
}

// Filter converts the optional estado parameter into a listing filter.
func (r *ListSolicitudesRequest) Filter() Filter {
	if r.Estado == "" {
		return Filter{}
	}
	estado := r.Estado
	return Filter{Estado: &estado}
}

// ------------------------------------------------------------

// SolicitudIDRequest carries the {id} path parameter of GET and DELETE /casos/{id}.
//
// The id is not checked here; the service rejects malformed ids with
// INVALID_ID (400) instead of a 422.
type SolicitudIDRequest struct {
	ID string `param:"id"`
}

func (r *SolicitudIDRequest) Validate() error {
	return nil
}

// ------------------------------------------------------------

// UpdateEstadoRequest is PATCH /casos/{id}: the path id plus the new status.
type UpdateEstadoRequest struct {
	ID     string `param:"id" json:"-"`
	Estado Estado `json:"estado"`
}

func (r *UpdateEstadoRequest) Validate() error {
	var v validation.CustomValidationErrors
	v = v.AddValue("estado", string(r.Estado), validation.OneOf(string(r.Estado), EstadoNames()...)...)
	return v.Err()
}

// EstadoNames returns the wire names of every status.
func EstadoNames() []string {
	names := make([]string, len(Estados))
	for i, e := range Estados {
		names[i] = string(e)
	}
	return names
}
