// Package solicitud defines the account-opening request record, its status
// lifecycle and the request/response payloads of the /casos endpoints.
package solicitud

import (
	"time"

	"github.com/google/uuid"
)

// Estado is the processing status of a Solicitud.
type Estado string

const (
	EstadoPendiente  Estado = "Pendiente"
	EstadoProcesando Estado = "Procesando"
	EstadoCerrado    Estado = "Cerrado"
)

// Estados lists every status, in lifecycle order.
var Estados = []Estado{EstadoPendiente, EstadoProcesando, EstadoCerrado}

// Valid reports whether e is one of the known statuses. Matching is case-sensitive.
func (e Estado) Valid() bool {
	for _, s := range Estados {
		if e == s {
			return true
		}
	}
	return false
}

func (e Estado) String() string {
	return string(e)
}

// Solicitud is a persisted savings-account opening request.
type Solicitud struct {
	ID            uuid.UUID `json:"_id" db:"id"`
	Cliente       string    `json:"cliente" db:"cliente"`
	Documento     string    `json:"documento" db:"documento"`
	Email         string    `json:"email" db:"email"`
	MontoInicial  float64   `json:"monto_inicial" db:"monto_inicial"`
	Estado        Estado    `json:"estado" db:"estado"`
	FechaCreacion time.Time `json:"fecha_creacion" db:"fecha_creacion"`
}

// New builds a fresh Pendiente record stamped with the current UTC time.
func New(cliente, documento, email string, montoInicial float64) Solicitud {
	return Solicitud{
		ID:            uuid.New(),
		Cliente:       cliente,
		Documento:     documento,
		Email:         email,
		MontoInicial:  montoInicial,
		Estado:        EstadoPendiente,
		FechaCreacion: time.Now().UTC(),
	}
}

// Filter narrows a listing. A nil Estado matches every status.
type Filter struct {
	Estado *Estado
}

// Matches reports whether s passes the filter.
func (f Filter) Matches(s Solicitud) bool {
	return f.Estado == nil || s.Estado == *f.Estado
}

// Page is one page of a listing plus its pagination metadata.
type Page struct {
	Total        int64       `json:"total"`
	Pagina       int         `json:"pagina"`
	PorPagina    int         `json:"por_pagina"`
	TotalPaginas int         `json:"total_paginas"`
	Solicitudes  []Solicitud `json:"solicitudes"`
}

// TotalPages is ceil(total / pageSize), and 0 when total is 0.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// DeleteResult confirms a deletion.
type DeleteResult struct {
	Mensaje string `json:"mensaje"`
	ID      string `json:"id"`
}
