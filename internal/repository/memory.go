package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/deppfellow/swiftsave-helpdesk/internal/model/solicitud"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// MemorySolicitudRepository keeps solicitudes in process memory.
//
// It honours the same contract as SolicitudRepository, including the unique
// documento constraint, which it reports as a Postgres unique violation.
type MemorySolicitudRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]solicitud.Solicitud
}

func NewMemorySolicitudRepository() *MemorySolicitudRepository {
	return &MemorySolicitudRepository{records: make(map[uuid.UUID]solicitud.Solicitud)}
}

func (r *MemorySolicitudRepository) ExistsByDocumento(_ context.Context, documento string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasDocumento(documento), nil
}

func (r *MemorySolicitudRepository) Create(_ context.Context, s solicitud.Solicitud) (*solicitud.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasDocumento(s.Documento) {
		return nil, &pgconn.PgError{
			Severity:       "ERROR",
			Code:           "23505",
			Message:        "duplicate key value violates unique constraint",
			TableName:      "solicitudes",
			ConstraintName: "solicitudes_documento_key",
		}
	}
	r.records[s.ID] = s
	return &s, nil
}

func (r *MemorySolicitudRepository) GetByID(_ context.Context, id uuid.UUID) (*solicitud.Solicitud, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemorySolicitudRepository) List(_ context.Context, filter solicitud.Filter, offset, limit int) ([]solicitud.Solicitud, error) {
	matched := r.matching(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].FechaCreacion.Equal(matched[j].FechaCreacion) {
			return matched[i].FechaCreacion.After(matched[j].FechaCreacion)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	if offset < 0 || limit <= 0 || offset >= len(matched) {
		return []solicitud.Solicitud{}, nil
	}
	end := len(matched)
	if limit < end-offset {
		end = offset + limit
	}
	return append([]solicitud.Solicitud{}, matched[offset:end]...), nil
}

func (r *MemorySolicitudRepository) Count(_ context.Context, filter solicitud.Filter) (int64, error) {
	return int64(len(r.matching(filter))), nil
}

func (r *MemorySolicitudRepository) UpdateEstado(_ context.Context, id uuid.UUID, estado solicitud.Estado) (*solicitud.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.Estado = estado
	r.records[id] = s
	return &s, nil
}

func (r *MemorySolicitudRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *MemorySolicitudRepository) matching(filter solicitud.Filter) []solicitud.Solicitud {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]solicitud.Solicitud, 0, len(r.records))
	for _, s := range r.records {
		if filter.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// hasDocumento must be called with mu held.
func (r *MemorySolicitudRepository) hasDocumento(documento string) bool {
	for _, s := range r.records {
		if s.Documento == documento {
			return true
		}
	}
	return false
}
