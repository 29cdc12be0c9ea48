package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/swiftsave-helpdesk/internal/model/solicitud"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const solicitudColumns = "id, cliente, documento, email, monto_inicial, estado, fecha_creacion"

// SolicitudRepository stores solicitudes in a PostgreSQL table.
type SolicitudRepository struct {
	db    DBTX
	table string
}

// NewSolicitudRepository binds the repository to table. The name is quoted
// as an identifier, so it is safe to take from configuration.
func NewSolicitudRepository(db DBTX, table string) *SolicitudRepository {
	return &SolicitudRepository{
		db:    db,
		table: pgx.Identifier{table}.Sanitize(),
	}
}

func (r *SolicitudRepository) ExistsByDocumento(ctx context.Context, documento string) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE documento = $1)`, r.table)
	if err := r.db.QueryRow(ctx, query, documento).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking documento: %w", err)
	}
	return exists, nil
}

// Create inserts s and returns the row as stored.
func (r *SolicitudRepository) Create(ctx context.Context, s solicitud.Solicitud) (*solicitud.Solicitud, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING %s
`, r.table, solicitudColumns, solicitudColumns)

	created, err := scanSolicitud(r.db.QueryRow(ctx, query,
		s.ID,
		s.Cliente,
		s.Documento,
		s.Email,
		s.MontoInicial,
		string(s.Estado),
		s.FechaCreacion,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting solicitud: %w", err)
	}
	return created, nil
}

func (r *SolicitudRepository) GetByID(ctx context.Context, id uuid.UUID) (*solicitud.Solicitud, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, solicitudColumns, r.table)
	s, err := scanSolicitud(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns at most limit records matching filter, newest first,
// skipping the first offset.
func (r *SolicitudRepository) List(ctx context.Context, filter solicitud.Filter, offset, limit int) ([]solicitud.Solicitud, error) {
	where, args := whereClause(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
SELECT %s FROM %s%s
ORDER BY fecha_creacion DESC, id DESC
LIMIT $%d OFFSET $%d
`, solicitudColumns, r.table, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing solicitudes: %w", err)
	}
	defer rows.Close()

	out := make([]solicitud.Solicitud, 0, limit)
	for rows.Next() {
		s, err := scanSolicitud(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating solicitudes: %w", err)
	}
	return out, nil
}

func (r *SolicitudRepository) Count(ctx context.Context, filter solicitud.Filter) (int64, error) {
	where, args := whereClause(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, r.table, where)

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting solicitudes: %w", err)
	}
	return total, nil
}

// UpdateEstado sets the status of id and returns the updated record.
func (r *SolicitudRepository) UpdateEstado(ctx context.Context, id uuid.UUID, estado solicitud.Estado) (*solicitud.Solicitud, error) {
	query := fmt.Sprintf(`
UPDATE %s SET estado = $2
WHERE id = $1
RETURNING %s
`, r.table, solicitudColumns)

	return scanSolicitud(r.db.QueryRow(ctx, query, id, string(estado)))
}

func (r *SolicitudRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING id`, r.table)

	var deleted uuid.UUID
	if err := r.db.QueryRow(ctx, query, id).Scan(&deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting solicitud: %w", err)
	}
	return nil
}

func whereClause(filter solicitud.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Estado != nil {
		args = append(args, string(*filter.Estado))
		conds = append(conds, fmt.Sprintf("estado = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanSolicitud(row pgx.Row) (*solicitud.Solicitud, error) {
	var (
		s      solicitud.Solicitud
		estado string
	)
	err := row.Scan(
		&s.ID,
		&s.Cliente,
		&s.Documento,
		&s.Email,
		&s.MontoInicial,
		&estado,
		&s.FechaCreacion,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning solicitud: %w", err)
	}
	s.Estado = solicitud.Estado(estado)
	s.FechaCreacion = s.FechaCreacion.UTC()
	return &s, nil
}
