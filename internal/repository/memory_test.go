package repository

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/deppfellow/swiftsave-helpdesk/internal/model/solicitud"
	"github.com/deppfellow/swiftsave-helpdesk/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySolicitudRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySolicitudRepository()

	s := sample()
	created, err := repo.Create(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, s, *created)

	exists, err := repo.ExistsByDocumento(ctx, s.Documento)
	require.NoError(t, err)
	assert.True(t, exists)

	dup := s
	dup.ID = uuid.New()
	_, err = repo.Create(ctx, dup)
	assert.True(t, sqlerr.IsUniqueViolation(err))

	created.Cliente = "changed"
	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Cliente, got.Cliente, "stored record must not alias returned pointers")

	updated, err := repo.UpdateEstado(ctx, s.ID, solicitud.EstadoCerrado)
	require.NoError(t, err)
	assert.Equal(t, solicitud.EstadoCerrado, updated.Estado)

	require.NoError(t, repo.Delete(ctx, s.ID))
	assert.ErrorIs(t, repo.Delete(ctx, s.ID), ErrNotFound)

	_, err = repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.UpdateEstado(ctx, s.ID, solicitud.EstadoPendiente)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySolicitudRepository_ListOrderAndWindow(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySolicitudRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	same := []uuid.UUID{
		uuid.MustParse("00000000-0000-4000-8000-000000000001"),
		uuid.MustParse("00000000-0000-4000-8000-000000000002"),
	}
	for i, id := range same {
		_, err := repo.Create(ctx, solicitud.Solicitud{
			ID: id, Documento: "1000" + string(rune('0'+i)), Estado: solicitud.EstadoPendiente, FechaCreacion: base,
		})
		require.NoError(t, err)
	}
	newest := uuid.New()
	_, err := repo.Create(ctx, solicitud.Solicitud{
		ID: newest, Documento: "20000", Estado: solicitud.EstadoCerrado, FechaCreacion: base.Add(time.Hour),
	})
	require.NoError(t, err)

	all, err := repo.List(ctx, solicitud.Filter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newest, all[0].ID)
	assert.Equal(t, same[1], all[1].ID)
	assert.Equal(t, same[0], all[2].ID)

	window, err := repo.List(ctx, solicitud.Filter{}, 1, 1)
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, same[1], window[0].ID)

	past, err := repo.List(ctx, solicitud.Filter{}, 5, 10)
	require.NoError(t, err)
	assert.NotNil(t, past)
	assert.Empty(t, past)

	for _, w := range [][2]int{{-6, 10}, {0, -1}, {1, math.MaxInt}} {
		got, err := repo.List(ctx, solicitud.Filter{}, w[0], w[1])
		require.NoError(t, err, w)
		assert.NotNil(t, got)
		if w[1] == math.MaxInt {
			assert.Len(t, got, 2)
		} else {
			assert.Empty(t, got)
		}
	}

	cerrado := solicitud.EstadoCerrado
	n, err := repo.Count(ctx, solicitud.Filter{Estado: &cerrado})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
