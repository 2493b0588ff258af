package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
	"github.com/jhoicas/inventario-audit-api/internal/infrastructure/memory"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newItem(id, name string, qty int64) *entity.InventoryItem {
	return &entity.InventoryItem{
		ID: id, Name: name, Quantity: qty, Price: decimal.RequireFromString("1.50"),
		OwnerID: "u1", CreatedAt: t0, UpdatedAt: t0, Version: 1,
	}
}

func TestItemRepo_CreateNombreDuplicado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	repo := memory.NewInventoryItemRepository(s)

	require.NoError(t, repo.Create(ctx, newItem("a", "Martillo", 1)))
	err := repo.Create(ctx, newItem("b", "Martillo", 2))

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)
	assert.Len(t, s.Snapshot().Items, 1)
}

func TestItemRepo_ApplyUpdateDevuelveCantidadPrevia(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewInventoryItemRepository(memory.NewStore())
	require.NoError(t, repo.Create(ctx, newItem("a", "Martillo", 10)))

	qty := int64(15)
	prev, updated, err := repo.ApplyUpdate(ctx, "a", entity.ItemPatch{Quantity: &qty}, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(10), prev)
	assert.Equal(t, int64(15), updated.Quantity)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, t0.Add(time.Hour), updated.UpdatedAt)

	_, _, err = repo.ApplyUpdate(ctx, "no-existe", entity.ItemPatch{Quantity: &qty}, t0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRepo_ListFiltraOrdenaYPagina(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewInventoryItemRepository(memory.NewStore())
	tools := "herramientas"
	for i, name := range []string{"Sierra", "Alicate", "Martillo"} {
		it := newItem(name, name, int64(10*(i+1)))
		it.Category = tools
		it.CreatedAt = t0.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, it))
	}
	require.NoError(t, repo.Create(ctx, newItem("x", "Cuaderno", 5)))

	list, err := repo.List(ctx, repository.ItemFilter{Category: &tools, Ordering: repository.Ordering{Field: repository.OrderByName}})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Alicate", "Martillo", "Sierra"}, []string{list[0].Name, list[1].Name, list[2].Name})

	list, err = repo.List(ctx, repository.ItemFilter{Ordering: repository.Ordering{Field: repository.OrderByQuantity, Desc: true}, Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alicate", list[0].Name)
	assert.Equal(t, "Sierra", list[1].Name)

	qty := int64(5)
	n, err := repo.Count(ctx, repository.ItemFilter{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestChangeLogRepo_AppendYOrden(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	items := memory.NewInventoryItemRepository(s)
	logs := memory.NewChangeLogRepository(s)
	require.NoError(t, items.Create(ctx, newItem("a", "Martillo", 10)))

	assert.ErrorIs(t, logs.Append(ctx, &entity.ChangeLogEntry{ID: "z", ItemID: "a", QuantityChanged: 0}), domain.ErrInvalidInput)
	assert.ErrorIs(t, logs.Append(ctx, &entity.ChangeLogEntry{ID: "z", ItemID: "nada", QuantityChanged: 1}), domain.ErrNotFound)

	// mismo timestamp: se conserva el orden de inserción
	require.NoError(t, logs.Append(ctx, &entity.ChangeLogEntry{ID: "e2", ItemID: "a", QuantityChanged: 5, CreatedAt: t0.Add(time.Minute)}))
	require.NoError(t, logs.Append(ctx, &entity.ChangeLogEntry{ID: "e3", ItemID: "a", QuantityChanged: -8, CreatedAt: t0.Add(time.Minute)}))
	require.NoError(t, logs.Append(ctx, &entity.ChangeLogEntry{ID: "e1", ItemID: "a", QuantityChanged: 2, CreatedAt: t0}))

	list, err := logs.ListByItem(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"e1", "e2", "e3"}, []string{list[0].ID, list[1].ID, list[2].ID})

	e, err := logs.GetByID(ctx, "e3")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, int64(-8), e.QuantityChanged)

	missing, err := logs.GetByID(ctx, "nada")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestItemRepo_DeleteEnCascada(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	items := memory.NewInventoryItemRepository(s)
	logs := memory.NewChangeLogRepository(s)
	require.NoError(t, items.Create(ctx, newItem("a", "Martillo", 10)))
	require.NoError(t, items.Create(ctx, newItem("b", "Sierra", 3)))
	require.NoError(t, logs.Append(ctx, &entity.ChangeLogEntry{ID: "e1", ItemID: "a", QuantityChanged: 1, CreatedAt: t0}))
	require.NoError(t, logs.Append(ctx, &entity.ChangeLogEntry{ID: "e2", ItemID: "b", QuantityChanged: 1, CreatedAt: t0}))

	require.NoError(t, items.Delete(ctx, "a"))
	assert.ErrorIs(t, items.Delete(ctx, "a"), domain.ErrNotFound)

	snap := s.Snapshot()
	assert.Len(t, snap.Items, 1)
	require.Len(t, snap.ChangeLogs, 1)
	assert.Equal(t, "e2", snap.ChangeLogs[0].ID)
}

func TestTxRunner_RollbackSiFnFalla(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, memory.NewInventoryItemRepository(s).Create(ctx, newItem("a", "Martillo", 10)))
	runner := memory.NewTxRunner(s)

	boom := errors.New("falla después de escribir")
	err := runner.Run(ctx, func(items repository.InventoryItemRepository, logs repository.ChangeLogRepository) error {
		qty := int64(99)
		if _, _, err := items.ApplyUpdate(ctx, "a", entity.ItemPatch{Quantity: &qty}, t0); err != nil {
			return err
		}
		if err := logs.Append(ctx, &entity.ChangeLogEntry{ID: "e1", ItemID: "a", QuantityChanged: 89, CreatedAt: t0}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	snap := s.Snapshot()
	assert.Equal(t, int64(10), snap.Items["a"].Quantity)
	assert.Empty(t, snap.ChangeLogs)
}

func TestTxRunner_ConflictoOptimista(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, memory.NewInventoryItemRepository(s).Create(ctx, newItem("a", "Martillo", 10)))
	runner := memory.NewTxRunner(s)

	err := runner.Run(ctx, func(items repository.InventoryItemRepository, _ repository.ChangeLogRepository) error {
		if _, err := items.GetForUpdate(ctx, "a"); err != nil {
			return err
		}
		// otro escritor confirma entre la lectura y la confirmación
		other := int64(12)
		_, _, err := memory.NewInventoryItemRepository(s).ApplyUpdate(ctx, "a", entity.ItemPatch{Quantity: &other}, t0)
		require.NoError(t, err)

		qty := int64(8)
		_, _, err = items.ApplyUpdate(ctx, "a", entity.ItemPatch{Quantity: &qty}, t0)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(12), s.Snapshot().Items["a"].Quantity)
}
