package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit-api/internal/application/dto"
	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
)

func TestCreate_DuenoEsQuienInvocaYSinHistorial(t *testing.T) {
	e := newEnv(t)
	out, err := e.items.Create(context.Background(), stranger, fields(t, map[string]any{
		"name": "  Caja  ", "quantity": 4, "price": 3.5, "owner": owner.UserID,
	}))
	require.NoError(t, err)
	assert.Equal(t, stranger.UserID, out.Owner)
	assert.Equal(t, "Caja", out.Name)
	assert.Equal(t, "3.5", out.Price.String())
	assert.Equal(t, out.DateAdded, out.LastUpdated)
	assert.Empty(t, e.store.Snapshot().ChangeLogs)
}

func TestCreate_CamposObligatorios(t *testing.T) {
	e := newEnv(t)
	for field, body := range map[string]map[string]any{
		"name":     {"quantity": 1, "price": 1},
		"quantity": {"name": "Caja", "price": 1},
		"price":    {"name": "Caja", "quantity": 1},
	} {
		_, err := e.items.Create(context.Background(), owner, fields(t, body))
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr), field)
		assert.Equal(t, field, verr.Field)
	}
	assert.Empty(t, e.store.Snapshot().Items)
}

func TestGetByID_CualquierUsuarioAutenticadoLee(t *testing.T) {
	e := newEnv(t)
	id := e.createItem(t, "Taladro", 10)

	out, err := e.items.GetByID(context.Background(), stranger, id)
	require.NoError(t, err)
	assert.Equal(t, "Taladro", out.Name)

	_, err = e.items.GetByID(context.Background(), entity.Identity{}, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.items.GetByID(context.Background(), stranger, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_FiltrosYOrden(t *testing.T) {
	e := newEnv(t)
	e.createItem(t, "Sierra", 3)
	e.createItem(t, "Alicate", 7)
	e.createItem(t, "Martillo", 7)
	ctx := context.Background()

	out, err := e.items.List(ctx, stranger, dto.ItemListQuery{Quantity: "7", Ordering: "-name"})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Martillo", out.Items[0].Name)
	assert.Equal(t, "Alicate", out.Items[1].Name)
	assert.Equal(t, 2, out.Page.Total)
	assert.Equal(t, 20, out.Page.Limit)

	out, err = e.items.List(ctx, stranger, dto.ItemListQuery{Price: "9.99", Ordering: "quantity"})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	assert.Equal(t, "Sierra", out.Items[0].Name)

	var verr *domain.ValidationError
	_, err = e.items.List(ctx, stranger, dto.ItemListQuery{Ordering: "color"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "ordering", verr.Field)

	_, err = e.items.List(ctx, stranger, dto.ItemListQuery{Price: "barato"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "price", verr.Field)
}

func TestDelete_CascadaSoloDelArticulo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.createItem(t, "Taladro", 10)
	b := e.createItem(t, "Sierra", 3)
	_, err := e.updates.UpdateItem(ctx, owner, a, fields(t, map[string]any{"quantity": 11}))
	require.NoError(t, err)
	_, err = e.updates.UpdateItem(ctx, owner, b, fields(t, map[string]any{"quantity": 4}))
	require.NoError(t, err)

	assert.ErrorIs(t, e.items.Delete(ctx, stranger, a), domain.ErrForbidden)
	require.NoError(t, e.items.Delete(ctx, owner, a))
	assert.ErrorIs(t, e.items.Delete(ctx, owner, a), domain.ErrNotFound)

	snap := e.store.Snapshot()
	assert.NotContains(t, snap.Items, a)
	require.Len(t, snap.ChangeLogs, 1)
	assert.Equal(t, b, snap.ChangeLogs[0].ItemID)
}

func TestDelete_AdminPuedeEliminar(t *testing.T) {
	e := newEnv(t)
	id := e.createItem(t, "Taladro", 10)
	require.NoError(t, e.items.Delete(context.Background(), admin, id))
	assert.Empty(t, e.store.Snapshot().Items)
}
