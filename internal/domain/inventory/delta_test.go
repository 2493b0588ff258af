package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/inventory"
)

func entries(deltas ...int64) []*entity.ChangeLogEntry {
	out := make([]*entity.ChangeLogEntry, 0, len(deltas))
	for i, d := range deltas {
		out = append(out, &entity.ChangeLogEntry{ID: string(rune('a' + i)), QuantityChanged: d})
	}
	return out
}

func TestQuantityDelta(t *testing.T) {
	assert.Equal(t, int64(5), inventory.QuantityDelta(10, 15))
	assert.Equal(t, int64(-8), inventory.QuantityDelta(15, 7))
	assert.Equal(t, int64(0), inventory.QuantityDelta(7, 7))
}

// 10 -> 15 -> 7: la cantidad original se reconstruye desde la actual.
func TestReplayHistory_ReconstruyeCantidadInicial(t *testing.T) {
	replay, err := inventory.ReplayHistory(7, entries(5, -8))
	require.NoError(t, err)

	assert.Equal(t, int64(10), replay.Baseline)
	assert.Equal(t, []int64{15, 7}, replay.Steps)
	assert.Equal(t, int64(7), replay.Final)
}

func TestReplayHistory_SinEntradas(t *testing.T) {
	replay, err := inventory.ReplayHistory(3, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), replay.Baseline)
	assert.Equal(t, int64(3), replay.Final)
	assert.Empty(t, replay.Steps)
}

func TestReplayHistory_DeltaCeroEsInvalido(t *testing.T) {
	_, err := inventory.ReplayHistory(3, entries(2, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidHistory)
}

func TestReplayHistory_CantidadIntermediaNegativa(t *testing.T) {
	// baseline = 5 - (-10 + 15) = 0 -> 0 - 10 = -10
	_, err := inventory.ReplayHistory(5, entries(-10, 15))
	assert.ErrorIs(t, err, domain.ErrInvalidHistory)
}

func TestReplayHistory_BaselineNegativo(t *testing.T) {
	_, err := inventory.ReplayHistory(2, entries(5))
	assert.ErrorIs(t, err, domain.ErrInvalidHistory)
}
