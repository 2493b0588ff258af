package inventory

import (
	"fmt"

	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
)

// QuantityDelta cambio con signo entre dos cantidades (servicio de dominio).
// Delta = CantidadNueva - CantidadAnterior
func QuantityDelta(previous, next int64) int64 {
	return next - previous
}

// HistoryReplay resultado de reconstruir el historial de cantidades de un artículo.
type HistoryReplay struct {
	Baseline int64   // cantidad al crear el artículo
	Steps    []int64 // cantidad después de cada entrada, en orden
	Final    int64
}

// ReplayHistory reconstruye la cantidad original a partir de la cantidad actual y los deltas
// (en orden de creación) y verifica que cada paso intermedio sea una cantidad válida.
// Baseline = Actual - Σ deltas; aplicar los deltas sobre Baseline debe terminar en Actual.
func ReplayHistory(current int64, entries []*entity.ChangeLogEntry) (HistoryReplay, error) {
	var sum int64
	for i, e := range entries {
		if e.QuantityChanged == 0 {
			return HistoryReplay{}, fmt.Errorf("%w: entrada %d (%s) con delta cero", domain.ErrInvalidHistory, i, e.ID)
		}
		sum += e.QuantityChanged
	}
	replay := HistoryReplay{
		Baseline: current - sum,
		Steps:    make([]int64, 0, len(entries)),
	}
	if replay.Baseline < 0 {
		return replay, fmt.Errorf("%w: cantidad inicial negativa (%d)", domain.ErrInvalidHistory, replay.Baseline)
	}
	qty := replay.Baseline
	for i, e := range entries {
		qty += e.QuantityChanged
		if qty < 0 {
			return replay, fmt.Errorf("%w: cantidad negativa (%d) tras la entrada %d (%s)", domain.ErrInvalidHistory, qty, i, e.ID)
		}
		replay.Steps = append(replay.Steps, qty)
	}
	replay.Final = qty
	return replay, nil
}
