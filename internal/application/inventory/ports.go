package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback: ni el artículo ni el historial quedan modificados.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		logRepo repository.ChangeLogRepository,
	) error) error
}

// RecordLocker serializa las mutaciones de un mismo artículo. Artículos distintos no se bloquean entre sí.
// Lock espera hasta obtener el bloqueo o hasta que ctx termine; unlock libera el bloqueo.
type RecordLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// MutationMetrics registra el resultado de cada mutación.
type MutationMetrics interface {
	ObserveUpdate(result string, elapsed time.Duration)
	ObserveChange(delta int64)
}

// ChangeLogPDFGenerator genera el reporte PDF del historial de un artículo.
type ChangeLogPDFGenerator interface {
	GenerateChangeLogPDF(ctx context.Context, item *entity.InventoryItem, entries []*entity.ChangeLogEntry) ([]byte, error)
}

// Resultados reportados a MutationMetrics.
const (
	ResultUpdated   = "updated"
	ResultNotFound  = "not_found"
	ResultForbidden = "forbidden"
	ResultInvalid   = "invalid"
	ResultConflict  = "conflict"
	ResultError     = "error"
)

type nopMetrics struct{}

func (nopMetrics) ObserveUpdate(string, time.Duration) {}
func (nopMetrics) ObserveChange(int64)                 {}
