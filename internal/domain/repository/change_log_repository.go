package repository

import (
	"context"

	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
)

// ChangeLogRepository puerto del historial de cambios. Solo permite agregar y consultar;
// las entradas se eliminan únicamente en cascada al borrar el artículo.
type ChangeLogRepository interface {
	// Append persiste la entrada. QuantityChanged debe ser distinto de cero.
	Append(ctx context.Context, entry *entity.ChangeLogEntry) error
	GetByID(ctx context.Context, id string) (*entity.ChangeLogEntry, error)
	// ListByItem devuelve las entradas del artículo en orden de creación ascendente.
	ListByItem(ctx context.Context, itemID string) ([]*entity.ChangeLogEntry, error)
	List(ctx context.Context, limit, offset int) ([]*entity.ChangeLogEntry, error)
}
