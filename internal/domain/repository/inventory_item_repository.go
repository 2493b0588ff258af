package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
)

// InventoryItemRepository define el puerto de persistencia para InventoryItem (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el artículo no existe.
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// GetForUpdate obtiene el artículo y lo bloquea hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	// ApplyUpdate aplica el parche y devuelve la cantidad previa junto con el artículo persistido.
	// Nombre repetido -> *domain.ValidationError{Field: "name"}; id inexistente -> domain.ErrNotFound.
	ApplyUpdate(ctx context.Context, id string, patch entity.ItemPatch, now time.Time) (int64, *entity.InventoryItem, error)
	List(ctx context.Context, filter ItemFilter) ([]*entity.InventoryItem, error)
	Count(ctx context.Context, filter ItemFilter) (int, error)
	// Delete elimina el artículo y en cascada su historial de cambios.
	Delete(ctx context.Context, id string) error
}
