package memory

import (
	"context"

	"github.com/jhoicas/inventario-audit-api/internal/application/inventory"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción optimista en memoria.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{store: s}
}

// Run ejecuta fn con repos atados a la tx. Si fn falla no se aplica nada; si otra transacción
// modificó un artículo leído, devuelve domain.ErrConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	logRepo repository.ChangeLogRepository,
) error) error {
	t := r.store.begin()
	if err := fn(&InventoryItemRepo{store: r.store, tx: t}, &ChangeLogRepo{store: r.store, tx: t}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.commit()
}
