package memory

import (
	"context"

	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
)

var _ repository.ChangeLogRepository = (*ChangeLogRepo)(nil)

// ChangeLogRepo implementación en memoria del historial (solo agregar y consultar).
type ChangeLogRepo struct {
	store *Store
	tx    *tx
}

// NewChangeLogRepository construye el repositorio sin transacción.
func NewChangeLogRepository(s *Store) *ChangeLogRepo {
	return &ChangeLogRepo{store: s}
}

func (r *ChangeLogRepo) run(fn func(t *tx) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	t := r.store.begin()
	if err := fn(t); err != nil {
		return err
	}
	return t.commit()
}

// Append agrega una entrada. El artículo debe existir y el delta no puede ser cero.
func (r *ChangeLogRepo) Append(_ context.Context, entry *entity.ChangeLogEntry) error {
	if entry.QuantityChanged == 0 {
		return domain.ErrInvalidInput
	}
	return r.run(func(t *tx) error {
		if t.getItem(entry.ItemID) == nil {
			return domain.ErrNotFound
		}
		t.logs = append(t.logs, *entry)
		return nil
	})
}

// GetByID obtiene una entrada; (nil, nil) si no existe.
func (r *ChangeLogRepo) GetByID(_ context.Context, id string) (*entity.ChangeLogEntry, error) {
	var out *entity.ChangeLogEntry
	err := r.run(func(t *tx) error {
		for _, e := range t.visibleLogs() {
			if e.ID == id {
				cp := e
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ListByItem historial del artículo en orden de creación.
func (r *ChangeLogRepo) ListByItem(_ context.Context, itemID string) ([]*entity.ChangeLogEntry, error) {
	out := []*entity.ChangeLogEntry{}
	err := r.run(func(t *tx) error {
		for _, e := range t.visibleLogs() {
			if e.ItemID == itemID {
				cp := e
				out = append(out, &cp)
			}
		}
		return nil
	})
	sortByCreation(out)
	return out, err
}

// List historial completo en orden de creación, paginado.
func (r *ChangeLogRepo) List(_ context.Context, limit, offset int) ([]*entity.ChangeLogEntry, error) {
	all := []*entity.ChangeLogEntry{}
	err := r.run(func(t *tx) error {
		for _, e := range t.visibleLogs() {
			cp := e
			all = append(all, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByCreation(all)
	if offset >= len(all) {
		return []*entity.ChangeLogEntry{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
