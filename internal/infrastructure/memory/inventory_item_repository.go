package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación en memoria de InventoryItemRepository.
// Fuera de una transacción, cada escritura se confirma de inmediato.
type InventoryItemRepo struct {
	store *Store
	tx    *tx
}

// NewInventoryItemRepository construye el repositorio sin transacción.
func NewInventoryItemRepository(s *Store) *InventoryItemRepo {
	return &InventoryItemRepo{store: s}
}

func (r *InventoryItemRepo) run(fn func(t *tx) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	t := r.store.begin()
	if err := fn(t); err != nil {
		return err
	}
	return t.commit()
}

// Create persiste un nuevo artículo.
func (r *InventoryItemRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	return r.run(func(t *tx) error {
		if t.getItem(item.ID) != nil {
			return domain.ErrDuplicate
		}
		if t.nameTaken(item.Name, item.ID) {
			return domain.NewValidationError("name", "ya existe un artículo con ese nombre")
		}
		t.stage(item)
		return nil
	})
}

// GetByID obtiene una copia del artículo; (nil, nil) si no existe.
func (r *InventoryItemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	err := r.run(func(t *tx) error {
		out = t.getItem(id)
		return nil
	})
	return out, err
}

// GetForUpdate registra la versión leída; la confirmación falla si otro escritor la cambia.
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, id)
}

// ApplyUpdate aplica el parche y devuelve la cantidad previa.
func (r *InventoryItemRepo) ApplyUpdate(_ context.Context, id string, patch entity.ItemPatch, now time.Time) (int64, *entity.InventoryItem, error) {
	var (
		previous int64
		updated  *entity.InventoryItem
	)
	err := r.run(func(t *tx) error {
		item := t.getItem(id)
		if item == nil {
			return domain.ErrNotFound
		}
		if patch.Name != nil && t.nameTaken(*patch.Name, id) {
			return domain.NewValidationError("name", "ya existe un artículo con ese nombre")
		}
		previous = item.Quantity
		patch.ApplyTo(item, now)
		t.stage(item)
		updated = item
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return previous, updated, nil
}

// List filtra, ordena y pagina los artículos visibles.
func (r *InventoryItemRepo) List(_ context.Context, f repository.ItemFilter) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	err := r.run(func(t *tx) error {
		matched := filterItems(t.visibleItems(), f)
		sortItems(matched, f.Ordering)
		out = paginate(matched, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

// Count cuenta los artículos que cumplen los filtros (sin paginación).
func (r *InventoryItemRepo) Count(_ context.Context, f repository.ItemFilter) (int, error) {
	var n int
	err := r.run(func(t *tx) error {
		n = len(filterItems(t.visibleItems(), f))
		return nil
	})
	return n, err
}

// Delete elimina el artículo y su historial.
func (r *InventoryItemRepo) Delete(_ context.Context, id string) error {
	return r.run(func(t *tx) error {
		if t.getItem(id) == nil {
			return domain.ErrNotFound
		}
		t.remove(id)
		return nil
	})
}

func filterItems(all map[string]entity.InventoryItem, f repository.ItemFilter) []*entity.InventoryItem {
	out := make([]*entity.InventoryItem, 0, len(all))
	for _, it := range all {
		if f.Category != nil && it.Category != *f.Category {
			continue
		}
		if f.Price != nil && !it.Price.Equal(*f.Price) {
			continue
		}
		if f.Quantity != nil && it.Quantity != *f.Quantity {
			continue
		}
		cp := it
		out = append(out, &cp)
	}
	return out
}

func sortItems(list []*entity.InventoryItem, o repository.Ordering) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		var c int
		switch o.Field {
		case repository.OrderByQuantity:
			c = compareInt(a.Quantity, b.Quantity)
		case repository.OrderByPrice:
			c = a.Price.Cmp(b.Price)
		case repository.OrderByDateAdded:
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = strings.Compare(a.Name, b.Name)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if o.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func paginate(list []*entity.InventoryItem, limit, offset int) []*entity.InventoryItem {
	if offset >= len(list) {
		return []*entity.InventoryItem{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
