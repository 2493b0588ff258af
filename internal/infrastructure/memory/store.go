// Package memory implementa los puertos de persistencia en memoria, para tests y entornos efímeros.
// Las transacciones son optimistas: acumulan escrituras y al confirmar verifican que ninguna fila
// leída haya cambiado; si cambió, la confirmación falla con domain.ErrConflict.
package memory

import (
	"sort"
	"sync"

	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
)

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu    sync.RWMutex
	items map[string]entity.InventoryItem
	logs  []entity.ChangeLogEntry // orden de inserción
	users map[string]entity.User
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		items: make(map[string]entity.InventoryItem),
		users: make(map[string]entity.User),
	}
}

// Snapshot copia del estado en un instante.
type Snapshot struct {
	Items      map[string]entity.InventoryItem
	ChangeLogs []entity.ChangeLogEntry
}

// Snapshot devuelve una copia consistente de artículos e historial.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Items:      make(map[string]entity.InventoryItem, len(s.items)),
		ChangeLogs: append([]entity.ChangeLogEntry(nil), s.logs...),
	}
	for k, v := range s.items {
		snap.Items[k] = v
	}
	return snap
}

// tx transacción optimista sobre el Store.
type tx struct {
	store *Store
	seen  map[string]int64                 // versión leída por id (0 = no existía)
	items map[string]*entity.InventoryItem // escrituras pendientes; nil = eliminado
	logs  []entity.ChangeLogEntry
}

func (s *Store) begin() *tx {
	return &tx{
		store: s,
		seen:  make(map[string]int64),
		items: make(map[string]*entity.InventoryItem),
	}
}

// getItem devuelve una copia del artículo visible en la transacción.
func (t *tx) getItem(id string) *entity.InventoryItem {
	if it, ok := t.items[id]; ok {
		if it == nil {
			return nil
		}
		cp := *it
		return &cp
	}
	t.store.mu.RLock()
	it, ok := t.store.items[id]
	t.store.mu.RUnlock()
	if _, tracked := t.seen[id]; !tracked {
		t.seen[id] = 0
		if ok {
			t.seen[id] = it.Version
		}
	}
	if !ok {
		return nil
	}
	return &it
}

// visibleItems artículos visibles en la transacción (base + escrituras pendientes).
func (t *tx) visibleItems() map[string]entity.InventoryItem {
	t.store.mu.RLock()
	out := make(map[string]entity.InventoryItem, len(t.store.items))
	for k, v := range t.store.items {
		out[k] = v
	}
	t.store.mu.RUnlock()
	for id, it := range t.items {
		if it == nil {
			delete(out, id)
			continue
		}
		out[id] = *it
	}
	return out
}

// visibleLogs historial visible en la transacción, en orden de inserción.
func (t *tx) visibleLogs() []entity.ChangeLogEntry {
	t.store.mu.RLock()
	base := append([]entity.ChangeLogEntry(nil), t.store.logs...)
	t.store.mu.RUnlock()
	out := make([]entity.ChangeLogEntry, 0, len(base)+len(t.logs))
	for _, e := range append(base, t.logs...) {
		if it, staged := t.items[e.ItemID]; staged && it == nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (t *tx) nameTaken(name, exceptID string) bool {
	for id, it := range t.visibleItems() {
		if id != exceptID && it.Name == name {
			return true
		}
	}
	return false
}

func (t *tx) stage(it *entity.InventoryItem) {
	cp := *it
	t.items[it.ID] = &cp
}

func (t *tx) remove(id string) {
	t.items[id] = nil
	kept := t.logs[:0]
	for _, e := range t.logs {
		if e.ItemID != id {
			kept = append(kept, e)
		}
	}
	t.logs = kept
}

func (t *tx) dirty() bool {
	return len(t.items) > 0 || len(t.logs) > 0
}

// commit valida versiones, unicidad de nombre e integridad referencial y aplica todo o nada.
func (t *tx) commit() error {
	if !t.dirty() {
		return nil
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, v := range t.seen {
		var current int64
		if it, ok := s.items[id]; ok {
			current = it.Version
		}
		if current != v {
			return domain.ErrConflict
		}
	}

	final := make(map[string]entity.InventoryItem, len(s.items))
	for k, v := range s.items {
		final[k] = v
	}
	for id, it := range t.items {
		if it == nil {
			delete(final, id)
			continue
		}
		final[id] = *it
	}
	names := make(map[string]string, len(final))
	for id, it := range final {
		if other, dup := names[it.Name]; dup && other != id {
			return domain.NewValidationError("name", "ya existe un artículo con ese nombre")
		}
		names[it.Name] = id
	}
	for _, e := range t.logs {
		if _, ok := final[e.ItemID]; !ok {
			return domain.ErrNotFound
		}
	}

	s.items = final
	if len(t.items) > 0 {
		kept := s.logs[:0:0]
		for _, e := range s.logs {
			if _, ok := final[e.ItemID]; ok {
				kept = append(kept, e)
			}
		}
		s.logs = kept
	}
	s.logs = append(s.logs, t.logs...)
	return nil
}

// sortByCreation ordena por fecha de creación conservando el orden de inserción en empates.
func sortByCreation(list []*entity.ChangeLogEntry) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
