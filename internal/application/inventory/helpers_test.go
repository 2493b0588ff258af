package inventory_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit-api/internal/application/inventory"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/policy"
	"github.com/jhoicas/inventario-audit-api/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-audit-api/internal/infrastructure/memory"
)

var (
	owner    = entity.Identity{UserID: "owner-1", Role: entity.RoleUser}
	stranger = entity.Identity{UserID: "user-2", Role: entity.RoleUser}
	admin    = entity.Identity{UserID: "admin-1", Role: entity.RoleAdmin}
)

// env casos de uso sobre el store en memoria.
type env struct {
	store   *memory.Store
	items   *inventory.ItemUseCase
	updates *inventory.UpdateItemUseCase
	history *inventory.ChangeLogUseCase
	metrics *recordingMetrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWith(t, lock.NewLocalLocker(), nil)
}

func newEnvWith(t *testing.T, locker inventory.RecordLocker, wrap func(inventory.TxRunner) inventory.TxRunner) *env {
	t.Helper()
	s := memory.NewStore()
	var runner inventory.TxRunner = memory.NewTxRunner(s)
	if wrap != nil {
		runner = wrap(runner)
	}
	itemRepo := memory.NewInventoryItemRepository(s)
	m := &recordingMetrics{}
	return &env{
		store:   s,
		items:   inventory.NewItemUseCase(itemRepo, runner, locker, policy.OwnerPolicy{}, nil),
		updates: inventory.NewUpdateItemUseCase(runner, locker, policy.OwnerPolicy{}, m, nil, inventory.UpdateConfig{MaxRetries: 3}),
		history: inventory.NewChangeLogUseCase(itemRepo, memory.NewChangeLogRepository(s), policy.OwnerPolicy{}, nil),
		metrics: m,
	}
}

// createItem crea un artículo del dueño con la cantidad indicada y devuelve su ID.
func (e *env) createItem(t *testing.T, name string, qty int64) string {
	t.Helper()
	out, err := e.items.Create(context.Background(), owner, fields(t, map[string]any{
		"name": name, "quantity": qty, "price": "9.99", "category": "herramientas",
	}))
	require.NoError(t, err)
	return out.ID
}

func fields(t *testing.T, in map[string]any) map[string]json.RawMessage {
	t.Helper()
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		out[k] = b
	}
	return out
}

type recordingMetrics struct {
	mu      sync.Mutex
	results []string
	deltas  []int64
}

func (m *recordingMetrics) ObserveUpdate(result string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
}

func (m *recordingMetrics) ObserveChange(delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deltas = append(m.deltas, delta)
}

// noLock no serializa nada; sirve para forzar el camino de conflicto optimista.
type noLock struct{}

func (noLock) Lock(context.Context, string) (func(), error) { return func() {}, nil }
