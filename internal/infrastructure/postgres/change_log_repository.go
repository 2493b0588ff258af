package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
)

var _ repository.ChangeLogRepository = (*ChangeLogRepo)(nil)

const changeLogColumns = `id, item_id, changed_by, quantity_changed, created_at`

// ChangeLogRepo historial de cambios de cantidad sobre PostgreSQL. Solo INSERT y SELECT.
type ChangeLogRepo struct {
	q Querier
}

// NewChangeLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewChangeLogRepository(q Querier) *ChangeLogRepo {
	return &ChangeLogRepo{q: q}
}

// Append inserta una entrada. seq conserva el orden de inserción para entradas con el mismo created_at.
func (r *ChangeLogRepo) Append(ctx context.Context, entry *entity.ChangeLogEntry) error {
	if entry.QuantityChanged == 0 {
		return fmt.Errorf("append change log: delta cero: %w", domain.ErrInvalidInput)
	}
	query := `
		INSERT INTO inventory_change_logs (` + changeLogColumns + `)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.ItemID, entry.ChangedBy, entry.QuantityChanged, entry.CreatedAt,
	)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("append change log: %w", domain.ErrNotFound)
		}
		return wrapConflict("append change log", err)
	}
	return nil
}

// GetByID obtiene una entrada por ID.
func (r *ChangeLogRepo) GetByID(ctx context.Context, id string) (*entity.ChangeLogEntry, error) {
	e, err := scanChangeLog(r.q.QueryRow(ctx,
		`SELECT `+changeLogColumns+` FROM inventory_change_logs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get change log: %w", err)
	}
	return e, nil
}

// ListByItem devuelve el historial del artículo del más antiguo al más reciente.
func (r *ChangeLogRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.ChangeLogEntry, error) {
	query := `
		SELECT ` + changeLogColumns + ` FROM inventory_change_logs
		WHERE item_id = $1 ORDER BY created_at ASC, seq ASC`
	rows, err := r.q.Query(ctx, query, itemID)
	if err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list change logs by item: %w", err)
	}
	return collectChangeLogs(rows)
}

// List lista todas las entradas con paginación.
func (r *ChangeLogRepo) List(ctx context.Context, limit, offset int) ([]*entity.ChangeLogEntry, error) {
	query := `
		SELECT ` + changeLogColumns + ` FROM inventory_change_logs
		ORDER BY created_at ASC, seq ASC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list change logs: %w", err)
	}
	return collectChangeLogs(rows)
}

func collectChangeLogs(rows pgx.Rows) ([]*entity.ChangeLogEntry, error) {
	defer rows.Close()
	var list []*entity.ChangeLogEntry
	for rows.Next() {
		e, err := scanChangeLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan change log: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanChangeLog(row pgx.Row) (*entity.ChangeLogEntry, error) {
	var e entity.ChangeLogEntry
	if err := row.Scan(&e.ID, &e.ItemID, &e.ChangedBy, &e.QuantityChanged, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
