package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const itemColumns = `id, name, description, quantity, price, category, owner_id, created_at, updated_at, version`

// columnas de orden permitidas; date_added se guarda como created_at.
var orderColumns = map[string]string{
	repository.OrderByName:      "name",
	repository.OrderByQuantity:  "quantity",
	repository.OrderByPrice:     "price",
	repository.OrderByDateAdded: "created_at",
}

// InventoryItemRepo implementación del puerto InventoryItemRepository sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador de persistencia para artículos. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

// Create persiste un nuevo artículo.
func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Description, item.Quantity, item.Price, item.Category,
		item.OwnerID, item.CreatedAt, item.UpdatedAt, item.Version,
	)
	if err != nil {
		return mapItemWriteError("insert item", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.get(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetForUpdate obtiene el artículo y bloquea la fila hasta el fin de la transacción.
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.get(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
}

func (r *InventoryItemRepo) get(ctx context.Context, query, id string) (*entity.InventoryItem, error) {
	item, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, wrapConflict("get item", err)
	}
	return item, nil
}

// ApplyUpdate actualiza solo las columnas presentes en el parche. La cantidad previa se lee
// con la fila bloqueada en la misma sentencia, de modo que corresponde exactamente al valor reemplazado.
func (r *InventoryItemRepo) ApplyUpdate(ctx context.Context, id string, patch entity.ItemPatch, now time.Time) (int64, *entity.InventoryItem, error) {
	args := []any{id}
	var sets []string
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Quantity != nil {
		set("quantity", *patch.Quantity)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	set("updated_at", now)
	sets = append(sets, "version = i.version + 1")

	query := `
		WITH prev AS (
			SELECT id, quantity FROM inventory_items WHERE id = $1 FOR UPDATE
		)
		UPDATE inventory_items i SET ` + strings.Join(sets, ", ") + `
		FROM prev WHERE i.id = prev.id
		RETURNING prev.quantity, i.id, i.name, i.description, i.quantity, i.price, i.category,
			i.owner_id, i.created_at, i.updated_at, i.version`

	var previous int64
	var it entity.InventoryItem
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&previous, &it.ID, &it.Name, &it.Description, &it.Quantity, &it.Price, &it.Category,
		&it.OwnerID, &it.CreatedAt, &it.UpdatedAt, &it.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return 0, nil, domain.ErrNotFound
		}
		return 0, nil, mapItemWriteError("update item", err)
	}
	return previous, &it, nil
}

// List lista artículos aplicando filtros, orden y paginación.
func (r *InventoryItemRepo) List(ctx context.Context, filter repository.ItemFilter) ([]*entity.InventoryItem, error) {
	where, args := buildItemWhere(filter)
	column, ok := orderColumns[filter.Ordering.Field]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if filter.Ordering.Desc {
		direction = "DESC"
	}
	query := `SELECT ` + itemColumns + ` FROM inventory_items` + where +
		fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// Count cuenta los artículos que cumplen los filtros (ignora orden y paginación).
func (r *InventoryItemRepo) Count(ctx context.Context, filter repository.ItemFilter) (int, error) {
	where, args := buildItemWhere(filter)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// Delete elimina el artículo; el historial se elimina por ON DELETE CASCADE.
func (r *InventoryItemRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return domain.ErrNotFound
		}
		return wrapConflict("delete item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func buildItemWhere(filter repository.ItemFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Category != nil {
		args = append(args, *filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Price != nil {
		args = append(args, *filter.Price)
		conds = append(conds, fmt.Sprintf("price = $%d", len(args)))
	}
	if filter.Quantity != nil {
		args = append(args, *filter.Quantity)
		conds = append(conds, fmt.Sprintf("quantity = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(
		&it.ID, &it.Name, &it.Description, &it.Quantity, &it.Price, &it.Category,
		&it.OwnerID, &it.CreatedAt, &it.UpdatedAt, &it.Version,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func mapItemWriteError(op string, err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return domain.NewValidationError("name", "ya existe un artículo con ese nombre")
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: dueño inexistente: %w", op, domain.ErrNotFound)
	case codeCheckViolation:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrInvalidInput, err)
	case codeNumericOutOfRange:
		return domain.NewValidationError("price", "fuera de rango")
	}
	return wrapConflict(op, err)
}
