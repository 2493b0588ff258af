package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-audit-api/internal/application/dto"
	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/policy"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
	"github.com/jhoicas/inventario-audit-api/pkg/logger"
)

// ItemUseCase casos de uso de artículos fuera del pipeline de actualización:
// crear, consultar, listar y eliminar.
type ItemUseCase struct {
	itemRepo repository.InventoryItemRepository
	txRunner TxRunner
	locker   RecordLocker
	policy   policy.AccessPolicy
	log      *logger.Logger
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	itemRepo repository.InventoryItemRepository,
	txRunner TxRunner,
	locker RecordLocker,
	accessPolicy policy.AccessPolicy,
	log *logger.Logger,
) *ItemUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ItemUseCase{
		itemRepo: itemRepo,
		txRunner: txRunner,
		locker:   locker,
		policy:   accessPolicy,
		log:      log.Named("items"),
	}
}

// Create crea un artículo cuyo dueño es quien invoca. name, quantity y price son obligatorios.
func (uc *ItemUseCase) Create(ctx context.Context, identity entity.Identity, fields map[string]json.RawMessage) (*dto.ItemResponse, error) {
	if !identity.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	patch, err := ParseCreate(fields)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	item := &entity.InventoryItem{
		ID:        uuid.New().String(),
		OwnerID:   identity.UserID,
		CreatedAt: now,
	}
	patch.ApplyTo(item, now)
	if err := uc.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	uc.log.Info().Str("item_id", item.ID).Str("user_id", identity.UserID).Int64("quantity", item.Quantity).Msg("artículo creado")
	return toItemResponse(item), nil
}

// GetByID obtiene un artículo. La lectura no depende del dueño.
func (uc *ItemUseCase) GetByID(ctx context.Context, identity entity.Identity, id string) (*dto.ItemResponse, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if !uc.policy.CanRead(identity, item) {
		return nil, domain.ErrForbidden
	}
	return toItemResponse(item), nil
}

// List lista artículos con filtros por categoría, precio y cantidad, ordenados y paginados.
func (uc *ItemUseCase) List(ctx context.Context, identity entity.Identity, q dto.ItemListQuery) (*dto.ItemListResponse, error) {
	if !identity.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	filter, err := toItemFilter(q)
	if err != nil {
		return nil, err
	}
	list, err := uc.itemRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.itemRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		if !uc.policy.CanRead(identity, it) {
			continue
		}
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// Delete elimina el artículo (dueño o administrador) y en cascada su historial.
func (uc *ItemUseCase) Delete(ctx context.Context, identity entity.Identity, id string) error {
	if !identity.IsAuthenticated() {
		return domain.ErrUnauthorized
	}
	unlock, err := uc.locker.Lock(ctx, id)
	if err != nil {
		return fmt.Errorf("bloquear artículo: %w", err)
	}
	defer unlock()

	err = uc.txRunner.Run(ctx, func(itemRepo repository.InventoryItemRepository, _ repository.ChangeLogRepository) error {
		item, err := itemRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if !uc.policy.CanDelete(identity, item) {
			return domain.ErrForbidden
		}
		return itemRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("item_id", id).Str("user_id", identity.UserID).Msg("artículo eliminado")
	return nil
}

func toItemFilter(q dto.ItemListQuery) (repository.ItemFilter, error) {
	q.DefaultPage()
	ordering, err := repository.ParseOrdering(q.Ordering)
	if err != nil {
		return repository.ItemFilter{}, err
	}
	f := repository.ItemFilter{Ordering: ordering, Limit: q.Limit, Offset: q.Offset}
	if c := strings.TrimSpace(q.Category); c != "" {
		f.Category = &c
	}
	if q.Price != "" {
		p, err := ParsePrice(json.RawMessage(quote(q.Price)))
		if err != nil {
			return repository.ItemFilter{}, err
		}
		f.Price = &p
	}
	if q.Quantity != "" {
		n, err := ParseQuantity(json.RawMessage(quote(q.Quantity)))
		if err != nil {
			return repository.ItemFilter{}, err
		}
		f.Quantity = &n
	}
	return f, nil
}

func quote(s string) []byte {
	b, _ := json.Marshal(strings.TrimSpace(s))
	return b
}

func toItemResponse(it *entity.InventoryItem) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Quantity:    it.Quantity,
		Price:       it.Price,
		Category:    it.Category,
		Owner:       it.OwnerID,
		DateAdded:   it.CreatedAt,
		LastUpdated: it.UpdatedAt,
	}
}
