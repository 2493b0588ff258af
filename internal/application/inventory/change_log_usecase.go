package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-audit-api/internal/application/dto"
	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/inventory"
	"github.com/jhoicas/inventario-audit-api/internal/domain/policy"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
)

// ChangeLogUseCase consultas de solo lectura sobre el historial de cambios.
type ChangeLogUseCase struct {
	itemRepo  repository.InventoryItemRepository
	logRepo   repository.ChangeLogRepository
	policy    policy.AccessPolicy
	generator ChangeLogPDFGenerator
}

// NewChangeLogUseCase construye el caso de uso. generator puede ser nil si no se exporta PDF.
func NewChangeLogUseCase(
	itemRepo repository.InventoryItemRepository,
	logRepo repository.ChangeLogRepository,
	accessPolicy policy.AccessPolicy,
	generator ChangeLogPDFGenerator,
) *ChangeLogUseCase {
	return &ChangeLogUseCase{itemRepo: itemRepo, logRepo: logRepo, policy: accessPolicy, generator: generator}
}

// List lista todas las entradas del historial (cualquier usuario autenticado).
func (uc *ChangeLogUseCase) List(ctx context.Context, identity entity.Identity, page dto.PageRequest) (*dto.ChangeLogListResponse, error) {
	if !identity.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	page.DefaultPage()
	list, err := uc.logRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.ChangeLogListResponse{
		Items: toChangeLogResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// GetByID obtiene una entrada del historial.
func (uc *ChangeLogUseCase) GetByID(ctx context.Context, identity entity.Identity, id string) (*dto.ChangeLogResponse, error) {
	if !identity.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	e, err := uc.logRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	out := toChangeLogResponse(e)
	return &out, nil
}

// ListByItem devuelve el historial de un artículo en orden de creación.
func (uc *ChangeLogUseCase) ListByItem(ctx context.Context, identity entity.Identity, itemID string) ([]dto.ChangeLogResponse, error) {
	_, entries, err := uc.itemHistory(ctx, identity, itemID)
	if err != nil {
		return nil, err
	}
	return toChangeLogResponses(entries), nil
}

// Verify reconstruye la cantidad inicial del artículo a partir de su historial.
// Un historial inconsistente no es error de la operación: se informa en la respuesta.
func (uc *ChangeLogUseCase) Verify(ctx context.Context, identity entity.Identity, itemID string) (*dto.HistoryVerificationResponse, error) {
	item, entries, err := uc.itemHistory(ctx, identity, itemID)
	if err != nil {
		return nil, err
	}
	out := &dto.HistoryVerificationResponse{
		ItemID:          item.ID,
		CurrentQuantity: item.Quantity,
		Entries:         len(entries),
	}
	replay, err := inventory.ReplayHistory(item.Quantity, entries)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidHistory) {
			return nil, err
		}
		out.Problem = err.Error()
		return out, nil
	}
	out.InitialQuantity = replay.Baseline
	out.Consistent = true
	return out, nil
}

// ExportPDF genera el reporte PDF del historial del artículo.
func (uc *ChangeLogUseCase) ExportPDF(ctx context.Context, identity entity.Identity, itemID string) ([]byte, error) {
	if uc.generator == nil {
		return nil, errors.New("exportación PDF no configurada")
	}
	item, entries, err := uc.itemHistory(ctx, identity, itemID)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateChangeLogPDF(ctx, item, entries)
}

func (uc *ChangeLogUseCase) itemHistory(ctx context.Context, identity entity.Identity, itemID string) (*entity.InventoryItem, []*entity.ChangeLogEntry, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}
	if !uc.policy.CanRead(identity, item) {
		return nil, nil, domain.ErrForbidden
	}
	entries, err := uc.logRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	return item, entries, nil
}

func toChangeLogResponses(list []*entity.ChangeLogEntry) []dto.ChangeLogResponse {
	out := make([]dto.ChangeLogResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toChangeLogResponse(e))
	}
	return out
}

func toChangeLogResponse(e *entity.ChangeLogEntry) dto.ChangeLogResponse {
	return dto.ChangeLogResponse{
		ID:              e.ID,
		Item:            e.ItemID,
		ChangedBy:       e.ChangedBy,
		QuantityChanged: e.QuantityChanged,
		Timestamp:       e.CreatedAt,
	}
}
