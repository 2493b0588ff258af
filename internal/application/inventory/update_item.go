package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-audit-api/internal/application/dto"
	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/inventory"
	"github.com/jhoicas/inventario-audit-api/internal/domain/policy"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
	"github.com/jhoicas/inventario-audit-api/pkg/logger"
)

// UpdateItemUseCase aplica actualizaciones sobre un artículo y registra en el historial
// cada cambio de cantidad, todo dentro de una misma transacción y con el artículo bloqueado.
type UpdateItemUseCase struct {
	txRunner   TxRunner
	locker     RecordLocker
	policy     policy.AccessPolicy
	metrics    MutationMetrics
	log        *logger.Logger
	maxRetries int
	now        func() time.Time
}

// UpdateConfig parámetros del caso de uso.
type UpdateConfig struct {
	MaxRetries int // intentos totales ante domain.ErrConflict (mínimo 1)
}

// NewUpdateItemUseCase construye el caso de uso. metrics y log pueden ser nil.
func NewUpdateItemUseCase(
	txRunner TxRunner,
	locker RecordLocker,
	accessPolicy policy.AccessPolicy,
	metrics MutationMetrics,
	log *logger.Logger,
	cfg UpdateConfig,
) *UpdateItemUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &UpdateItemUseCase{
		txRunner:   txRunner,
		locker:     locker,
		policy:     accessPolicy,
		metrics:    metrics,
		log:        log.Named("update_item"),
		maxRetries: cfg.MaxRetries,
		now:        time.Now,
	}
}

// SetClock reemplaza el reloj usado para last_updated y el timestamp del historial.
func (uc *UpdateItemUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// mutation resultado de un intento exitoso.
type mutation struct {
	item  *entity.InventoryItem
	entry *entity.ChangeLogEntry
}

// UpdateItem actualiza los campos presentes en fields. Orden de verificación:
// artículo inexistente (ErrNotFound), identidad distinta del dueño (ErrForbidden),
// valores inválidos (*domain.ValidationError). Ninguno de esos errores deja escrituras.
// Si la cantidad viene en la petición y cambió, se agrega exactamente una entrada al historial
// en la misma transacción que la actualización del artículo.
func (uc *UpdateItemUseCase) UpdateItem(
	ctx context.Context,
	identity entity.Identity,
	itemID string,
	fields map[string]json.RawMessage,
) (*dto.ItemResponse, error) {
	return uc.update(ctx, identity, itemID, fields, ParsePatch)
}

// ReplaceItem actualización completa (PUT): igual que UpdateItem pero name, quantity y price
// son obligatorios. La falta de un campo se informa después de NotFound y Forbidden.
func (uc *UpdateItemUseCase) ReplaceItem(
	ctx context.Context,
	identity entity.Identity,
	itemID string,
	fields map[string]json.RawMessage,
) (*dto.ItemResponse, error) {
	return uc.update(ctx, identity, itemID, fields, ParseReplace)
}

type patchParser func(map[string]json.RawMessage) (entity.ItemPatch, error)

func (uc *UpdateItemUseCase) update(
	ctx context.Context,
	identity entity.Identity,
	itemID string,
	fields map[string]json.RawMessage,
	parse patchParser,
) (*dto.ItemResponse, error) {
	if !identity.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	start := time.Now()

	// Bloqueo por artículo: dos actualizaciones del mismo artículo nunca leen la misma cantidad previa
	unlock, err := uc.locker.Lock(ctx, itemID)
	if err != nil {
		uc.metrics.ObserveUpdate(ResultError, time.Since(start))
		return nil, fmt.Errorf("bloquear artículo: %w", err)
	}
	defer unlock()

	var m *mutation
	for attempt := 1; ; attempt++ {
		m, err = uc.apply(ctx, identity, itemID, fields, parse)
		if err == nil || !errors.Is(err, domain.ErrConflict) || attempt >= uc.maxRetries {
			break
		}
		uc.log.Warn().Str("item_id", itemID).Int("attempt", attempt).Msg("conflicto concurrente, reintentando")
	}

	elapsed := time.Since(start)
	if err != nil {
		uc.metrics.ObserveUpdate(resultFor(err), elapsed)
		uc.log.Debug().Err(err).Str("item_id", itemID).Str("user_id", identity.UserID).Msg("actualización rechazada")
		return nil, err
	}

	uc.metrics.ObserveUpdate(ResultUpdated, elapsed)
	ev := uc.log.Info().Str("item_id", itemID).Str("user_id", identity.UserID)
	if m.entry != nil {
		uc.metrics.ObserveChange(m.entry.QuantityChanged)
		ev = ev.Int64("delta", m.entry.QuantityChanged).Str("change_log_id", m.entry.ID)
	}
	ev.Msg("artículo actualizado")

	return toItemResponse(m.item), nil
}

// apply ejecuta un intento completo: carga, autoriza, aplica, calcula delta y registra el cambio.
func (uc *UpdateItemUseCase) apply(
	ctx context.Context,
	identity entity.Identity,
	itemID string,
	fields map[string]json.RawMessage,
	parse patchParser,
) (*mutation, error) {
	var out mutation
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.InventoryItemRepository,
		logRepo repository.ChangeLogRepository,
	) error {
		item, err := itemRepo.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if !uc.policy.CanWrite(identity, item) {
			return domain.ErrForbidden
		}
		patch, err := parse(fields)
		if err != nil {
			return err
		}

		previous := item.Quantity
		now := uc.now()
		stored, updated, err := itemRepo.ApplyUpdate(ctx, itemID, patch, now)
		if err != nil {
			return err
		}
		if stored != previous {
			// Otro escritor cambió la cantidad entre la lectura y la actualización
			return fmt.Errorf("%w: cantidad leída %d, almacenada %d", domain.ErrConflict, previous, stored)
		}
		out.item = updated

		// Sin cantidad en la petición no hay delta ni entrada en el historial
		if !patch.HasQuantity() {
			return nil
		}
		delta := inventory.QuantityDelta(previous, *patch.Quantity)
		if delta == 0 {
			return nil
		}
		entry := &entity.ChangeLogEntry{
			ID:              uuid.New().String(),
			ItemID:          item.ID,
			ChangedBy:       identity.UserID,
			QuantityChanged: delta,
			CreatedAt:       now,
		}
		if err := logRepo.Append(ctx, entry); err != nil {
			return fmt.Errorf("registrar cambio de cantidad: %w", err)
		}
		out.entry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func resultFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrForbidden):
		return ResultForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		return ResultInvalid
	case errors.Is(err, domain.ErrConflict):
		return ResultConflict
	default:
		return ResultError
	}
}
