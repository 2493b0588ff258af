package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem representa un artículo del inventario perteneciente a un usuario.
// Name es único en todo el inventario (no por dueño); OwnerID y CreatedAt no cambian tras crearse.
type InventoryItem struct {
	ID          string
	Name        string
	Description string
	Quantity    int64           // nunca negativa
	Price       decimal.Decimal // NUMERIC(10,2)
	Category    string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64 // se incrementa en cada mutación exitosa
}

// ItemPatch actualización parcial de un artículo. Un campo nil no vino en la petición.
type ItemPatch struct {
	Name        *string
	Description *string
	Quantity    *int64
	Price       *decimal.Decimal
	Category    *string
}

// HasQuantity indica si la petición menciona la cantidad.
func (p ItemPatch) HasQuantity() bool { return p.Quantity != nil }

// ApplyTo copia los campos presentes sobre el artículo y marca la fecha de modificación.
func (p ItemPatch) ApplyTo(item *InventoryItem, now time.Time) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	item.UpdatedAt = now
	item.Version++
}
