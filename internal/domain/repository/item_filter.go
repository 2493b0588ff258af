package repository

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-audit-api/internal/domain"
)

// Campos por los que se puede ordenar el listado de artículos.
const (
	OrderByName      = "name"
	OrderByQuantity  = "quantity"
	OrderByPrice     = "price"
	OrderByDateAdded = "date_added"
)

// ItemFilter filtros, orden y paginación para listar artículos.
// Los filtros nil no se aplican; los presentes comparan por igualdad.
type ItemFilter struct {
	Category *string
	Price    *decimal.Decimal
	Quantity *int64
	Ordering Ordering
	Limit    int
	Offset   int
}

// Ordering campo de orden y dirección.
type Ordering struct {
	Field string
	Desc  bool
}

// ParseOrdering interpreta "name", "-price", etc. Vacío equivale a "name".
func ParseOrdering(raw string) (Ordering, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ordering{Field: OrderByName}, nil
	}
	o := Ordering{}
	if strings.HasPrefix(raw, "-") {
		o.Desc = true
		raw = raw[1:]
	}
	switch raw {
	case OrderByName, OrderByQuantity, OrderByPrice, OrderByDateAdded:
		o.Field = raw
		return o, nil
	}
	return Ordering{}, domain.NewValidationError("ordering", "campo de orden no soportado: "+raw)
}
