package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemResponse salida de un artículo de inventario.
type ItemResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Owner       string          `json:"owner"`
	DateAdded   time.Time       `json:"date_added"`
	LastUpdated time.Time       `json:"last_updated"`
}

// ItemListQuery filtros y orden del listado (query string).
// Price y Quantity llegan como texto para poder distinguir "ausente" de cero.
type ItemListQuery struct {
	Category string `query:"category"`
	Price    string `query:"price"`
	Quantity string `query:"quantity"`
	Ordering string `query:"ordering"`
	PageRequest
}

// ItemListResponse lista paginada de artículos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
