package dto

import "time"

// ChangeLogResponse salida de una entrada del historial de cambios.
type ChangeLogResponse struct {
	ID              string    `json:"id"`
	Item            string    `json:"item"`
	ChangedBy       string    `json:"changed_by"`
	QuantityChanged int64     `json:"quantity_changed"`
	Timestamp       time.Time `json:"timestamp"`
}

// ChangeLogListResponse lista paginada del historial.
type ChangeLogListResponse struct {
	Items []ChangeLogResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// HistoryVerificationResponse resultado de reconstruir el historial de un artículo.
type HistoryVerificationResponse struct {
	ItemID          string `json:"item_id"`
	CurrentQuantity int64  `json:"current_quantity"`
	InitialQuantity int64  `json:"initial_quantity"`
	Entries         int    `json:"entries"`
	Consistent      bool   `json:"consistent"`
	Problem         string `json:"problem,omitempty"`
}
