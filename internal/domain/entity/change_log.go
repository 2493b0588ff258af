package entity

import "time"

// ChangeLogEntry registro inmutable de un cambio de cantidad sobre un artículo.
// QuantityChanged = cantidad nueva - cantidad anterior; nunca es cero.
type ChangeLogEntry struct {
	ID              string
	ItemID          string
	ChangedBy       string
	QuantityChanged int64
	CreatedAt       time.Time
}
