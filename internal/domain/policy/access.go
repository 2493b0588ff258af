package policy

import "github.com/jhoicas/inventario-audit-api/internal/domain/entity"

// AccessPolicy decide si una identidad puede leer, modificar o eliminar un artículo.
// No tiene efectos secundarios.
type AccessPolicy interface {
	CanRead(identity entity.Identity, item *entity.InventoryItem) bool
	CanWrite(identity entity.Identity, item *entity.InventoryItem) bool
	CanDelete(identity entity.Identity, item *entity.InventoryItem) bool
}

var _ AccessPolicy = OwnerPolicy{}

// OwnerPolicy: lectura abierta a cualquier usuario autenticado, escritura solo para el dueño,
// eliminación para el dueño o un administrador.
type OwnerPolicy struct{}

// CanRead no depende del dueño.
func (OwnerPolicy) CanRead(identity entity.Identity, item *entity.InventoryItem) bool {
	return identity.IsAuthenticated() && item != nil
}

// CanWrite es verdadero solo si la identidad es el dueño del artículo.
func (OwnerPolicy) CanWrite(identity entity.Identity, item *entity.InventoryItem) bool {
	if !identity.IsAuthenticated() || item == nil {
		return false
	}
	return identity.UserID == item.OwnerID
}

// CanDelete es verdadero para el dueño del artículo o para un administrador.
func (p OwnerPolicy) CanDelete(identity entity.Identity, item *entity.InventoryItem) bool {
	if p.CanWrite(identity, item) {
		return true
	}
	return identity.IsAuthenticated() && identity.IsAdmin() && item != nil
}
