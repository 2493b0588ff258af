package entity

// Identity es la identidad ya autenticada de quien invoca una operación.
// El núcleo no la valida: la recibe del proveedor de identidad (JWT).
type Identity struct {
	UserID string
	Role   string
}

// IsAuthenticated indica si hay un usuario asociado.
func (i Identity) IsAuthenticated() bool { return i.UserID != "" }

// IsAdmin indica si la identidad tiene rol administrativo.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
