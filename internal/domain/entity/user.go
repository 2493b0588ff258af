package entity

import "time"

// Roles válidos para User.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User representa un usuario registrado.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
