package domain

import "strings"

// Role is the closed set of account types.
type Role string

const (
	RoleProducer Role = "produtor"
	RoleBuyer    Role = "comprador"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleProducer, RoleBuyer, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanManageProducts reports whether the role may create and own listings.
func (r Role) CanManageProducts() bool {
	switch r {
	case RoleProducer:
		return true
	case RoleBuyer, RoleAdmin:
		return false
	default:
		return false
	}
}

// CanAdministerUsers reports whether the role may list and delete accounts.
func (r Role) CanAdministerUsers() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleProducer, RoleBuyer:
		return false
	default:
		return false
	}
}

// User models an account holder. PasswordHash never leaves the process.
type User struct {
	ID           int64   `json:"id"`
	Name         string  `json:"nome"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Role         Role    `json:"tipo"`
	Location     *string `json:"localizacao"`
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
