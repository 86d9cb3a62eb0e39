package core

import (
	"time"

	"github.com/JSBS07/gestor-finanzas/internal/auth"
)

// Role separates regular users from administrators.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Account is a registered user. Email is the unique login identifier.
// TempPassword marks accounts whose password was reset by an admin and
// must be changed on next use.
type Account struct {
	ID           int64
	Email        string
	PasswordHash auth.SecretHash
	Name         string
	Role         Role
	TempPassword bool
	RegisteredAt time.Time
}

// IsAdmin reports whether the account has the administrator role.
func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }
