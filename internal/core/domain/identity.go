package domain

import (
	"strings"
	"time"
)

// Role is the single authority granted to an identity. It is fixed at
// registration and never changes afterwards.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
	RoleMaster Role = "MASTER"
)

// ParseRole normalises s into one of the known roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleClient, RoleMaster:
		return r, nil
	}
	return "", ErrInvalidRole
}

// SelfRegistrable reports whether accounts with this role may be created
// through public registration.
func (r Role) SelfRegistrable() bool {
	return r == RoleClient || r == RoleMaster
}

// Identity is a registered principal of the platform.
type Identity struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
