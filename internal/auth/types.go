package auth

import (
	"errors"
	"slices"
)

// Role represents an authorisation tier.
type Role string

const (
	// RoleViewer may read the circuit and projects but not change them.
	RoleViewer Role = "viewer"

	// RoleEditor may edit the circuit and save projects.
	RoleEditor Role = "editor"

	// RoleAdmin may additionally rename and delete stored projects.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of roles a token may carry.
var ValidRoles = []Role{RoleViewer, RoleEditor, RoleAdmin}

// IsValidRole reports whether r is one of ValidRoles.
func IsValidRole(r Role) bool {
	return slices.Contains(ValidRoles, r)
}

// Domain errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrInvalidRole  = errors.New("invalid role")
)
