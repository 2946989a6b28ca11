package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidRole reports a role string outside the closed set.
var ErrInvalidRole = errors.New("domain: invalid role")

// Role is the closed set of authorization roles on the booking platform.
// Modelled as a checked enumeration so an illegal role is a construction
// error, not a silent always-false authorization check.
type Role string

const (
	// RoleCustomer is the default role for self-registered and
	// OAuth-created principals.
	RoleCustomer Role = "customer"

	// RoleCashier is front-desk staff: can look up customer records and
	// verify payments.
	RoleCashier Role = "cashier"

	// RoleAdmin has full administrative access.
	RoleAdmin Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleCustomer, RoleCashier, RoleAdmin}

// ParseRole validates a stored or user-supplied role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleCashier, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }
