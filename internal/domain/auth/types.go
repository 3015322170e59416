// Package auth contains the domain types and logic for authentication.
package auth

import "errors"

// Role represents an access level attached to an issued token.
type Role string

const (
	// RoleAdmin may trigger scraping and dataset reloads.
	RoleAdmin Role = "admin"
	// RoleUser has read access to the catalogue.
	RoleUser Role = "user"
)

// IsValid returns true if the role is one of the two known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// Allows reports whether a holder of role r may perform an operation that
// requires the given role. Admin satisfies every requirement.
func (r Role) Allows(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// ErrUnauthorized is returned for bad credentials and for tokens that are
// missing, malformed, expired, or signed with the wrong key.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when a token is valid but its role is insufficient.
var ErrForbidden = errors.New("forbidden")

// Account is a configured credential: a username mapped to a password hash
// and a role. Accounts come from configuration, not code.
type Account struct {
	Username     string `yaml:"username" mapstructure:"username" validate:"required"`
	PasswordHash string `yaml:"password_hash" mapstructure:"password_hash" validate:"required"`
	Role         Role   `yaml:"role" mapstructure:"role" validate:"required,oneof=admin user"`
}
