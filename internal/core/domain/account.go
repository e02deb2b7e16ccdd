package domain

import (
	"strings"
	"time"
)

// Role is the closed set of roles an account may hold.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// ParseRole maps a stored role string to a Role. Unknown values are rejected
// so that a typo in the store never grants a privilege.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", ErrUnknownRole
}

func (r Role) String() string { return string(r) }

// Account models a registered identity.
type Account struct {
	ID              uint64
	Email           string
	NormalizedEmail string
	PasswordHash    string
	Role            Role
	CreatedAt       time.Time
}

// NormalizeEmail trims surrounding whitespace and lower-cases email. The
// result is only used for equality comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Session is the outcome of a successful Register or Login.
type Session struct {
	Token     string
	Email     string
	Role      Role
	ExpiresAt time.Time
}
