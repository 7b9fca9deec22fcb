package accounts

import "time"

// Role is an account authority level. Roles gate nothing in the event
// authorization path (ownership does); they are carried into access tokens
// for clients that want to display capabilities.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// Account is a registered user. Email is the login name and is unique across
// the store. PasswordHash is a bcrypt hash; the plaintext is never stored or
// compared directly.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
}

// RoleStrings returns the roles as plain strings for token claims.
func (a *Account) RoleStrings() []string {
	if a == nil || len(a.Roles) == 0 {
		return nil
	}
	out := make([]string, len(a.Roles))
	for i, r := range a.Roles {
		out[i] = string(r)
	}
	return out
}

// HasRole reports whether the account carries the given role.
func (a *Account) HasRole(role Role) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}
