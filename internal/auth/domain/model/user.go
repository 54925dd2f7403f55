package model

import "time"

// Roles an operator can hold.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Account is a login the credential provider knows about.
type Account struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	PasswordHash []byte `json:"-"`
}

// UserProfile is the session marker persisted after a successful login.
type UserProfile struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	LoginTime time.Time `json:"loginTime"`
}

// Profile returns the public part of the account.
func (a Account) Profile(at time.Time) UserProfile {
	return UserProfile{Email: a.Email, Name: a.Name, Role: a.Role, LoginTime: at.UTC()}
}
