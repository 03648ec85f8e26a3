package domain

import "time"

// Role enumerates the two account roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalizes free-form role input, defaulting to USER.
func ParseRole(raw string) Role {
	switch raw {
	case string(RoleAdmin), "admin":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// User is the domain model for accounts that submit and manage tickets.
// ResetToken and ResetTokenExpiry are present only between a password-reset
// request and its consumption.
type User struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	PasswordHash     string     `json:"password_hash"`
	Role             Role       `json:"role"`
	CreatedAt        time.Time  `json:"created_at"`
	ResetToken       *string    `json:"reset_token,omitempty"`
	ResetTokenExpiry *time.Time `json:"reset_token_expiry,omitempty"`
}
