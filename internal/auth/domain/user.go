package domain

import (
	"strings"
	"time"
)

// User is a storefront account. Email is stored lower-cased and is unique.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string // argon2id PHC string, or a legacy bcrypt hash
	RoleID       int64
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name for display.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
