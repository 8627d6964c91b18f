package domain

import "time"

// Built-in role names. The name, not the id, travels in access tokens.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

type Role struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
