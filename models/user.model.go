package models

import "time"

// User represents an account in the system. Accounts may be created
// explicitly via signup or implicitly during a guest checkout, in which case
// the phone number doubles as the login handle.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Password  string    `json:"-"`    // bcrypt hash, never serialized
	Role      string    `json:"role"` // "customer" or "admin"
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)
