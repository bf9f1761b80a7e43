package models

import (
	"time"
)

// User represents an identity provisioned from a validated bearer token.
// The ID is the token subject, an opaque string assigned by the identity
// provider; users are never registered explicitly in this service.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(id, email string) *User {
	now := time.Now()
	return &User{
		ID:        id,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
