package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // never leaves the service
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// HasIdentity reports whether the record carries the fields tokens are built from.
func (u *User) HasIdentity() bool {
	return u != nil && u.ID != uuid.Nil && u.Email != ""
}

// Identity is the authenticated principal attached to a request by the guards.
// RefreshToken is only populated by the refresh guard so the raw token can be rotated.
type Identity struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	RefreshToken string    `json:"-"`
}

// IdentityFromUser projects a user record onto the public identity fields.
func IdentityFromUser(u *User) *Identity {
	return &Identity{ID: u.ID, Email: u.Email, Name: u.Name}
}
