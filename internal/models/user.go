package models

import "time"

// User represents a registered user. Records are created by the registration
// handler and never mutated by the auth core; password change and profile
// update are separate flows.
type User struct {
	ID             string    `json:"id"`         // UUID
	FirstName      string    `json:"first_name"` // display name
	Email          string    `json:"email"`      // unique, stored case-sensitive
	PasswordDigest string    `json:"-"`          // never serialized
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Prompt represents a stored prompt on the server.
type Prompt struct {
	ID        string    `json:"id"`      // UUID
	UserID    string    `json:"user_id"` // owner
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
