// Package storage defines the client-side persistence interfaces. The
// session is a single mutable slot owned by the session manager; prompts are
// the local records the migration flow moves to the server.
package storage

import (
	"context"
	"time"

	"github.com/Greg-Swiftomatic/promptomatik/pkg/api"
)

// SessionRecord is the persisted pairing of a signed token and the public
// user profile. Token and user are always written together.
type SessionRecord struct {
	Token string       `json:"token"`
	User  api.UserInfo `json:"user"`
}

// SessionStorage is the single persisted session slot.
type SessionStorage interface {
	// SaveSession writes the record, replacing any previous one. Token and
	// user land in one write; a reader never sees a partial record.
	SaveSession(ctx context.Context, rec *SessionRecord) error

	// GetSession reads the persisted record.
	// Returns ErrSessionNotFound when no session exists and
	// ErrSessionCorrupted when the stored bytes do not decode.
	GetSession(ctx context.Context) (*SessionRecord, error)

	// DeleteSession removes the persisted record. Deleting an absent
	// session is not an error.
	DeleteSession(ctx context.Context) error
}

// PromptRecord is a locally stored prompt awaiting migration.
type PromptRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Migrated  bool      `json:"migrated"`
}

// PromptStorage persists local prompts on the client.
type PromptStorage interface {
	// SavePrompt writes the record, replacing any record with the same ID.
	SavePrompt(ctx context.Context, rec *PromptRecord) error

	// ListPrompts returns all local prompts, oldest first.
	ListPrompts(ctx context.Context) ([]*PromptRecord, error)
}
