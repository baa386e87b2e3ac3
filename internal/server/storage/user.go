package storage

import (
	"context"

	"github.com/Greg-Swiftomatic/promptomatik/internal/models"
)

// UserStorage defines the credential store: the single source of truth for
// whether an email is taken and what its password digest is.
type UserStorage interface {
	// CreateUser inserts a new user record.
	// Returns ErrUserAlreadyExists if the email is already taken; the
	// uniqueness constraint at the storage layer resolves the race between
	// a prior existence check and the insert.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by exact email match.
	// Returns ErrUserNotFound if no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	// Returns ErrUserNotFound if no such user exists.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}
