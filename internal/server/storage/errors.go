package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that a user with this email already
	// exists. The unique index on users.email is the authority; the
	// existence check before insert is only a fast path.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrPromptNotFound indicates that prompt was not found
	ErrPromptNotFound = errors.New("prompt not found")
)
