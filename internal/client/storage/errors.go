package storage

import "errors"

// Common client storage errors
var (
	// ErrSessionNotFound indicates that no session is persisted
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCorrupted indicates the persisted session does not decode;
	// callers treat it as "no session" and clear the slot
	ErrSessionCorrupted = errors.New("session data corrupted")
)
