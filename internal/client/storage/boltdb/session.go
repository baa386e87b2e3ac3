package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/Greg-Swiftomatic/promptomatik/internal/client/storage"
)

var sessionKey = []byte("current")

// SaveSession stores the session record as a single JSON value.
func (s *Storage) SaveSession(ctx context.Context, rec *storage.SessionRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		if err := bucket.Put(sessionKey, data); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		return nil
	})
}

// GetSession reads the persisted session record. Besides plain absence, the
// literal strings "null" and "undefined" count as corrupted state; the
// original deployment could leave them behind in its key-value store.
func (s *Storage) GetSession(ctx context.Context) (*storage.SessionRecord, error) {
	var rec *storage.SessionRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}

		data := bucket.Get(sessionKey)
		if data == nil {
			return storage.ErrSessionNotFound
		}

		if raw := string(data); raw == "null" || raw == "undefined" {
			return storage.ErrSessionCorrupted
		}

		rec = &storage.SessionRecord{}
		if err := json.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrSessionCorrupted, err)
		}
		if rec.Token == "" {
			return storage.ErrSessionCorrupted
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// DeleteSession removes the persisted session record.
func (s *Storage) DeleteSession(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}
		if err := bucket.Delete(sessionKey); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}
