package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/Greg-Swiftomatic/promptomatik/internal/client/storage"
)

// SavePrompt stores a local prompt record keyed by its ID.
func (s *Storage) SavePrompt(ctx context.Context, rec *storage.PromptRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPrompts)
		if bucket == nil {
			return fmt.Errorf("prompts bucket not found")
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal prompt: %w", err)
		}

		if err := bucket.Put([]byte(rec.ID), data); err != nil {
			return fmt.Errorf("failed to save prompt: %w", err)
		}

		return nil
	})
}

// ListPrompts returns all local prompts, oldest first.
func (s *Storage) ListPrompts(ctx context.Context) ([]*storage.PromptRecord, error) {
	var prompts []*storage.PromptRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPrompts)
		if bucket == nil {
			return fmt.Errorf("prompts bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			rec := &storage.PromptRecord{}
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("failed to unmarshal prompt %s: %w", k, err)
			}
			prompts = append(prompts, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(prompts, func(i, j int) bool {
		return prompts[i].CreatedAt.Before(prompts[j].CreatedAt)
	})

	return prompts, nil
}
