// Package migration moves locally stored prompts to the server. The flow
// runs at most once per batch of pending prompts: each prompt is uploaded,
// marked migrated locally on success, and left pending for a later retry on
// failure.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	clientstorage "github.com/Greg-Swiftomatic/promptomatik/internal/client/storage"
	"github.com/Greg-Swiftomatic/promptomatik/pkg/api"
)

// Progress is delivered to registered listeners after every prompt.
type Progress struct {
	Total  int
	Done   int
	Failed int
}

// Report summarizes a finished migration run.
type Report struct {
	Total    int
	Migrated int
	Failed   int
}

// TokenSource supplies the current access token for uploads. The session
// manager implements it.
type TokenSource interface {
	AccessToken() (string, error)
}

// PromptAPI is the server surface the migration needs.
type PromptAPI interface {
	CreatePrompt(ctx context.Context, accessToken string, req api.CreatePromptRequest) (*api.PromptResponse, error)
}

// Service uploads pending local prompts to the server.
type Service struct {
	store  clientstorage.PromptStorage
	api    PromptAPI
	tokens TokenSource
	logger *slog.Logger

	mu        sync.Mutex
	listeners map[int]func(Progress)
	nextID    int
}

// NewService creates a migration service.
func NewService(store clientstorage.PromptStorage, promptAPI PromptAPI, tokens TokenSource, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		api:       promptAPI,
		tokens:    tokens,
		logger:    logger,
		listeners: make(map[int]func(Progress)),
	}
}

// IsMigrationNeeded reports whether any local prompt is still pending.
func (s *Service) IsMigrationNeeded(ctx context.Context) (bool, error) {
	prompts, err := s.store.ListPrompts(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list local prompts: %w", err)
	}
	for _, p := range prompts {
		if !p.Migrated {
			return true, nil
		}
	}
	return false, nil
}

// OnProgress registers a progress listener and returns its unregister
// function. Unregistering twice is harmless.
func (s *Service) OnProgress(fn func(Progress)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// notify delivers progress to all registered listeners.
func (s *Service) notify(p Progress) {
	s.mu.Lock()
	fns := make([]func(Progress), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

// MigratePrompts uploads every pending prompt. Individual upload failures
// are counted, not fatal; the prompt stays pending for the next run. An
// error is returned only when the run as a whole cannot proceed.
func (s *Service) MigratePrompts(ctx context.Context) (*Report, error) {
	prompts, err := s.store.ListPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list local prompts: %w", err)
	}

	pending := make([]*clientstorage.PromptRecord, 0, len(prompts))
	for _, p := range prompts {
		if !p.Migrated {
			pending = append(pending, p)
		}
	}

	report := &Report{Total: len(pending)}
	if len(pending) == 0 {
		return report, nil
	}

	accessToken, err := s.tokens.AccessToken()
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	for i, p := range pending {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("migration canceled: %w", err)
		}

		_, err := s.api.CreatePrompt(ctx, accessToken, api.CreatePromptRequest{
			Title:   p.Title,
			Content: p.Content,
		})
		if err != nil {
			report.Failed++
			s.logger.Warn("failed to migrate prompt",
				"prompt_id", p.ID,
				"error", err)
		} else {
			p.Migrated = true
			if err := s.store.SavePrompt(ctx, p); err != nil {
				// Upload succeeded but the local flag did not stick;
				// the next run will re-upload this prompt.
				s.logger.Warn("failed to mark prompt migrated",
					"prompt_id", p.ID,
					"error", err)
			}
			report.Migrated++
		}

		s.notify(Progress{
			Total:  report.Total,
			Done:   i + 1,
			Failed: report.Failed,
		})
	}

	s.logger.Info("prompt migration finished",
		"total", report.Total,
		"migrated", report.Migrated,
		"failed", report.Failed)

	return report, nil
}
