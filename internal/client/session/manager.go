// Package session owns the client-resident auth session: the in-memory and
// persisted token + user profile, validity checks, and the login, register,
// logout and refresh transitions. The UI layer only reads derived state and
// never touches the persisted slot directly.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Greg-Swiftomatic/promptomatik/internal/client/migration"
	"github.com/Greg-Swiftomatic/promptomatik/internal/client/storage"
	"github.com/Greg-Swiftomatic/promptomatik/internal/token"
	"github.com/Greg-Swiftomatic/promptomatik/internal/validation"
	"github.com/Greg-Swiftomatic/promptomatik/pkg/api"
)

// State is the session lifecycle state.
type State int

const (
	// StateUninitialized means Restore has not run yet.
	StateUninitialized State = iota
	// StateRestoring means the persisted session is being read.
	StateRestoring
	// StateAnonymous means no valid session exists.
	StateAnonymous
	// StateAuthenticated means a valid session is loaded.
	StateAuthenticated
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// MigrationState is the side-channel state of the one-time prompt migration.
type MigrationState int

const (
	// MigrationIdle means no migration activity.
	MigrationIdle MigrationState = iota
	// MigrationPending means the post-login check found pending prompts.
	MigrationPending
	// MigrationRunning means a migration is in flight.
	MigrationRunning
	// MigrationComplete means a migration run finished (see LastMigrationStatus).
	MigrationComplete
)

// MigrationStatus is the terminal status of the last migration run.
type MigrationStatus string

const (
	// MigrationStatusCompleted means every prompt migrated.
	MigrationStatusCompleted MigrationStatus = "completed"
	// MigrationStatusCompletedWithErrors means the run finished but some
	// prompts failed.
	MigrationStatusCompletedWithErrors MigrationStatus = "completed_with_errors"
	// MigrationStatusFailed means the run itself errored out.
	MigrationStatusFailed MigrationStatus = "failed"
)

var (
	// ErrNotAuthenticated indicates an operation that needs a session was
	// called without one.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrMigrationRunning indicates a migration is already in flight.
	ErrMigrationRunning = errors.New("migration already running")

	// ErrNoMigrator indicates no migration service is wired in.
	ErrNoMigrator = errors.New("no migration service configured")
)

// API is the server surface the manager needs.
type API interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Refresh(ctx context.Context, currentToken string) (*api.RefreshResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// Migrator is the migration collaborator contract.
type Migrator interface {
	IsMigrationNeeded(ctx context.Context) (bool, error)
	MigratePrompts(ctx context.Context) (*migration.Report, error)
	OnProgress(fn func(migration.Progress)) func()
}

const migrationCheckTimeout = 30 * time.Second

// Manager is the auth session manager. Construct with NewManager, call
// Restore once on startup, and tear down by letting it go out of scope;
// there is no ambient singleton.
type Manager struct {
	store    storage.SessionStorage
	api      API
	migrator Migrator
	logger   *slog.Logger

	mu             sync.Mutex
	state          State
	session        *storage.SessionRecord
	migrationState MigrationState
	lastMigration  MigrationStatus
}

// NewManager creates a session manager in the Uninitialized state.
func NewManager(store storage.SessionStorage, apiClient API, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		api:    apiClient,
		logger: logger,
		state:  StateUninitialized,
	}
}

// SetMigrator wires the migration service in. The migration service itself
// uses the manager as its token source, so the two are connected after
// construction.
func (m *Manager) SetMigrator(mig Migrator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.migrator = mig
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsAuthenticated reports whether a valid session is loaded.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// CurrentUser returns the user profile of the loaded session.
func (m *Manager) CurrentUser() (api.UserInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return api.UserInfo{}, false
	}
	return m.session.User, true
}

// AccessToken returns the current signed token. Implements
// migration.TokenSource.
func (m *Manager) AccessToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return "", ErrNotAuthenticated
	}
	return m.session.Token, nil
}

// MigrationState returns the migration side-channel state.
func (m *Manager) MigrationState() MigrationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.migrationState
}

// LastMigrationStatus returns the terminal status of the last migration run,
// or "" if none has finished.
func (m *Manager) LastMigrationStatus() MigrationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMigration
}

// Restore loads the persisted session on startup. A missing, corrupted or
// expired session ends in Anonymous with the slot cleared; errors are
// swallowed on purpose because restore must never take the application down.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	m.state = StateRestoring
	m.mu.Unlock()

	rec, err := m.store.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionCorrupted) {
			m.logger.Warn("clearing corrupted session", "error", err)
			m.clearSession(ctx)
			return
		}
		if !errors.Is(err, storage.ErrSessionNotFound) {
			m.logger.Warn("failed to read persisted session", "error", err)
		}
		m.setAnonymous()
		return
	}

	// Local expiry check only; the payload is not trusted for anything
	// beyond deciding whether to keep the session around.
	payload, err := token.DecodePayload(rec.Token)
	if err != nil {
		m.logger.Warn("clearing session with malformed token", "error", err)
		m.clearSession(ctx)
		return
	}
	if payload.Expired(time.Now()) {
		m.logger.Info("persisted session expired, clearing", "user_id", payload.UserID)
		m.clearSession(ctx)
		return
	}

	m.mu.Lock()
	m.session = rec
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.logger.Debug("session restored", "user_id", rec.User.ID)
}

// Login authenticates with the server and persists the returned session.
// Server-rejected credentials come back as *api.Error; the caller does not
// need to distinguish transport errors from rejections to show a message.
func (m *Manager) Login(ctx context.Context, email, password string) (*storage.SessionRecord, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, &api.Error{Code: api.CodeValidationError, Message: err.Error()}
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, &api.Error{Code: api.CodeValidationError, Message: err.Error()}
	}

	resp, err := m.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return m.adoptSession(ctx, resp)
}

// Register creates an account and persists the returned session.
func (m *Manager) Register(ctx context.Context, firstName, email, password string) (*storage.SessionRecord, error) {
	if err := validation.ValidateFirstName(firstName); err != nil {
		return nil, &api.Error{Code: api.CodeValidationError, Message: err.Error()}
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, &api.Error{Code: api.CodeValidationError, Message: err.Error()}
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, &api.Error{Code: api.CodeValidationError, Message: err.Error()}
	}

	resp, err := m.api.Register(ctx, api.RegisterRequest{
		FirstName: firstName,
		Email:     email,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return m.adoptSession(ctx, resp)
}

// adoptSession persists the session from a successful auth response, flips
// to Authenticated, and kicks off the migration-need check in the
// background.
func (m *Manager) adoptSession(ctx context.Context, resp *api.AuthResponse) (*storage.SessionRecord, error) {
	rec := &storage.SessionRecord{
		Token: resp.Token,
		User:  resp.User,
	}

	// Token and user go into the slot in a single write.
	if err := m.store.SaveSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.session = rec
	m.state = StateAuthenticated
	migrator := m.migrator
	m.mu.Unlock()

	if migrator != nil {
		// Fire and forget: a failing check must not fail the login.
		go m.checkMigrationNeeded(migrator)
	}

	return rec, nil
}

// checkMigrationNeeded runs detached after login/register and only flips the
// side-channel state; its failure is logged and dropped.
func (m *Manager) checkMigrationNeeded(migrator Migrator) {
	ctx, cancel := context.WithTimeout(context.Background(), migrationCheckTimeout)
	defer cancel()

	needed, err := migrator.IsMigrationNeeded(ctx)
	if err != nil {
		m.logger.Warn("migration check failed", "error", err)
		return
	}
	if !needed {
		return
	}

	m.mu.Lock()
	if m.migrationState == MigrationIdle {
		m.migrationState = MigrationPending
	}
	m.mu.Unlock()

	m.logger.Info("local prompts pending migration")
}

// Logout notifies the server on a best-effort basis, then unconditionally
// clears the persisted and in-memory session. The clear happens even when
// the network call fails.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	current := m.session
	m.mu.Unlock()

	if current != nil {
		if err := m.api.Logout(ctx, current.Token); err != nil {
			m.logger.Warn("failed to logout on server", "error", err)
		}
	}

	if err := m.store.DeleteSession(ctx); err != nil {
		m.setAnonymous()
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}

	m.setAnonymous()
	return nil
}

// RefreshToken exchanges the current token for a fresh one and merges it
// into the persisted record, preserving the user field. Any failure ends in
// logout: the session must never keep a token believed stale.
func (m *Manager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	current := m.session
	m.mu.Unlock()

	if current == nil {
		return ErrNotAuthenticated
	}

	resp, err := m.api.Refresh(ctx, current.Token)
	if err != nil {
		m.logger.Warn("token refresh failed, logging out", "error", err)
		if logoutErr := m.Logout(ctx); logoutErr != nil {
			m.logger.Warn("cleanup logout failed", "error", logoutErr)
		}
		return fmt.Errorf("refresh failed: %w", err)
	}

	// Read-modify-write on the persisted slot: overlay the new token,
	// keep whatever user profile is stored. Falls back to the in-memory
	// record when the slot cannot be read.
	rec, err := m.store.GetSession(ctx)
	if err != nil {
		copied := *current
		rec = &copied
	}
	rec.Token = resp.Token

	if err := m.store.SaveSession(ctx, rec); err != nil {
		m.logger.Warn("failed to persist refreshed session, logging out", "error", err)
		if logoutErr := m.Logout(ctx); logoutErr != nil {
			m.logger.Warn("cleanup logout failed", "error", logoutErr)
		}
		return fmt.Errorf("failed to persist refreshed session: %w", err)
	}

	m.mu.Lock()
	m.session = rec
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.logger.Debug("token refreshed")
	return nil
}

// RunMigration runs the prompt migration. At most one migration runs at a
// time, enforced by the Running state; a second call while one is in flight
// returns ErrMigrationRunning. The progress listener is always unregistered
// before the Running state is left, and the error of a failed run is
// returned to the caller after the terminal status is recorded.
func (m *Manager) RunMigration(ctx context.Context) (*migration.Report, error) {
	m.mu.Lock()
	migrator := m.migrator
	if migrator == nil {
		m.mu.Unlock()
		return nil, ErrNoMigrator
	}
	if m.migrationState == MigrationRunning {
		m.mu.Unlock()
		return nil, ErrMigrationRunning
	}
	m.migrationState = MigrationRunning
	m.mu.Unlock()

	unregister := migrator.OnProgress(func(p migration.Progress) {
		m.logger.Info("migration progress",
			"done", p.Done,
			"total", p.Total,
			"failed", p.Failed)
	})

	report, err := migrator.MigratePrompts(ctx)

	unregister()

	m.mu.Lock()
	m.migrationState = MigrationComplete
	switch {
	case err != nil:
		m.lastMigration = MigrationStatusFailed
	case report.Failed > 0:
		m.lastMigration = MigrationStatusCompletedWithErrors
	default:
		m.lastMigration = MigrationStatusCompleted
	}
	m.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return report, nil
}

// clearSession deletes the persisted slot and goes Anonymous; used by the
// restore path where failures are swallowed.
func (m *Manager) clearSession(ctx context.Context) {
	if err := m.store.DeleteSession(ctx); err != nil {
		m.logger.Warn("failed to clear persisted session", "error", err)
	}
	m.setAnonymous()
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	m.session = nil
	m.state = StateAnonymous
	m.mu.Unlock()
}
