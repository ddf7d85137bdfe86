package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/starford/scrawl/internal/models"
	"github.com/starford/scrawl/internal/remote"
	"github.com/starford/scrawl/internal/storage"
)

// AuthClient is the remote surface the store needs for login and register.
type AuthClient interface {
	Login(ctx context.Context, username, password string) (*remote.LoginResult, error)
	Register(ctx context.Context, email, username, password string) (*models.User, error)
}

// Store holds the current session and keeps it in sync with the persisted
// record. It is safe for concurrent readers; all mutations go through it.
type Store struct {
	provider storage.Provider
	api      AuthClient

	mu  sync.RWMutex
	cur Session
}

// NewStore rehydrates the session from the persisted record, if any.
// A record that does not decode is discarded and the store starts logged out.
func NewStore(provider storage.Provider) (*Store, error) {
	s := &Store{provider: provider}
	data, err := provider.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("session: load record: %w", err)
	}
	if err := json.Unmarshal(data, &s.cur); err != nil {
		slog.Warn("session: discarding unreadable record", slog.String("error", err.Error()))
		s.cur = Session{}
	}
	return s, nil
}

// SetAuthClient wires the API client used by Login and Register.
func (s *Store) SetAuthClient(api AuthClient) {
	s.api = api
}

// Current returns a copy of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// User returns a copy of the authenticated user, or nil when logged out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur.User == nil {
		return nil
	}
	u := *s.cur.User
	return &u
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Token
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.IsAuthenticated()
}

// Login exchanges credentials for a session and persists it. On failure the
// prior session, if any, is left untouched.
func (s *Store) Login(ctx context.Context, username, password string) error {
	res, err := s.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := res.User
	s.cur = Session{User: &user, Token: res.AccessToken}
	return s.persistLocked()
}

// Register creates an account without establishing a session.
func (s *Store) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	return s.api.Register(ctx, email, username, password)
}

// Logout clears the in-memory and persisted session. It is idempotent.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Session{}
	if err := s.provider.Clear(); err != nil {
		return fmt.Errorf("session: clear record: %w", err)
	}
	return nil
}

// UpdateUser replaces the user field and re-persists. The token is untouched.
func (s *Store) UpdateUser(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.User = &u
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.cur)
	if err != nil {
		return fmt.Errorf("session: encode record: %w", err)
	}
	if err := s.provider.Save(data); err != nil {
		return fmt.Errorf("session: persist record: %w", err)
	}
	return nil
}
