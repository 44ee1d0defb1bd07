// Package session holds the authenticated user and tokens for one server
// profile.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/internal/broadcast"
	"github.com/google/renameio/v2"
	"go.uber.org/zap"
)

// Session is the explicit authentication context passed to collaborators.
// It satisfies api.TokenSource.
type Session struct {
	mu           sync.RWMutex
	token        string
	refreshToken string

	user broadcast.Cell[*api.User]
	log  *zap.SugaredLogger
}

// New returns an unauthenticated session.
func New() *Session {
	s := &Session{log: zap.S().Named("session")}
	s.user.Set(nil)
	return s
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// RefreshToken returns the refresh token, if one was issued.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// User returns the current user, if known. A session authenticated with a
// static token has no user.
func (s *Session) User() (*api.User, bool) {
	u, _ := s.user.Get()
	return u, u != nil
}

// Role returns the current user's role, or "" when unknown.
func (s *Session) Role() api.Role {
	if u, ok := s.User(); ok {
		return u.Role
	}
	return ""
}

// Privileged reports whether the current user is an administrator.
func (s *Session) Privileged() bool {
	return s.Role().Privileged()
}

// Subscribe streams the current user, starting with the present value. A
// nil user means logged out.
func (s *Session) Subscribe() *broadcast.Subscription[*api.User] {
	return s.user.Subscribe()
}

// Set installs the result of a login or refresh.
func (s *Session) Set(res api.LoginResult) {
	s.mu.Lock()
	s.token = res.Token
	if res.RefreshToken != "" {
		s.refreshToken = res.RefreshToken
	}
	s.mu.Unlock()

	u := res.User
	s.user.Set(&u)
}

// SetToken installs a pre-issued token with no associated user.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear forgets tokens and user.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.refreshToken = ""
	s.mu.Unlock()
	s.user.Set(nil)
}

// Login authenticates with email and password.
func (s *Session) Login(ctx context.Context, auth api.AuthServiceAPI, email, password string) error {
	res, err := auth.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.Set(*res)
	s.log.Infow("logged in", "user", res.User.Email, "role", res.User.Role)
	return nil
}

// Refresh exchanges the refresh token for a new token. On failure the
// session is cleared.
func (s *Session) Refresh(ctx context.Context, auth api.AuthServiceAPI) error {
	res, err := auth.Refresh(ctx, s.RefreshToken())
	if err != nil {
		s.Clear()
		return fmt.Errorf("refreshing token: %w", err)
	}
	s.Set(*res)
	return nil
}

// Logout tells the backend and clears the session. A backend failure is
// logged; the local session is cleared regardless.
func (s *Session) Logout(ctx context.Context, auth api.AuthServiceAPI) {
	if err := auth.Logout(ctx); err != nil {
		s.log.Warnw("logout request failed", "error", err)
	}
	s.Clear()
}

type persisted struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	User         *api.User `json:"user,omitempty"`
}

// DefaultPath returns where the session for the given profile is stored,
// following XDG state directory conventions.
func DefaultPath(profile string) string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.Getenv("HOME")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "maintenance-tui", profile+".session.json")
}

// Save writes the session to path atomically with owner-only permissions.
func (s *Session) Save(path string) error {
	s.mu.RLock()
	p := persisted{Token: s.token, RefreshToken: s.refreshToken}
	s.mu.RUnlock()
	p.User, _ = s.User()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending session file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			s.log.Debugw("cleanup pending session file", "error", err)
		}
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace session file: %w", err)
	}
	return nil
}

// Load restores a session saved by Save. A missing file is not an error;
// the session simply stays logged out.
func (s *Session) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding session %s: %w", path, err)
	}

	s.mu.Lock()
	s.token = p.Token
	s.refreshToken = p.RefreshToken
	s.mu.Unlock()
	s.user.Set(p.User)
	return nil
}

// Remove deletes a saved session file.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}
