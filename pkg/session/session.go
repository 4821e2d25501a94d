// Package session owns the authenticated session: login, registration,
// profile refresh, logout, and durable persistence. All readers go through
// the Manager rather than touching storage directly.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hpcatalog/catalogadmin/pkg/apiclient"
	"github.com/hpcatalog/catalogadmin/pkg/kvstore"
)

// ErrMissingToken is returned by operations that need an access token before
// any network call is attempted.
var ErrMissingToken = errors.New("missing token: sign in first")

// StorageKey is the durable storage entry holding the persisted session.
const StorageKey = "auth"

// User is the authenticated user's profile.
type User struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// Session holds the current credentials. Token and ExpiresAt are either both
// set or both empty; the same holds for the refresh pair.
type Session struct {
	Token            string `json:"token"`
	ExpiresAt        string `json:"expiresAt"`
	RefreshToken     string `json:"refreshToken"`
	RefreshExpiresAt string `json:"refreshExpiresAt"`
	User             *User  `json:"user"`
}

// normalize enforces the token/expiry pairing invariant.
func (s *Session) normalize() {
	if s.Token == "" || s.ExpiresAt == "" {
		s.Token, s.ExpiresAt = "", ""
	}
	if s.RefreshToken == "" || s.RefreshExpiresAt == "" {
		s.RefreshToken, s.RefreshExpiresAt = "", ""
	}
}

// Partial carries the fields of a session merge; nil fields are left
// unchanged by Hydrate.
type Partial struct {
	Token            *string
	ExpiresAt        *string
	RefreshToken     *string
	RefreshExpiresAt *string
	User             *User
}

type authResponse struct {
	AccessToken      string `json:"accessToken"`
	ExpiresAt        string `json:"expiresAt"`
	RefreshToken     string `json:"refreshToken"`
	RefreshExpiresAt string `json:"refreshExpiresAt"`
	User             *User  `json:"user"`
}

// Manager is the owning component for session state.
type Manager struct {
	client *apiclient.Client
	store  kvstore.Store
	logger *slog.Logger

	mu   sync.Mutex
	sess Session
	busy bool
}

// NewManager creates a Manager talking to the auth service behind client and
// restores any previously persisted session. Malformed storage restores the
// empty session instead of failing.
func NewManager(client *apiclient.Client, store kvstore.Store, logger *slog.Logger) *Manager {
	m := &Manager{client: client, store: store, logger: logger}
	m.sess = loadSession(context.Background(), store)
	return m
}

// Session returns a copy of the current session.
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// Token returns the current access token, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.Token
}

// Busy reports whether a login or registration call is in flight.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// Login authenticates with email and password. On success the entire session
// is replaced and persisted; on failure the busy flag is cleared and the
// error propagates for display.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, "/api/Auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and signs in with the returned session.
func (m *Manager) Register(ctx context.Context, email, password, fullName string) error {
	return m.authenticate(ctx, "/api/Auth/register", map[string]string{
		"email":    email,
		"password": password,
		"fullName": fullName,
	})
}

func (m *Manager) authenticate(ctx context.Context, path string, body map[string]string) error {
	m.setBusy(true)
	defer m.setBusy(false)

	resp, err := apiclient.Do[authResponse](ctx, m.client, path, apiclient.Options{
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sess = Session{
		Token:            resp.AccessToken,
		ExpiresAt:        resp.ExpiresAt,
		RefreshToken:     resp.RefreshToken,
		RefreshExpiresAt: resp.RefreshExpiresAt,
		User:             resp.User,
	}
	m.sess.normalize()
	sess := m.sess
	m.mu.Unlock()

	m.persist(ctx, sess)
	return nil
}

// Me fetches the current user's profile and stores it on the session.
func (m *Manager) Me(ctx context.Context) (*User, error) {
	token := m.Token()
	if token == "" {
		return nil, ErrMissingToken
	}

	user, err := apiclient.Do[*User](ctx, m.client, "/api/Auth/me", apiclient.Options{
		Token: token,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sess.User = user
	sess := m.sess
	m.mu.Unlock()

	m.persist(ctx, sess)
	return user, nil
}

// Logout clears every session field and removes the durable entry. It is
// idempotent.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.sess = Session{}
	m.mu.Unlock()

	if err := m.store.Del(ctx, StorageKey); err != nil {
		m.logger.Warn("clear persisted session", slog.String("error", err.Error()))
	}
}

// Hydrate merges the fields present in p over the current session and
// persists the result. Used to restore state at startup.
func (m *Manager) Hydrate(ctx context.Context, p Partial) {
	m.mu.Lock()
	if p.Token != nil {
		m.sess.Token = *p.Token
	}
	if p.ExpiresAt != nil {
		m.sess.ExpiresAt = *p.ExpiresAt
	}
	if p.RefreshToken != nil {
		m.sess.RefreshToken = *p.RefreshToken
	}
	if p.RefreshExpiresAt != nil {
		m.sess.RefreshExpiresAt = *p.RefreshExpiresAt
	}
	if p.User != nil {
		m.sess.User = p.User
	}
	m.sess.normalize()
	sess := m.sess
	m.mu.Unlock()

	m.persist(ctx, sess)
}

func (m *Manager) setBusy(v bool) {
	m.mu.Lock()
	m.busy = v
	m.mu.Unlock()
}
