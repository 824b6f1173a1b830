package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultLoginError is shown when the backend gives no reason for a failed login.
const DefaultLoginError = "Login failed"

// DefaultRegisterError is shown when the backend gives no reason for a failed
// sign-up.
const DefaultRegisterError = "Registration failed"

// ErrNotAuthenticated is returned by operations that need a session.
var ErrNotAuthenticated = errors.New("not logged in. Run 'stt login' first")

// Session is the authenticated state of the client. An empty Token means
// nobody is logged in.
type Session struct {
	Token string
}

// TokenStore persists the token between runs.
type TokenStore interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// Authenticator exchanges credentials for a token. Register may return an
// empty token when the backend does not sign new accounts in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) (string, error)
}

// AuthError is a failed login. Message is safe to show to the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// Manager owns the process-wide session. It is created once at start-up and
// only changes through Login, Logout and Restore.
type Manager struct {
	mu      sync.RWMutex
	current Session
	store   TokenStore
	auth    Authenticator
	log     *zap.Logger
}

func NewManager(store TokenStore, auth Authenticator, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, auth: auth, log: log}
}

// Restore loads a previously persisted token.
func (m *Manager) Restore() error {
	token, err := m.store.LoadToken()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.current = Session{Token: token}
	m.mu.Unlock()
	return nil
}

// Login authenticates against the backend and persists the token.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return &AuthError{Message: "Email and password are required"}
	}

	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.log.Warn("login failed", zap.String("email", email), zap.Error(err))
		return &AuthError{Message: userMessage(err, DefaultLoginError), Err: err}
	}
	if token == "" {
		return &AuthError{Message: DefaultLoginError}
	}

	if err := m.start(token); err != nil {
		return err
	}
	m.log.Info("logged in", zap.String("email", email))
	return nil
}

// Register creates an account. It reports whether the new account was also
// logged in; when it was not, the caller still has to Login.
func (m *Manager) Register(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, &AuthError{Message: "Email and password are required"}
	}

	token, err := m.auth.Register(ctx, email, password)
	if err != nil {
		m.log.Warn("registration failed", zap.String("email", email), zap.Error(err))
		return false, &AuthError{Message: userMessage(err, DefaultRegisterError), Err: err}
	}
	m.log.Info("registered", zap.String("email", email))
	if token == "" {
		return false, nil
	}

	if err := m.start(token); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) start(token string) error {
	if err := m.store.SaveToken(token); err != nil {
		return err
	}
	m.mu.Lock()
	m.current = Session{Token: token}
	m.mu.Unlock()
	return nil
}

// userMessage prefers the reason supplied by the backend.
func userMessage(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}

// Logout forgets the session. Memory is cleared even if the store fails.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.current = Session{}
	m.mu.Unlock()

	if err := m.store.ClearToken(); err != nil {
		m.log.Error("clearing persisted token", zap.Error(err))
		return err
	}
	return nil
}

func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Token
}

// Require returns ErrNotAuthenticated when there is no session.
func (m *Manager) Require() error {
	if !m.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}
