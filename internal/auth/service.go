package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
	"github.com/CodingBreaker07/nema-traders/internal/settings"
)

// SessionCookie is the cookie carrying the unlock token.
const SessionCookie = "nema_session"

// sessionTTL bounds how long an unlock lasts.
const sessionTTL = 12 * time.Hour

// Service wraps the single local password gate. The bcrypt hash lives in
// settings; when no hash is set the application is open.
type Service struct {
	settings *settings.Service
	sessions *sessionStore
}

// NewService constructs a new Service.
func NewService(settingsService *settings.Service) *Service {
	return &Service{
		settings: settingsService,
		sessions: newSessionStore(sessionTTL),
	}
}

// Enabled reports whether a password gate is configured.
func (s *Service) Enabled(ctx context.Context) (bool, error) {
	hash, err := s.settings.PasswordHash(ctx)
	if err != nil {
		return false, err
	}
	return hash != "", nil
}

// Setup sets the password for the first time.
func (s *Service) Setup(ctx context.Context, password string) error {
	hash, err := s.settings.PasswordHash(ctx)
	if err != nil {
		return err
	}
	if hash != "" {
		return fmt.Errorf("%w: password already set", httpx.ErrConflict)
	}
	return s.storePassword(ctx, password)
}

// Update replaces the password after verifying the current one.
func (s *Service) Update(ctx context.Context, current, password string) error {
	hash, err := s.settings.PasswordHash(ctx)
	if err != nil {
		return err
	}
	if hash == "" {
		return fmt.Errorf("%w: no password set", httpx.ErrConflict)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return fmt.Errorf("%w: current password is incorrect", httpx.ErrUnauthorized)
	}
	return s.storePassword(ctx, password)
}

// Unlock verifies the password and issues a session token.
func (s *Service) Unlock(ctx context.Context, password string) (string, error) {
	hash, err := s.settings.PasswordHash(ctx)
	if err != nil {
		return "", err
	}
	if hash == "" {
		return "", fmt.Errorf("%w: no password set", httpx.ErrConflict)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", fmt.Errorf("%w: invalid password", httpx.ErrUnauthorized)
	}
	return s.sessions.Create()
}

// Lock revokes a session token.
func (s *Service) Lock(token string) {
	s.sessions.Destroy(token)
}

// Valid reports whether a session token is live.
func (s *Service) Valid(token string) bool {
	return s.sessions.Valid(token)
}

func (s *Service) storePassword(ctx context.Context, password string) error {
	if len(password) < 4 {
		return fmt.Errorf("%w: password must be at least 4 characters", httpx.ErrValidation)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.settings.SetPasswordHash(ctx, string(hashed))
}

type sessionStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	tokens map[string]time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{ttl: ttl, tokens: make(map[string]time.Time)}
}

func (st *sessionStore) Create() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)
	st.mu.Lock()
	st.tokens[token] = time.Now().Add(st.ttl)
	st.mu.Unlock()
	return token, nil
}

func (st *sessionStore) Valid(token string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	expires, ok := st.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expires) {
		delete(st.tokens, token)
		return false
	}
	return true
}

func (st *sessionStore) Destroy(token string) {
	st.mu.Lock()
	delete(st.tokens, token)
	st.mu.Unlock()
}
