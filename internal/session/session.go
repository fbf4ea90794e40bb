// Package session holds the authenticated state of the client: the bearer
// token and the current user. It is persisted to a YAML file so that
// separate CLI invocations share one login.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"fintrack/fintrack/internal/api"
	"fintrack/fintrack/internal/apierror"
	"fintrack/fintrack/internal/fileutils"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"

	"gopkg.in/yaml.v3"
)

// fileData is the on-disk layout of a session.
type fileData struct {
	AccessToken string      `yaml:"access_token"`
	TokenType   string      `yaml:"token_type,omitempty"`
	User        models.User `yaml:"user"`
	SavedAt     time.Time   `yaml:"saved_at"`
}

// Session is the process-wide login state. It is safe for concurrent use
// and implements api.TokenSource.
type Session struct {
	mu     sync.RWMutex
	file   string
	token  string
	user   models.User
	logger logging.Logger
}

// New returns an empty session persisted at file. An empty file keeps the
// session in memory only.
func New(file string, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Session{file: file, logger: logger}
}

// Load reads a previously saved session. A missing file is not an error.
func (s *Session) Load() error {
	if s.file == "" {
		return nil
	}
	data, err := os.ReadFile(s.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read session %s: %w", s.file, err)
	}

	var fd fileData
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return fmt.Errorf("parse session %s: %w", s.file, err)
	}

	s.mu.Lock()
	s.token = fd.AccessToken
	s.user = fd.User
	s.mu.Unlock()

	s.logger.Debug("Session loaded", logging.F(logging.FieldFile, s.file))
	return nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current user.
func (s *Session) User() models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Expire tears the session down after the backend rejected the token.
func (s *Session) Expire() {
	s.logger.Info("Session expired", logging.F(logging.FieldUser, s.User().Email))
	if err := s.clear(); err != nil {
		s.logger.WithError(err).Warn("Failed to remove expired session file")
	}
}

// Logout forgets the session and removes the session file.
func (s *Session) Logout() error {
	return s.clear()
}

// Login authenticates with the backend, fetches the user behind the new
// token and saves the session. auth must use this session as its token
// source for the user lookup to be authenticated.
func (s *Session) Login(ctx context.Context, auth api.Authenticator, username, password string) (models.User, error) {
	token, err := auth.Login(ctx, username, password)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	s.token = token.AccessToken
	s.user = models.User{Email: username}
	s.mu.Unlock()

	user, err := auth.Me(ctx)
	if err != nil {
		_ = s.clear()
		return models.User{}, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	if err := s.save(token.TokenType); err != nil {
		return user, err
	}
	s.logger.Info("Logged in", logging.F(logging.FieldUser, user.Email))
	return user, nil
}

// Register creates an account and logs into it.
func (s *Session) Register(ctx context.Context, auth api.Authenticator, r models.Registration) (models.User, error) {
	if _, err := auth.Register(ctx, r); err != nil {
		return models.User{}, err
	}
	return s.Login(ctx, auth, r.Email, r.Password)
}

// Restore checks a loaded session against the backend at startup. Without
// a token it returns apierror.ErrUnauthorized; a rejected token expires the
// session through the client's 401 handling.
func (s *Session) Restore(ctx context.Context, auth api.Authenticator) (models.User, error) {
	if !s.Authenticated() {
		return models.User{}, apierror.ErrUnauthorized
	}
	user, err := auth.Me(ctx)
	if err != nil {
		if errors.Is(err, apierror.ErrUnauthorized) && s.Authenticated() {
			// the client only expires sessions it sent a token for
			s.Expire()
		}
		return models.User{}, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

func (s *Session) save(tokenType string) error {
	if s.file == "" {
		return nil
	}
	s.mu.RLock()
	fd := fileData{
		AccessToken: s.token,
		TokenType:   tokenType,
		User:        s.user,
		SavedAt:     time.Now().UTC(),
	}
	s.mu.RUnlock()

	data, err := yaml.Marshal(fd)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := fileutils.WriteFileAtomic(s.file, data, models.PermissionSecretFile); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *Session) clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = models.User{}
	s.mu.Unlock()

	if s.file == "" {
		return nil
	}
	if err := os.Remove(s.file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session %s: %w", s.file, err)
	}
	return nil
}

var _ api.TokenSource = (*Session)(nil)
