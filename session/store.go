// Package session holds the process-wide authentication state of the admin console.
package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

var (
	ErrNotInitialized = errors.New("session store not initialized")

	nowFunc = time.Now // mockable
)

// credentials is the persisted layout of the credentials file.
type credentials struct {
	Token string       `yaml:"token"`
	User  academy.User `yaml:"user"`
	SetAt time.Time    `yaml:"set_at"`
}

// Store is the bearer token store. Init reads the persisted token; Teardown clears it.
type Store struct {
	path   string
	logger core.Logger

	mu          sync.RWMutex
	initialized bool
	token       string
	user        *academy.User
}

func NewStore(path string, logger core.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Init loads the persisted credentials, if any. Expired tokens are dropped.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	buf, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "reading credentials file")
	}

	var creds credentials
	if err := yaml.Unmarshal(buf, &creds); err != nil {
		s.warn("ignoring malformed credentials file", err)
		return s.removeFile()
	}
	if creds.Token == "" {
		return nil
	}
	if expired(creds.Token) {
		s.warn("stored token has expired")
		return s.removeFile()
	}

	s.token = creds.Token
	usr := creds.User
	s.user = &usr
	return nil
}

// Teardown clears the token (logout) and removes the credentials file.
func (s *Store) Teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	return s.removeFile()
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores the token and the user it authenticates, and persists both.
func (s *Store) SetToken(token string, usr academy.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}

	s.token = token
	s.user = &usr

	buf, err := yaml.Marshal(credentials{Token: token, User: usr, SetAt: nowFunc().UTC()})
	if err != nil {
		return errors.Wrap(err, "encoding credentials")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating credentials dir")
	}
	return errors.Wrap(os.WriteFile(s.path, buf, 0o600), "writing credentials file")
}

func (s *Store) ClearToken() error {
	return s.Teardown()
}

// CurrentUser returns the authenticated user, if any.
func (s *Store) CurrentUser() (academy.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.token == "" {
		return academy.User{}, false
	}
	return *s.user, true
}

// Invalidate clears the credential after the API answered 401 to a request sent with token.
// Nothing happens if token is no longer the current one (ie: the user logged in again meanwhile).
func (s *Store) Invalidate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || token != s.token {
		return
	}
	s.clear()
	if err := s.removeFile(); err != nil {
		s.warn("removing credentials file", err)
	}
	s.warn("credential invalidated: authentication required")
}

func (s *Store) clear() {
	s.token = ""
	s.user = nil
}

func (s *Store) removeFile() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing credentials file")
	}
	return nil
}

func (s *Store) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

// expired reports whether the token carries an `exp` claim in the past.
// The signature cannot be verified client-side; the server remains the judge.
func expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false // opaque token
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return nowFunc().Unix() >= int64(exp)
}
