package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// User is the user record returned by the backend at login and persisted
// alongside the access token.
type User struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
}

// state is the on-disk session shape.
type state struct {
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// Store persists the access token and user record to a local JSON file.
// It performs no network calls and does not validate token signature or expiry.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Token returns the persisted access token, or empty string when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().Token
}

// SetToken persists the access token. It is effective for the next read.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	st.Token = token
	return s.save(st)
}

// User returns the persisted user record, or nil when none is stored.
func (s *Store) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().User
}

// SetUser persists the user record next to the token.
func (s *Store) SetUser(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	st.User = u
	return s.save(st)
}

// SetSession persists token and user in a single write.
func (s *Store) SetSession(token string, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(state{Token: token, User: u})
}

// Clear removes both token and user. Both are gone before Clear returns.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// IsLoggedIn reports whether a token is present. It does not check validity.
func (s *Store) IsLoggedIn() bool {
	return s.Token() != ""
}

// load reads the session file. A missing or unreadable file is an empty session.
func (s *Store) load() state {
	var st state
	data, err := os.ReadFile(s.path)
	if err != nil {
		return st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return state{}
	}
	return st
}

// save writes the session atomically via a temp file and rename, so a crash
// mid-write never leaves a truncated session behind.
func (s *Store) save(st state) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set session file mode: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
