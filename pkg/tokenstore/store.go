package tokenstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store holds the current bearer token in memory and mirrors it to a
// credential file on disk. The in-memory token always wins once set; the
// file is a cache for the next process, not a source of truth.
type Store struct {
	token string
	path  string
}

// DefaultPath returns the credential file location under the user home
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".driftline", "credentials", "auth_token")
}

// New creates a Store persisting to the given file path. An empty path
// disables persistence.
func New(path string) *Store {
	return &Store{path: path}
}

// Current returns the in-memory token, if any.
func (s *Store) Current() (string, bool) {
	if s.token == "" {
		return "", false
	}
	return s.token, true
}

// Set replaces the in-memory token. A non-empty token is also written to
// the credential file, creating the containing directory if needed.
func (s *Store) Set(token string) error {
	s.token = token
	if token == "" || s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}

// Adopt replaces the in-memory token without touching the credential
// file. Used when restoring a token that is already persisted elsewhere,
// or when a refresh yields no usable token.
func (s *Store) Adopt(token string) {
	s.token = token
}

// Clear drops the in-memory token and deletes the credential file.
// A missing file is not an error.
func (s *Store) Clear() error {
	s.token = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}

// ReadFile returns the persisted token from the credential file, if one
// exists. It does not touch the in-memory token.
func (s *Store) ReadFile() (string, bool) {
	if s.path == "" {
		return "", false
	}
	data, err := os.ReadFile(s.path)
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}
