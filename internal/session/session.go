// Package session persists the API bearer token between runs and wraps the
// auth endpoints that create or destroy it.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/rentme/internal/config"
)

// file mirrors the on-disk layout: the token lives at rentme.auth_token.
type file struct {
	Rentme struct {
		AuthToken string `toml:"auth_token"`
	} `toml:"rentme"`
}

// Session holds the current token. It satisfies api.TokenSource.
type Session struct {
	mu    sync.RWMutex
	path  string
	token string
}

// Open loads the token stored at path. A missing file yields an empty,
// unauthenticated session.
func Open(path string) (*Session, error) {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve session path: %w", err)
	}
	s := &Session{path: resolved}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	s.token = strings.TrimSpace(f.Rentme.AuthToken)
	return s, nil
}

// Path returns the file backing the session.
func (s *Session) Path() string {
	return s.path
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set stores token in memory and on disk.
func (s *Session) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Clear()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return s.writeLocked()
}

// Clear drops the token and removes the file.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *Session) writeLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	var f file
	f.Rentme.AuthToken = s.token
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
