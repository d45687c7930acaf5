package remote

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore holds the bearer token of the current session.
type TokenStore interface {
	Token() string
	SetToken(token string) error
	Clear() error
	// ClearIf clears only while the stored token is still token, so a slow
	// sign-out never drops the token of a newer sign-in.
	ClearIf(token string) error
}

type MemoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokens) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MemoryTokens) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokens) Clear() error {
	return m.SetToken("")
}

func (m *MemoryTokens) ClearIf(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == token {
		m.token = ""
	}
	return nil
}

// FileTokens keeps the token in a JSON file so CLI invocations share a session.
type FileTokens struct {
	mu   sync.Mutex
	path string
}

type tokenFile struct {
	Token string `json:"token"`
}

// DefaultSessionPath is <user config dir>/eprod/session.json.
func DefaultSessionPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "eprod", "session.json"), nil
}

func NewFileTokens(path string) *FileTokens {
	return &FileTokens{path: path}
}

// Token returns "" when the file is missing or unreadable.
func (f *FileTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readLocked()
}

func (f *FileTokens) readLocked() string {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return ""
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return ""
	}
	return tf.Token
}

func (f *FileTokens) SetToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenFile{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *FileTokens) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removeLocked()
}

func (f *FileTokens) ClearIf(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readLocked() != token {
		return nil
	}
	return f.removeLocked()
}

func (f *FileTokens) removeLocked() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
