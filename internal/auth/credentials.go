package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotLoggedIn is returned when no credential file exists.
var ErrNotLoggedIn = errors.New("not logged in")

// CredentialFile persists the current session token on disk.
type CredentialFile struct {
	Path string
}

// Save writes token with owner-only permissions.
func (f CredentialFile) Save(token string) error {
	if strings.TrimSpace(f.Path) == "" {
		return errors.New("credential path is required")
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(strings.TrimSpace(token)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Load reads the stored token.
func (f CredentialFile) Load() (string, error) {
	content, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}
	token := strings.TrimSpace(string(content))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// Remove deletes the stored token. Removing a missing file is not an error.
func (f CredentialFile) Remove() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
