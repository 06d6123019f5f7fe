// Package auth stores the GitHub access token used to fetch datasets
// from private repositories: OS keychain first, with a plain-file
// fallback under the app home directory for headless environments.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "qactl"
	keyringUser    = "github_token"
	tokenFileName  = "github_token"

	fileMode = 0600
)

// SaveToken stores the token in the OS keychain, falling back to a file
// in dir when no keychain is available.
func SaveToken(dir, token string) error {
	if token == "" {
		return errors.New("token is required")
	}

	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return saveTokenFile(dir, token)
	}

	// Clean up the fallback file if a previous save used it.
	os.Remove(filepath.Join(dir, tokenFileName))

	return nil
}

// GetToken reads the stored token. Returns an empty string (no error)
// when nothing is stored anywhere.
func GetToken(dir string) (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}

	token, err = getTokenFile(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}

	// Migrate the file token into the keychain when possible.
	if migrateErr := keyring.Set(keyringService, keyringUser, token); migrateErr == nil {
		slog.Info("migrated token from file to OS keychain")
		os.Remove(filepath.Join(dir, tokenFileName))
	}

	return token, nil
}

// ClearToken removes the token from both the keychain and the file
// fallback. Absence is not an error.
func ClearToken(dir string) error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("keychain delete failed", "error", err)
	}
	if err := os.Remove(filepath.Join(dir, tokenFileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

func saveTokenFile(dir, token string) error {
	if dir == "" {
		return errors.New("token directory required")
	}
	return os.WriteFile(filepath.Join(dir, tokenFileName), []byte(token), fileMode)
}

func getTokenFile(dir string) (string, error) {
	path := filepath.Join(dir, tokenFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading token file %s: %w", path, err)
	}
	return strings.TrimSpace(string(b)), nil
}
