// Package auth issues access tokens, refresh tokens and password hashes.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// keyLength is the PASETO v4 symmetric key size in bytes.
const keyLength = 32

// KeyFileName is the token key file kept under the data directory.
const KeyFileName = "token.key"

// LoadOrGenerateKey returns the token key stored hex-encoded at
// <dataPath>/token.key, creating the file with a fresh random key when it
// does not exist yet.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, KeyFileName)

	//#nosec G304 -- path is derived from the configured data directory
	raw, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		key, err := hex.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("token key %s is not valid hex: %w", keyPath, err)
		}
		if len(key) != keyLength {
			return nil, fmt.Errorf("token key %s must be %d bytes, got %d", keyPath, keyLength, len(key))
		}
		return key, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read token key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate token key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save token key: %w", err)
	}

	return key, nil
}
