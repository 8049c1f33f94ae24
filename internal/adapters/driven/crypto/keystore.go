// Package crypto provides encryption-at-rest for token material: a
// file-backed symmetric key store and an AES-256-GCM token cipher.
package crypto

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driven"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// keyFileName is the key file beside the config file.
const keyFileName = "encryption.key"

// Ensure FileKeyStore implements the interface.
var _ driven.KeyStore = (*FileKeyStore)(nil)

// FileKeyStore persists a single 32-byte key as raw bytes with owner-only
// permissions. The key is generated lazily on first use and never rotated;
// losing or replacing it orphans all previously encrypted data.
type FileKeyStore struct {
	dir string
}

// NewFileKeyStore creates a key store rooted at the given directory.
func NewFileKeyStore(dir string) *FileKeyStore {
	return &FileKeyStore{dir: dir}
}

// GetOrCreateKey returns the persisted key, generating it if absent.
func (s *FileKeyStore) GetOrCreateKey() ([]byte, error) {
	keyPath := filepath.Join(s.dir, keyFileName)

	key, err := os.ReadFile(keyPath)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("key file %s has %d bytes, want %d: %w",
				keyPath, len(key), KeySize, domain.ErrStorageWrite)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key = make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return nil, fmt.Errorf("create key directory: %v: %w", err, domain.ErrStorageWrite)
	}
	if err := os.WriteFile(keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("write key file: %v: %w", err, domain.ErrStorageWrite)
	}
	return key, nil
}
