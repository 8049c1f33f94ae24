package driven

import "github.com/custodia-labs/gtasks-cli/internal/core/domain"

// KeyStore owns the single long-lived symmetric key used for all token
// encryption. The key is created lazily on first use and never rotated:
// replacing it would silently orphan all previously encrypted data.
type KeyStore interface {
	// GetOrCreateKey returns the 32-byte key, generating and persisting it
	// with owner-only permissions if it does not exist yet.
	GetOrCreateKey() ([]byte, error)
}

// TokenCipher provides authenticated encryption for token material.
// Both operations are pure functions of the current key.
type TokenCipher interface {
	// Encrypt seals a plaintext string into a transportable blob.
	// Every call draws fresh randomness for the nonce.
	Encrypt(plaintext string) (domain.EncryptedBlob, error)

	// Decrypt opens a blob. Fails closed with domain.ErrDecryptionFailed
	// if the authentication tag does not verify - callers must treat that
	// as "credential unusable", never as retryable.
	Decrypt(blob domain.EncryptedBlob) (string, error)
}
