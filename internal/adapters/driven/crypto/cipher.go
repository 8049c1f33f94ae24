package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driven"
)

const (
	// nonceSize is the GCM nonce length. 16 bytes rather than the GCM
	// default of 12 to match the stored blob layout.
	nonceSize = 16
	// tagSize is the GCM authentication tag length.
	tagSize = 16
)

// Ensure TokenCipher implements the interface.
var _ driven.TokenCipher = (*TokenCipher)(nil)

// TokenCipher encrypts and decrypts token strings with AES-256-GCM.
// The encoded blob layout is base64(nonce | authTag | ciphertext). Every
// Encrypt call draws a fresh random nonce; nonce reuse under the same key
// would void the authentication guarantees.
type TokenCipher struct {
	gcm cipher.AEAD
}

// NewTokenCipher builds a cipher over the key store's key.
func NewTokenCipher(keys driven.KeyStore) (*TokenCipher, error) {
	key, err := keys.GetOrCreateKey()
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &TokenCipher{gcm: gcm}, nil
}

// Encrypt seals a plaintext string into a transportable blob.
func (c *TokenCipher) Encrypt(plaintext string) (domain.EncryptedBlob, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// Seal appends the tag to the ciphertext; re-split so the stored
	// layout stays nonce | tag | ciphertext.
	sealed := c.gcm.Seal(nil, nonce, []byte(plaintext), nil)
	split := len(sealed) - tagSize
	ciphertext, tag := sealed[:split], sealed[split:]

	blob := make([]byte, 0, nonceSize+tagSize+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ciphertext...)

	return domain.EncryptedBlob(base64.StdEncoding.EncodeToString(blob)), nil
}

// Decrypt opens a blob. Any malformed input or failed tag verification
// yields domain.ErrDecryptionFailed, never partial plaintext.
func (c *TokenCipher) Decrypt(blob domain.EncryptedBlob) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(string(blob))
	if err != nil {
		return "", fmt.Errorf("malformed blob: %w", domain.ErrDecryptionFailed)
	}
	if len(raw) < nonceSize+tagSize {
		return "", fmt.Errorf("blob too short: %w", domain.ErrDecryptionFailed)
	}

	nonce := raw[:nonceSize]
	tag := raw[nonceSize : nonceSize+tagSize]
	ciphertext := raw[nonceSize+tagSize:]

	// Open expects the tag appended to the ciphertext.
	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := c.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", domain.ErrDecryptionFailed)
	}
	return string(plaintext), nil
}
