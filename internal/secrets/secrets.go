package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrDecryption is returned when a credential blob is malformed or was
// sealed under a different key.
var ErrDecryption = errors.New("credential decryption failed")

// CredentialStore seals and opens per-client API credentials. Decryption is
// a pure transform invoked per sync or proxy call; plaintext keys are never
// cached between requests.
type CredentialStore struct {
	aeadKey []byte
}

// NewCredentialStore builds a store from a 64-char hex key (32 bytes).
func NewCredentialStore(hexKey string) (*CredentialStore, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key must be hex: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &CredentialStore{aeadKey: key}, nil
}

// Encrypt seals a plaintext API key into a base64 blob (nonce || ciphertext).
func (s *CredentialStore) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.aeadKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a blob produced by Encrypt. Any malformed input or key
// mismatch yields ErrDecryption.
func (s *CredentialStore) Decrypt(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	aead, err := chacha20poly1305.NewX(s.aeadKey)
	if err != nil {
		return "", err
	}

	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("%w: blob too short", ErrDecryption)
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return string(plaintext), nil
}
