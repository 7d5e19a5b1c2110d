package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// SecretBox errors.
var (
	ErrInvalidKeySize   = errors.New("cryptox: secretbox key must be 32 bytes")
	ErrDecryptionFailed = errors.New("cryptox: decryption failed")
)

// SecretBox seals small secrets (TOTP keys, credentials) at rest using
// ChaCha20-Poly1305. Sealed values are base64url(nonce || ciphertext), so
// they can be stored in a TEXT column.
type SecretBox struct {
	key []byte
}

// NewSecretBox creates a SecretBox from a 32-byte key.
func NewSecretBox(key []byte) (*SecretBox, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKeySize
	}

	k := make([]byte, len(key))
	copy(k, key)
	return &SecretBox{key: k}, nil
}

// Seal encrypts plaintext and returns a base64url-encoded sealed value.
// Each call uses a fresh random nonce, so sealing the same plaintext twice
// yields different outputs.
func (b *SecretBox) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.New(b.key)
	if err != nil {
		return "", fmt.Errorf("cryptox: init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cryptox: generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value previously produced by Seal. Tampered or truncated
// input returns ErrDecryptionFailed without revealing the failure mode.
func (b *SecretBox) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	aead, err := chacha20poly1305.New(b.key)
	if err != nil {
		return "", fmt.Errorf("cryptox: init cipher: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", ErrDecryptionFailed
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}
