// Package secrets encrypts sensitive setting values at rest.
//
// Ciphertexts are AES-256-GCM, stored as "enc::" followed by the
// base64-encoded nonce and sealed payload. The prefix lets the settings
// layer tell encrypted values apart from legacy plaintext rows, which are
// returned unchanged on decrypt.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Prefix marks a stored value as encrypted.
const Prefix = "enc::"

var (
	// ErrKeyMissing indicates that no encryption key was configured.
	ErrKeyMissing = errors.New("encryption key missing")

	// ErrDecryptionFailed indicates that a ciphertext could not be opened,
	// typically because the key changed or the value was corrupted.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Vault seals and opens setting values with a single symmetric key.
type Vault struct {
	aead cipher.AEAD
}

// New derives an AES-256 key from the configured secret. The secret may be
// any non-empty string; it is hashed to the fixed key size.
func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, ErrKeyMissing
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Encrypt seals plaintext and returns the prefixed ciphertext. Encrypting
// an already-encrypted value returns it unchanged.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if strings.HasPrefix(plaintext, Prefix) {
		return plaintext, nil
	}
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("Encrypt: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return Prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a prefixed ciphertext. Values without the prefix are
// treated as plaintext and returned as-is.
func (v *Vault) Decrypt(stored string) (string, error) {
	if !strings.HasPrefix(stored, Prefix) {
		return stored, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, Prefix))
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if len(raw) < v.aead.NonceSize() {
		return "", ErrDecryptionFailed
	}
	nonce, sealed := raw[:v.aead.NonceSize()], raw[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
