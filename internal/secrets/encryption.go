package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Encrypted key files use AES-256-GCM with a key derived from the
// LOCTRACK_ENCRYPTION_KEY secret via HKDF-SHA256. The on-disk format is
// base64(nonce || ciphertext || tag).

const (
	keyDerivationSalt = "location-tracker-api-key"
	keyDerivationInfo = "key-file-encryption-v1"

	aesKeySize   = 32
	gcmNonceSize = 12
)

var (
	ErrEmptySecret        = errors.New("encryption secret cannot be empty")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	ErrDecryptionFailed   = errors.New("decryption failed: invalid ciphertext or authentication tag")
)

// Encrypt seals plaintext under the given secret. Used by the companion
// tooling that provisions encrypted key files, and by tests.
func Encrypt(plaintext, secret string) (string, error) {
	aead, err := newAEAD(secret)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a base64(nonce || ciphertext) blob sealed by Encrypt.
func Decrypt(encoded, secret string) (string, error) {
	aead, err := newAEAD(secret)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(raw) < gcmNonceSize {
		return "", ErrCiphertextTooShort
	}

	nonce, ciphertext := raw[:gcmNonceSize], raw[gcmNonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

func newAEAD(secret string) (cipher.AEAD, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	key := make([]byte, aesKeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), []byte(keyDerivationSalt), []byte(keyDerivationInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
