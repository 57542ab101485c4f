// Package cryptoutil seals provider credentials that travel through the work queue.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// Versioned prefix so a key or algorithm rotation can be detected on Open.
	sealedPrefixV1 = "v1:"
	noopPrefix     = "noop:"
)

// ErrUnknownFormat is returned when a sealed value carries no recognised prefix.
var ErrUnknownFormat = errors.New("unknown sealed credential format")

// AESGCMSealer seals credentials using AES-256-GCM.
type AESGCMSealer struct {
	aead cipher.AEAD
}

// NewAESGCMSealer constructs a sealer. Key must be 32 bytes (AES-256).
func NewAESGCMSealer(key []byte) (*AESGCMSealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMSealer{aead: aead}, nil
}

// DeriveKey turns a configured key into 32 bytes. A 64-character hex string is
// decoded as-is; anything else is hashed with SHA-256.
func DeriveKey(key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("encryption key is required")
	}
	if decoded, err := hex.DecodeString(key); err == nil && len(decoded) == 32 {
		return decoded, nil
	}
	sum := sha256.Sum256([]byte(key))
	return sum[:], nil
}

// Seal encrypts plaintext with a random nonce and returns a versioned base64 string.
// The empty credential seals to the empty string.
func (s *AESGCMSealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	// nonce||ciphertext
	buf := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefixV1 + base64.StdEncoding.EncodeToString(buf), nil
}

// Open reverses Seal. Values sealed by NoopSealer are accepted so a worker can
// drain messages produced before a key was configured.
func (s *AESGCMSealer) Open(sealed string) (string, error) {
	switch {
	case sealed == "":
		return "", nil
	case strings.HasPrefix(sealed, noopPrefix):
		return NoopSealer{}.Open(sealed)
	case !strings.HasPrefix(sealed, sealedPrefixV1):
		return "", ErrUnknownFormat
	}

	data, err := base64.StdEncoding.DecodeString(sealed[len(sealedPrefixV1):])
	if err != nil {
		return "", fmt.Errorf("decode sealed credential: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("sealed credential too short")
	}
	pt, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("open sealed credential: %w", err)
	}
	return string(pt), nil
}

// NoopSealer only encodes credentials. It is used when no key is configured and in tests.
type NoopSealer struct{}

func (NoopSealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	return noopPrefix + base64.StdEncoding.EncodeToString([]byte(plaintext)), nil
}

func (NoopSealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	if !strings.HasPrefix(sealed, noopPrefix) {
		return "", ErrUnknownFormat
	}
	b, err := base64.StdEncoding.DecodeString(sealed[len(noopPrefix):])
	if err != nil {
		return "", fmt.Errorf("decode noop credential: %w", err)
	}
	return string(b), nil
}
