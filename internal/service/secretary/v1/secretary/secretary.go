// Package secretary provides methods for ciphering.
package secretary

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"github.com/bwownie/go-browniegate/internal/config"
	"io"
)

// Secretary defines object structure and its attributes.
type Secretary struct {
	aesgcm cipher.AEAD
}

// NewSecretaryService initializes a secretary service with ciphering functionality.
func NewSecretaryService(c *config.SecretConfig) (*Secretary, error) {
	key := sha256.Sum256([]byte(c.SecretKey))
	aesblock, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(aesblock)
	if err != nil {
		return nil, err
	}
	return &Secretary{
		aesgcm: aesgcm,
	}, nil
}

// Encode ciphers data using the previously established cipher, prepending a
// fresh nonce to the ciphertext.
func (s *Secretary) Encode(data string) (string, error) {
	nonce := make([]byte, s.aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	encoded := s.aesgcm.Seal(nonce, nonce, []byte(data), nil)
	return base64.RawURLEncoding.EncodeToString(encoded), nil
}

// Decode deciphers data using the previously established cipher. Any
// truncation or byte-level tampering of the message fails the AEAD open.
func (s *Secretary) Decode(msg string) (string, error) {
	msgBytes, err := base64.RawURLEncoding.DecodeString(msg)
	if err != nil {
		return "", err
	}
	if len(msgBytes) < s.aesgcm.NonceSize() {
		return "", errors.New("ciphertext is shorter than the nonce")
	}
	nonce, sealed := msgBytes[:s.aesgcm.NonceSize()], msgBytes[s.aesgcm.NonceSize():]
	decoded, err := s.aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
