package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"strings"
)

var ErrMalformed = errors.New("ciphertext malformed")

// Encrypt seals data with AES-GCM and returns URL-safe base64, so the
// result can travel in a query string (OAuth state).
func Encrypt(data, key string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(data), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Tampered input fails.
func Decrypt(data, key string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	raw, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return "", ErrMalformed
	}
	if len(raw) < gcm.NonceSize() {
		return "", ErrMalformed
	}

	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrMalformed
	}
	return string(plaintext), nil
}

// RandomHex returns n random bytes hex-encoded (2n characters).
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// FixEncryptionKey memastikan key memiliki panjang 32 byte.
func FixEncryptionKey(key string) string {
	if len(key) < 32 {
		return key + strings.Repeat("0", 32-len(key))
	}
	return key[:32]
}

func newGCM(key string) (cipher.AEAD, error) {
	block, err := aes.NewCipher([]byte(FixEncryptionKey(key)))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
