package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Key derivation parameters. The salt is fixed: the derived key only
// protects credentials on the local machine, keyed by
// EXCHANGE_CREDENTIALS_KEY.
const (
	kdfSalt       = "charttrader.credentials.v1"
	kdfIterations = 4096
	kdfKeyLen     = 32
)

func derivedKey() []byte {
	config := GetConfig()
	return pbkdf2.Key([]byte(config.ExchangeCRKey), []byte(kdfSalt), kdfIterations, kdfKeyLen, sha256.New)
}

// EncryptString encrypts a secret for storage at rest. Output is
// base64(nonce || ciphertext).
func EncryptString(plain string) (string, error) {
	block, err := aes.NewCipher(derivedKey())
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("new gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString.
func DecryptString(enc string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	block, err := aes.NewCipher(derivedKey())
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("new gcm: %w", err)
	}

	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext shorter than nonce")
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	return string(plain), nil
}
