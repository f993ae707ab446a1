// Package cryptotoken issues one-time lookup secrets and seals small payloads
// with AES-256-GCM under a process-wide key.
package cryptotoken

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"

	"servicematch/internal/pkg/apperr"
)

const (
	secretBytes     = 32
	keyBytes        = 32
	envelopeVersion = "v1"
	envelopeSep     = ":"
	kdfSalt         = "servicematch/phone-reveal"
	kdfInfo         = "aes-256-gcm/v1"
)

var (
	ErrKeyMissing = errors.New("cryptotoken: encryption key is not configured")
	// ErrDecryption deliberately carries no detail about which check failed.
	ErrDecryption = apperr.New(apperr.KindDecryption, "DECRYPTION_FAILED", "Unable to decrypt")
)

// CipherConfig carries the raw secret the AEAD key is derived from.
type CipherConfig struct {
	Key string
}

// String keeps the key out of logs and %v output.
func (c CipherConfig) String() string {
	if c.Key == "" {
		return "CipherConfig{key:<unset>}"
	}
	return "CipherConfig{key:<redacted>}"
}

// Service encrypts and decrypts reveal payloads. It is safe for concurrent use.
type Service struct {
	aead cipher.AEAD
}

func New(cfg CipherConfig) (*Service, error) {
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, ErrKeyMissing
	}

	key := make([]byte, keyBytes)
	kdf := hkdf.New(sha256.New, []byte(cfg.Key), []byte(kdfSalt), []byte(kdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &Service{aead: gcm}, nil
}

// GenerateSecret returns a fresh random token and the hash under which it is stored.
// The plaintext must be handed to the caller once and never persisted.
func GenerateSecret() (plaintext, lookupHash string, err error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate secret: %w", err)
	}
	plaintext = hex.EncodeToString(buf)
	return plaintext, HashToken(plaintext), nil
}

// HashToken is the one-way lookup hash of a plaintext token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Encrypt seals plaintext into "v1:<nonce>:<tag>:<ciphertext>", all hex encoded.
func (s *Service) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nil, nonce, []byte(plaintext), nil)
	tagStart := len(sealed) - s.aead.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	return strings.Join([]string{
		envelopeVersion,
		hex.EncodeToString(nonce),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}, envelopeSep), nil
}

// Decrypt opens an envelope produced by Encrypt. Any malformed input, failed tag
// check or key mismatch yields ErrDecryption.
func (s *Service) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, envelopeSep)
	if len(parts) != 4 || parts[0] != envelopeVersion {
		return "", ErrDecryption
	}

	nonce, err := hex.DecodeString(parts[1])
	if err != nil || len(nonce) != s.aead.NonceSize() {
		return "", ErrDecryption
	}
	tag, err := hex.DecodeString(parts[2])
	if err != nil || len(tag) != s.aead.Overhead() {
		return "", ErrDecryption
	}
	ciphertext, err := hex.DecodeString(parts[3])
	if err != nil {
		return "", ErrDecryption
	}

	plaintext, err := s.aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}
