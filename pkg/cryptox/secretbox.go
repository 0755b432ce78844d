package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Envelope layouts:
//
//	v1:<nonce hex>:<tag hex>:<ciphertext hex>  12-byte nonce
//	<iv hex>:<tag hex>:<ciphertext hex>        16-byte IV, written by the previous portal
const (
	envelopeVersion   = "v1"
	envelopeSeparator = ":"
	envelopeFields    = 4
	legacyFields      = 3

	secretKeySize        = 32
	secretNonceSize      = 12
	legacyEnvelopeIVSize = 16
	secretTagSize        = 16

	// devSecretMaterial is only ever used outside production.
	devSecretMaterial = "unsafe-dev-secret"
)

var (
	ErrDecryptFailed    = errors.New("secret_decrypt_failed")
	ErrMissingSecretKey = errors.New("secret_key_missing")
	ErrInvalidSecretKey = errors.New("secret_key_invalid")
)

// SecretCipher encrypts short secrets (TOTP seeds) at rest using AES-256-GCM.
// Values that are not in envelope form are treated as legacy plaintext and
// passed through Decrypt unchanged.
type SecretCipher struct {
	aead   cipher.AEAD
	legacy cipher.AEAD // opens 16-byte IV envelopes
	logger *slog.Logger
}

// NewSecretCipher builds a cipher from a 32-byte key.
func NewSecretCipher(key []byte, logger *slog.Logger) (*SecretCipher, error) {
	if len(key) != secretKeySize {
		return nil, ErrInvalidSecretKey
	}
	if logger == nil {
		logger = slog.Default()
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, secretNonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	legacy, err := cipher.NewGCMWithNonceSize(block, legacyEnvelopeIVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &SecretCipher{aead: gcm, legacy: legacy, logger: logger}, nil
}

// LoadSecretKey derives the 32-byte cipher key from configured key material.
// A 64 character hex string is used as the raw key, anything else is hashed
// with SHA-256. Without material, production fails closed and every other
// environment falls back to a fixed development key.
func LoadSecretKey(material string, production bool) ([]byte, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		if production {
			return nil, ErrMissingSecretKey
		}
		slog.Warn("ENCRYPTION_KEY is not set, using the insecure development key")
		sum := sha256.Sum256([]byte(devSecretMaterial))
		return sum[:], nil
	}

	if len(material) == secretKeySize*2 {
		if raw, err := hex.DecodeString(material); err == nil {
			return raw, nil
		}
	}

	sum := sha256.Sum256([]byte(material))
	return sum[:], nil
}

// Encrypt seals plaintext into an envelope. Empty input is returned as is.
func (c *SecretCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return plaintext, nil
	}

	nonce := make([]byte, secretNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal returns ciphertext || tag
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-secretTagSize], sealed[len(sealed)-secretTagSize:]

	return strings.Join([]string{
		envelopeVersion,
		hex.EncodeToString(nonce),
		hex.EncodeToString(tag),
		hex.EncodeToString(ct),
	}, envelopeSeparator), nil
}

// Decrypt opens an envelope in either layout. Input that is not an
// envelope is returned unchanged. An envelope that fails authentication
// returns ErrDecryptFailed.
func (c *SecretCipher) Decrypt(input string) (string, error) {
	nonce, tag, ct, ok := parseEnvelope(input)
	if !ok {
		if input != "" {
			c.logger.Warn("secret is not encrypted, returning legacy plaintext")
		}
		return input, nil
	}

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	aead := c.aead
	if len(nonce) == legacyEnvelopeIVSize {
		aead = c.legacy
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

// EncryptOptional is Encrypt for nullable columns, nil stays nil.
func (c *SecretCipher) EncryptOptional(plaintext *string) (*string, error) {
	if plaintext == nil {
		return nil, nil
	}
	out, err := c.Encrypt(*plaintext)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DecryptOptional is Decrypt for nullable columns, nil stays nil.
func (c *SecretCipher) DecryptOptional(input *string) (*string, error) {
	if input == nil {
		return nil, nil
	}
	out, err := c.Decrypt(*input)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// IsEnvelope reports whether s is structurally an encrypted envelope.
func IsEnvelope(s string) bool {
	_, _, _, ok := parseEnvelope(s)
	return ok
}

func parseEnvelope(s string) (nonce, tag, ct []byte, ok bool) {
	parts := strings.Split(s, envelopeSeparator)

	var nonceHex, tagHex, ctHex string
	switch {
	case len(parts) == envelopeFields && parts[0] == envelopeVersion && len(parts[1]) == secretNonceSize*2:
		nonceHex, tagHex, ctHex = parts[1], parts[2], parts[3]
	case len(parts) == legacyFields && len(parts[0]) == legacyEnvelopeIVSize*2:
		nonceHex, tagHex, ctHex = parts[0], parts[1], parts[2]
	default:
		return nil, nil, nil, false
	}

	if len(tagHex) != secretTagSize*2 || ctHex == "" || len(ctHex)%2 != 0 {
		return nil, nil, nil, false
	}

	var err error
	if nonce, err = hex.DecodeString(nonceHex); err != nil {
		return nil, nil, nil, false
	}
	if tag, err = hex.DecodeString(tagHex); err != nil {
		return nil, nil, nil, false
	}
	if ct, err = hex.DecodeString(ctHex); err != nil {
		return nil, nil, nil, false
	}

	return nonce, tag, ct, true
}
