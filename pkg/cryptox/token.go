package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes before encoding.
const (
	TokenSize128 = 16 // 22 chars base64url
	TokenSize256 = 32 // 43 chars base64url
)

// GenerateToken returns size random bytes encoded as unpadded base64url.
// Used for session ids and signing key ids.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
