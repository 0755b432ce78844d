package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token when none is configured.
const DefaultSessionTTL = 8 * time.Hour

// Authentication method references carried in the amr claim.
const (
	AMRPassword = "pwd"
	AMROTP      = "otp"
	AMRMFA      = "mfa"
)

// Claims are the session token claims. The gate only ever reads Role and
// TOTPEnabled, so they must be refreshed whenever either changes.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID, the unit of revocation.
	SID string `json:"sid,omitempty"`

	Name        string `json:"name,omitempty"`
	Role        string `json:"role,omitempty"`
	TOTPEnabled bool   `json:"totp_enabled"`

	// Authentication Methods Reference ["pwd","otp","mfa"]
	AMR []string `json:"amr,omitempty"`
}

// SessionSubject is the identity a session token is minted for.
type SessionSubject struct {
	UserID      string
	Name        string
	Role        string
	TOTPEnabled bool
}

// NewSessionClaims builds claims for subject valid from now for ttl.
func NewSessionClaims(sub SessionSubject, sid string, amr []string, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sub.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:         sid,
		Name:        sub.Name,
		Role:        sub.Role,
		TOTPEnabled: sub.TOTPEnabled,
		AMR:         amr,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// HasAMR reports whether method was used to authenticate.
func (c *Claims) HasAMR(method string) bool {
	return slices.Contains(c.AMR, method)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiryWithLeeway checks exp and nbf, allowing leeway for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
