package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Verifier validates a token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// EdDSAVerifier validates tokens against a KeySet of Ed25519 public keys.
type EdDSAVerifier struct {
	keys   *KeySet
	issuer string
	leeway time.Duration
	now    func() time.Time
}

func NewVerifierEdDSA(keys *KeySet, issuer string) *EdDSAVerifier {
	return &EdDSAVerifier{
		keys:   keys,
		issuer: issuer,
		leeway: 30 * time.Second,
		now:    time.Now,
	}
}

func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(), // exp/nbf checked below with leeway
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}
		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
		}
		return pub, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryWithLeeway(v.now().UTC(), v.leeway); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
