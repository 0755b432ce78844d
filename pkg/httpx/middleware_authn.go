package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/jwtx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
)

var errMissingToken = errors.New("missing bearer token")

// RevocationChecker reports whether a session id was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, sid string) (bool, error)
}

// AuthnMiddleware requires a valid, unrevoked bearer token. The claims are
// injected into the request context for downstream handlers.
func AuthnMiddleware(v jwtx.Verifier, revoked RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims, status, err := authenticate(ctx, r, v, revoked)
			if err != nil {
				if status == http.StatusServiceUnavailable {
					WriteError(w, status, "temporarily_unavailable", "session store unavailable")
					return
				}
				writeBearerError(w, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}

// OptionalAuthnMiddleware injects claims when a valid token is presented and
// otherwise lets the request through anonymously.
func OptionalAuthnMiddleware(v jwtx.Verifier, revoked RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims, _, err := authenticate(ctx, r, v, revoked)
			if err == nil {
				ctx = WithClaims(ctx, claims)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, r *http.Request, v jwtx.Verifier, revoked RevocationChecker) (jwtx.Claims, int, error) {
	log := slogx.FromContext(ctx)

	raw, ok := BearerToken(r)
	if !ok {
		return jwtx.Claims{}, http.StatusUnauthorized, errMissingToken
	}

	claims, err := v.Verify(raw)
	if err != nil {
		log.Debug("jwt verify failed", slog.Any("error", err))
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, http.StatusUnauthorized, errors.New("token expired")
		}
		return jwtx.Claims{}, http.StatusUnauthorized, errors.New("token verification failed")
	}

	if revoked != nil && claims.SID != "" {
		gone, err := revoked.IsRevoked(ctx, claims.SID)
		if err != nil {
			log.Error("failed to check session revocation", slog.Any("error", err))
			return jwtx.Claims{}, http.StatusServiceUnavailable, err
		}
		if gone {
			return jwtx.Claims{}, http.StatusUnauthorized, errors.New("session revoked")
		}
	}

	return claims, http.StatusOK, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(authz[len("Bearer "):])
	return raw, raw != ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
