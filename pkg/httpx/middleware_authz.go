package httpx

import (
	"net/http"
	"slices"
)

// RequireRole only lets through sessions whose role is one of roles. It must
// run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			if !slices.Contains(roles, claims.Role) {
				WriteError(w, http.StatusForbidden, "access_denied", "role not permitted")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
