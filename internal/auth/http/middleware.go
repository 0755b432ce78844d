package http

import (
	"net/http"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/access"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/service"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/httpx"
)

// withActor copies the session principal and the request provenance into the
// context the services read them from. It must run after authentication.
func withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := service.WithRequestMeta(r.Context(), service.RequestMeta{
			IPAddress: httpx.ClientIP(r),
			UserAgent: r.UserAgent(),
		})
		if claims, ok := httpx.ClaimsFromContext(ctx); ok {
			ctx = service.WithActor(ctx, service.PrincipalFromClaims(claims))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// gateRequest describes the caller of r as the access gate sees it.
func gateRequest(r *http.Request, path string) access.Request {
	req := access.Request{Path: path}
	if claims, ok := httpx.ClaimsFromContext(r.Context()); ok {
		req.LoggedIn = true
		req.Role = domain.Role(claims.Role)
		req.TOTPEnabled = claims.TOTPEnabled
	}
	return req
}

// RequireAccess lets a request through only when the gate allows the caller
// on page, the UI route the endpoint belongs to. Otherwise it answers 403
// with the redirect the UI should follow.
func RequireAccess(gate *access.Gate, page string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := gate.Evaluate(gateRequest(r, page))
			if !d.Allowed() {
				authsdk.ErrAccessDenied.WithRedirect(d.Redirect).WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
