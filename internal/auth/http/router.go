package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/arashvelash03-commits/gemini-test-openspec1/api/auth" // Swagger docs
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/access"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/service"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/session"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/httpx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/jwtx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	sessions     session.Store
	gate         *access.Gate
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	LoginService   *service.LoginService
	SessionService *service.SessionService
	MFAService     *service.MFAService
	ProfileService *service.ProfileService
	UserService    *service.UserAdminService
	StaffService   *service.StaffService
	Audit          *service.AuditRecorder
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	sessions session.Store,
	gate *access.Gate,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		sessions:     sessions,
		gate:         gate,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		middleware.Recoverer,
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// AllowOrigins enables CORS for the given browser origins.
func (r *Router) AllowOrigins(origins []string) {
	if len(origins) == 0 {
		return
	}
	r.middlewares = append(r.middlewares, cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerProfile()
	r.registerAdmin()
	r.registerStaff()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			EHR Authentication Service API
//	@version		0.1.0
//	@description	Login with password and TOTP, two-factor enrollment, account administration and the audit trail of an EHR system.
//	@description
//	@description				Session tokens are EdDSA signed JWTs and can be verified using the JWKS endpoint.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured requires a session the gate allows on page.
func (r *Router) secured(h http.Handler, page string, extra ...httpx.Middleware) http.Handler {
	mws := []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier, r.sessions),
		withActor,
	}
	mws = append(mws, extra...)
	mws = append(mws, RequireAccess(r.gate, page))
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		LoginService:   r.LoginService,
		SessionService: r.SessionService,
		ProfileService: r.ProfileService,
	}
	authn := httpx.AuthnMiddleware(r.verifier, r.sessions)

	r.Mux.Handle("POST /v1/auth/login", http.HandlerFunc(h.HandleLogin))
	r.Mux.Handle("POST /v1/auth/logout", httpx.Chain(http.HandlerFunc(h.HandleLogout), authn, withActor))
	r.Mux.Handle("GET /v1/auth/session", httpx.Chain(http.HandlerFunc(h.HandleSession), authn))

	r.Mux.Handle("GET /v1/access", httpx.Chain(&AccessHandler{Gate: r.gate},
		httpx.OptionalAuthnMiddleware(r.verifier, r.sessions),
	))
}

func (r *Router) registerMFA() {
	h := &MFAHandler{
		MFAService:     r.MFAService,
		SessionService: r.SessionService,
	}
	enrollment := r.gate.Paths().Enrollment

	r.Mux.Handle("POST /v1/mfa/totp/enroll", r.secured(http.HandlerFunc(h.HandleEnroll), enrollment))
	r.Mux.Handle("POST /v1/mfa/totp/verify", r.secured(http.HandlerFunc(h.HandleVerify), enrollment))
	r.Mux.Handle("POST /v1/profile/2fa/reset", r.secured(http.HandlerFunc(h.HandleReset), "/profile"))
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("GET /v1/profile", r.secured(http.HandlerFunc(h.HandleGet), "/profile"))
	r.Mux.Handle("PATCH /v1/profile", r.secured(http.HandlerFunc(h.HandleUpdate), "/profile"))
	r.Mux.Handle("POST /v1/profile/password", r.secured(http.HandlerFunc(h.HandleChangePassword), "/profile"))
}

func (r *Router) registerAdmin() {
	h := &UsersHandler{
		UserService: r.UserService,
		Audit:       r.Audit,
	}
	users := r.gate.Paths().AdminHome
	auditLogs := r.gate.Paths().AdminPrefix + "/audit-logs"

	r.Mux.Handle("GET /v1/admin/users", r.secured(http.HandlerFunc(h.HandleList), users))
	r.Mux.Handle("POST /v1/admin/users", r.secured(http.HandlerFunc(h.HandleCreate), users))
	r.Mux.Handle("PUT /v1/admin/users/{id}", r.secured(http.HandlerFunc(h.HandleUpdate), users))
	r.Mux.Handle("POST /v1/admin/users/{id}/toggle-status", r.secured(http.HandlerFunc(h.HandleToggleStatus), users))
	r.Mux.Handle("GET /v1/admin/audit-logs", r.secured(http.HandlerFunc(h.HandleAuditLogs), auditLogs))
}

func (r *Router) registerStaff() {
	h := &StaffHandler{StaffService: r.StaffService}
	dashboard := r.gate.Paths().Dashboard
	doctors := httpx.RequireRole(domain.RoleDoctor.String())

	r.Mux.Handle("GET /v1/staff", r.secured(http.HandlerFunc(h.HandleList), dashboard, doctors))
	r.Mux.Handle("POST /v1/staff", r.secured(http.HandlerFunc(h.HandleCreate), dashboard, doctors))
	r.Mux.Handle("PUT /v1/staff/{id}", r.secured(http.HandlerFunc(h.HandleUpdate), dashboard, doctors))
	r.Mux.Handle("POST /v1/staff/{id}/toggle-status", r.secured(http.HandlerFunc(h.HandleToggleStatus), dashboard, doctors))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.sessions, r.keys))
	r.Mux.Handle("GET /.well-known/jwks.json", JWKSHandler(r.keys))
}
