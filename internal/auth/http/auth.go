package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/service"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/httpx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
)

// AuthHandler serves login, logout and the current session.
type AuthHandler struct {
	LoginService   *service.LoginService
	SessionService *service.SessionService
	ProfileService *service.ProfileService
}

var loginFailures = map[service.LoginFailure]*authsdk.APIError{
	service.FailureInvalidCredentials: authsdk.ErrInvalidCredentials,
	service.FailureTOTPRequired:       authsdk.ErrTOTPRequired,
	service.FailureInvalidTOTP:        authsdk.ErrInvalidTOTP,
	service.FailureTOTPSetup:          authsdk.ErrTOTPSetup,
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Log in
//	@Description	Checks the password and, for accounts with two factors, the TOTP code. Identifier is a phone number or national code.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse	"Session token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	authsdk.ErrorResponse	"INVALID_CREDENTIALS, TOTP_REQUIRED or INVALID_TOTP"
//	@Failure		500		{object}	authsdk.ErrorResponse	"TOTP_SETUP_ERROR"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res := h.LoginService.Authorize(ctx, service.LoginRequest{
		Identifier: req.Identifier,
		Password:   req.Password,
		TOTPCode:   req.TOTPCode,
	})
	if !res.Authenticated() {
		log.Info("login rejected", slog.String("reason", string(res.Failure)))
		loginFailures[res.Failure].WriteError(w)
		return
	}

	if res.NeedsRehash && h.ProfileService != nil {
		if err := h.ProfileService.UpgradePasswordHash(ctx, res.Principal.ID, req.Password); err != nil {
			log.Error("failed to upgrade password hash", slog.Any("error", err))
		}
	}

	issued, err := h.SessionService.Issue(ctx, res.Principal, service.AMRFor(res))
	if err != nil {
		log.Error("failed to issue session", slog.Any("error", err))
		authsdk.ErrServerError.WriteError(w)
		return
	}

	log.Info("login succeeded",
		slog.String("user_id", res.Principal.ID),
		slog.Bool("totp", res.UsedTOTP),
	)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(issued, time.Now()))
}

// HandleLogout handles POST /v1/auth/logout
//
//	@Summary		Log out
//	@Description	Revokes the current session until its token expires.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Revocation failed"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.SessionService.Logout(r.Context(), claims); err != nil {
		writeServiceError(w, r, "failed to log out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession handles GET /v1/auth/session
//
//	@Summary		Current session
//	@Description	Returns the principal carried by the access token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Principal
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/auth/session [get].
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toPrincipal(service.PrincipalFromClaims(claims)))
}
