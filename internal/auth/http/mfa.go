package http

import (
	"net/http"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/service"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/httpx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/jwtx"
)

// MFAHandler handles TOTP enrollment and reset. Both confirm and reset change
// the totp_enabled flag the gate reads, so they answer with a new token.
type MFAHandler struct {
	MFAService     *service.MFAService
	SessionService *service.SessionService
}

// HandleEnroll handles POST /v1/mfa/totp/enroll
//
//	@Summary		Begin TOTP enrollment
//	@Description	Returns the secret, provisioning URI and QR code. Calling it again before verifying returns the same secret.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TOTPEnrollResponse	"Provisioning data"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse		"access_denied with redirect"
//	@Failure		409	{object}	authsdk.ErrorResponse		"totp_already_enabled"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/totp/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	enrollment, err := h.MFAService.BeginEnrollment(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, "failed to begin totp enrollment", err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TOTPEnrollResponse{
		Secret:  enrollment.Secret,
		URI:     enrollment.URI,
		QRCode:  enrollment.QRCode,
		Issuer:  enrollment.Issuer,
		Account: enrollment.Account,
	})
}

// HandleVerify handles POST /v1/mfa/totp/verify
//
//	@Summary		Confirm TOTP enrollment
//	@Description	Enables two factors when the code matches the pending secret and returns a refreshed session token.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TOTPVerifyRequest	true	"TOTP code"
//	@Success		200		{object}	authsdk.TokenResponse		"Refreshed session"
//	@Failure		400		{object}	authsdk.ErrorResponse		"invalid_totp_code or totp_not_initiated"
//	@Failure		401		{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		409		{object}	authsdk.ErrorResponse		"totp_already_enabled"
//	@Router			/v1/mfa/totp/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TOTPVerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.MFAService.ConfirmEnrollment(r.Context(), httpx.UserIDFromContext(r.Context()), req.Code)
	if err != nil {
		writeServiceError(w, r, "failed to confirm totp enrollment", err)
		return
	}

	h.refresh(w, r, p, jwtx.AMROTP, jwtx.AMRMFA)
}

// HandleReset handles POST /v1/profile/2fa/reset
//
//	@Summary		Reset two factors
//	@Description	Clears the TOTP secret after checking the account password and returns a refreshed session token.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TOTPResetRequest	true	"Account password"
//	@Success		200		{object}	authsdk.TokenResponse		"Refreshed session"
//	@Failure		400		{object}	authsdk.ErrorResponse		"invalid_password"
//	@Failure		401		{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Router			/v1/profile/2fa/reset [post].
func (h *MFAHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TOTPResetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.MFAService.ResetTOTP(r.Context(), httpx.UserIDFromContext(r.Context()), req.Password)
	if err != nil {
		writeServiceError(w, r, "failed to reset totp", err)
		return
	}

	h.refresh(w, r, p)
}

func (h *MFAHandler) refresh(w http.ResponseWriter, r *http.Request, p domain.Principal, amr ...string) {
	claims, _ := httpx.ClaimsFromContext(r.Context())

	issued, err := h.SessionService.Refresh(r.Context(), claims, p, amr...)
	if err != nil {
		writeServiceError(w, r, "failed to refresh session", err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(issued, time.Now()))
}
