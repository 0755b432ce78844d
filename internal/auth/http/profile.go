package http

import (
	"net/http"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/service"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/httpx"
)

type ProfileHandler struct {
	ProfileService *service.ProfileService
}

// HandleGet handles GET /v1/profile
//
//	@Summary		Own profile
//	@Tags			Profile
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.User
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.ProfileService.GetProfile(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, "failed to load profile", err)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleUpdate handles PATCH /v1/profile
//
//	@Summary		Update own profile
//	@Tags			Profile
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.User
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation error"
//	@Router			/v1/profile [patch].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.ProfileService.UpdateProfile(r.Context(), httpx.UserIDFromContext(r.Context()), toProfileUpdate(req))
	if err != nil {
		writeServiceError(w, r, "failed to update profile", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleChangePassword handles POST /v1/profile/password
//
//	@Summary		Change own password
//	@Tags			Profile
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		204
//	@Failure		400	{object}	authsdk.ErrorResponse	"invalid_password or validation error"
//	@Router			/v1/profile/password [post].
func (h *ProfileHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ChangePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.ProfileService.ChangePassword(r.Context(), httpx.UserIDFromContext(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, "failed to change password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
