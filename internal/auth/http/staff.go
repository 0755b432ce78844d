package http

import (
	"net/http"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/service"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/httpx"
)

// StaffHandler lets doctors manage their own clerks.
type StaffHandler struct {
	StaffService *service.StaffService
}

// HandleList handles GET /v1/staff
//
//	@Summary		List own clerks
//	@Tags			Staff
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UsersResponse
//	@Failure		403	{object}	authsdk.ErrorResponse	"Not a doctor, or access_denied with redirect"
//	@Router			/v1/staff [get].
func (h *StaffHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.StaffService.ListStaff(r.Context())
	if err != nil {
		writeServiceError(w, r, "failed to list staff", err)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUsers(users))
}

// HandleCreate handles POST /v1/staff
//
//	@Summary		Create a clerk
//	@Tags			Staff
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateUserRequest	true	"New clerk, role may be omitted"
//	@Success		201		{object}	authsdk.User
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation error"
//	@Failure		409		{object}	authsdk.ErrorResponse	"national_code_taken"
//	@Router			/v1/staff [post].
func (h *StaffHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.StaffService.CreateStaff(r.Context(), toNewAccount(req))
	if err != nil {
		writeServiceError(w, r, "failed to create staff", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}

// HandleUpdate handles PUT /v1/staff/{id}
//
//	@Summary		Update a clerk
//	@Tags			Staff
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		authsdk.UpdateStaffRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.User
//	@Failure		404		{object}	authsdk.ErrorResponse	"Unknown user or not created by the caller"
//	@Router			/v1/staff/{id} [put].
func (h *StaffHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateStaffRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.StaffService.UpdateStaff(r.Context(), r.PathValue("id"), service.StaffUpdate{
		Profile:  toProfileUpdate(req.UpdateProfileRequest),
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, "failed to update staff", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleToggleStatus handles POST /v1/staff/{id}/toggle-status
//
//	@Summary		Activate or deactivate a clerk
//	@Tags			Staff
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.ToggleStatusResponse
//	@Failure		404	{object}	authsdk.ErrorResponse	"Unknown user or not created by the caller"
//	@Router			/v1/staff/{id}/toggle-status [post].
func (h *StaffHandler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status, err := h.StaffService.ToggleStaffStatus(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "failed to toggle staff status", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ToggleStatusResponse{ID: id, Status: string(status)})
}
