package http

import (
	"net/http"
	"strconv"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/service"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/httpx"
)

// UsersHandler serves the administrator's account management and audit log.
type UsersHandler struct {
	UserService *service.UserAdminService
	Audit       *service.AuditRecorder
}

// HandleList handles GET /v1/admin/users
//
//	@Summary		List users
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UsersResponse
//	@Failure		403	{object}	authsdk.ErrorResponse	"access_denied with redirect"
//	@Router			/v1/admin/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, "failed to list users", err)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUsers(users))
}

// HandleCreate handles POST /v1/admin/users
//
//	@Summary		Create a doctor or clerk
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateUserRequest	true	"New account"
//	@Success		201		{object}	authsdk.User
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation error"
//	@Failure		409		{object}	authsdk.ErrorResponse	"national_code_taken"
//	@Router			/v1/admin/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.UserService.CreateUser(r.Context(), toNewAccount(req))
	if err != nil {
		writeServiceError(w, r, "failed to create user", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}

// HandleUpdate handles PUT /v1/admin/users/{id}
//
//	@Summary		Update a user
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		authsdk.UpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.User
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation error"
//	@Failure		404		{object}	authsdk.ErrorResponse	"Unknown user"
//	@Router			/v1/admin/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	update := service.UserUpdate{Profile: toProfileUpdate(req.UpdateProfileRequest)}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		update.Role = &role
	}

	u, err := h.UserService.UpdateUser(r.Context(), r.PathValue("id"), update)
	if err != nil {
		writeServiceError(w, r, "failed to update user", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleToggleStatus handles POST /v1/admin/users/{id}/toggle-status
//
//	@Summary		Activate or deactivate a user
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.ToggleStatusResponse
//	@Failure		400	{object}	authsdk.ErrorResponse	"cannot_change_own_status"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Unknown user"
//	@Router			/v1/admin/users/{id}/toggle-status [post].
func (h *UsersHandler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status, err := h.UserService.ToggleUserStatus(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "failed to toggle user status", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ToggleStatusResponse{ID: id, Status: string(status)})
}

// HandleAuditLogs handles GET /v1/admin/audit-logs
//
//	@Summary		List audit records
//	@Description	Newest first. limit defaults to 50 and is capped at 500.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			actor_user_id	query		string	false	"Only records by this actor"
//	@Param			action			query		string	false	"Only this action, e.g. enable_2fa"
//	@Param			limit			query		int		false	"Page size"
//	@Param			offset			query		int		false	"Records to skip"
//	@Success		200				{object}	authsdk.AuditLogsResponse
//	@Failure		400				{object}	authsdk.ErrorResponse	"Bad paging parameters"
//	@Router			/v1/admin/audit-logs [get].
func (h *UsersHandler) HandleAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.AuditFilter{
		ActorUserID: q.Get("actor_user_id"),
		Action:      domain.AuditAction(q.Get("action")),
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "limit must be a number").WriteError(w)
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "offset must be a number").WriteError(w)
		return
	}

	records, err := h.Audit.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, "failed to list audit logs", err)
		return
	}

	logs := make([]authsdk.AuditLog, 0, len(records))
	for _, rec := range records {
		logs = append(logs, toAuditLog(rec))
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.AuditLogsResponse{AuditLogs: logs})
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
