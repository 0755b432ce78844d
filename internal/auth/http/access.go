package http

import (
	"net/http"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/access"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/httpx"
)

type AccessHandler struct {
	Gate *access.Gate
}

// ServeHTTP handles GET /v1/access
//
//	@Summary		Route decision
//	@Description	Tells the UI whether the caller may open path, and where to go otherwise. Works with or without a session.
//	@Tags			Auth
//	@Produce		json
//	@Param			path	query		string					true	"UI path, e.g. /admin/users"
//	@Success		200		{object}	authsdk.AccessDecision
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing path"
//	@Router			/v1/access [get].
func (h *AccessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "path is required").WriteError(w)
		return
	}

	d := h.Gate.Evaluate(gateRequest(r, path))
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.AccessDecision{
		Allowed:  d.Allowed(),
		Redirect: d.Redirect,
	})
}
