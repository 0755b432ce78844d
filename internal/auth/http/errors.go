package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/service"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/httpx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
)

// apiError maps a service error to its response. Unknown errors become 500.
func apiError(err error) *authsdk.APIError {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		desc := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
		return authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, desc)
	case errors.Is(err, service.ErrUserNotFound):
		return authsdk.ErrNotFound
	case errors.Is(err, service.ErrNationalCodeTaken):
		return authsdk.ErrNationalCodeTaken
	case errors.Is(err, service.ErrInvalidPassword):
		return authsdk.ErrInvalidPassword
	case errors.Is(err, service.ErrSelfStatusChange):
		return authsdk.ErrCannotChangeOwnStatus
	case errors.Is(err, service.ErrTOTPAlreadyEnabled):
		return authsdk.ErrTOTPAlreadyEnabled
	case errors.Is(err, service.ErrTOTPNotInitiated):
		return authsdk.ErrTOTPNotInitiated
	case errors.Is(err, service.ErrInvalidTOTPCode):
		return authsdk.ErrInvalidTOTPCode
	case errors.Is(err, service.ErrActorRequired):
		return authsdk.ErrInvalidToken
	default:
		return authsdk.ErrServerError
	}
}

// writeServiceError writes the response for err, logging the ones that are
// not the caller's fault.
func writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e := apiError(err)
	log := slogx.FromContext(r.Context())
	if e.StatusCode >= http.StatusInternalServerError {
		log.Error(msg, slog.Any("error", err))
	} else {
		log.Debug(msg, slog.String("reason", e.Code))
	}
	e.WriteError(w)
}

// decodeBody decodes a JSON request body, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.DecodeJSON(w, r, v); err != nil {
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "invalid JSON body").WriteError(w)
		return false
	}
	return true
}
