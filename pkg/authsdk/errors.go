package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest          = "invalid_request"
	ErrorCodeInvalidToken            = "invalid_token"
	ErrorCodeAccessDenied            = "access_denied"
	ErrorCodeNotFound                = "not_found"
	ErrorCodeServerError             = "server_error"
	ErrorCodeTemporarilyUnavailable  = "temporarily_unavailable"
	ErrorCodeNationalCodeTaken       = "national_code_taken"
	ErrorCodeInvalidPassword         = "invalid_password"
	ErrorCodeCannotChangeOwnStatus   = "cannot_change_own_status"
	ErrorCodeTOTPAlreadyEnabled      = "totp_already_enabled"
	ErrorCodeTOTPNotInitiated        = "totp_not_initiated"
	ErrorCodeInvalidTOTPCode         = "invalid_totp_code"
	ErrorCodeLoginInvalidCredentials = "INVALID_CREDENTIALS"
	ErrorCodeLoginTOTPRequired       = "TOTP_REQUIRED"
	ErrorCodeLoginInvalidTOTP        = "INVALID_TOTP"
	ErrorCodeLoginTOTPSetup          = "TOTP_SETUP_ERROR"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body every endpoint returns. It is used by the server
// to write responses and by the client to report them.
type APIError struct {
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description"`

	// Redirect is set on access_denied answers from the access gate.
	Redirect string `json:"redirect,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on the error code, so errors.Is(err, authsdk.ErrTOTPRequired)
// works on errors parsed from a response.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WriteError writes e as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	if e.StatusCode == http.StatusUnauthorized && e.Code == ErrorCodeInvalidToken {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// WithRedirect returns a copy of e pointing the UI at path.
func (e *APIError) WithRedirect(path string) *APIError {
	c := *e
	c.Redirect = path
	return &c
}

// NewAPIError creates an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, invalid, expired or revoked",
	}

	ErrAccessDenied = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "access denied",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "user not found",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	ErrNationalCodeTaken = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeNationalCodeTaken,
		Description: "a user with this national code already exists",
	}

	ErrInvalidPassword = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidPassword,
		Description: "the password is incorrect",
	}

	ErrCannotChangeOwnStatus = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeCannotChangeOwnStatus,
		Description: "you cannot change the status of your own account",
	}

	ErrTOTPAlreadyEnabled = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeTOTPAlreadyEnabled,
		Description: "two-factor authentication is already enabled",
	}

	ErrTOTPNotInitiated = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeTOTPNotInitiated,
		Description: "start enrollment before verifying a code",
	}

	ErrInvalidTOTPCode = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidTOTPCode,
		Description: "the code is invalid",
	}
)

// Login failures. The descriptions are shown to end users as is.
var (
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeLoginInvalidCredentials,
		Description: "invalid credentials",
	}

	ErrTOTPRequired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeLoginTOTPRequired,
		Description: "an authenticator code is required",
	}

	ErrInvalidTOTP = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeLoginInvalidTOTP,
		Description: "the authenticator code is invalid",
	}

	ErrTOTPSetup = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeLoginTOTPSetup,
		Description: "two-factor configuration error, contact support",
	}
)

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError. It returns
// nil for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			Redirect:    errResp.Redirect,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
