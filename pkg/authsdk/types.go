package authsdk

import (
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/jwtx"
)

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse is the JSON error body. Client code should use APIError.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Redirect         string `json:"redirect,omitempty"`
}

// ============================================================================
// Session Types
// ============================================================================

// LoginRequest is the body of POST /v1/auth/login. Identifier is a phone
// number or a national code.
type LoginRequest struct {
	Identifier string `json:"identifier" example:"09121234567"`
	Password   string `json:"password"`
	TOTPCode   string `json:"totp_code,omitempty" example:"123456"`
}

// Principal is the identity carried by a session.
type Principal struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role" example:"doctor"`
	TOTPEnabled bool   `json:"totp_enabled"`
}

// TokenResponse is returned by login and by every call that refreshes the
// session (TOTP verify and reset).
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type" example:"Bearer"`
	ExpiresIn   int       `json:"expires_in" example:"28800"`
	Principal   Principal `json:"principal"`
}

// AccessDecision is the access gate's answer for a UI path.
type AccessDecision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty" example:"/setup-2fa"`
}

// ============================================================================
// MFA Types
// ============================================================================

// TOTPEnrollResponse carries what an authenticator app needs to add the
// account.
type TOTPEnrollResponse struct {
	Secret  string `json:"secret" example:"JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"`
	URI     string `json:"otpauth_uri" example:"otpauth://totp/EHR%20Portal:0012345678?secret=JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP&issuer=EHR%20Portal"`
	QRCode  string `json:"qr_code" example:"data:image/png;base64,iVBORw0KGgo..."`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

type TOTPVerifyRequest struct {
	Code string `json:"code" example:"123456"`
}

type TOTPResetRequest struct {
	Password string `json:"password"`
}

// ============================================================================
// User Types
// ============================================================================

// User is an account as shown to administrators, doctors and the account
// owner. Secrets and hashes are never included.
type User struct {
	ID           string    `json:"id"`
	NationalCode string    `json:"national_code"`
	PhoneNumber  string    `json:"phone_number"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	Status       string    `json:"status" example:"active"`
	Gender       string    `json:"gender,omitempty"`
	BirthDate    string    `json:"birth_date,omitempty" example:"1988-04-02"`
	CreatedBy    *string   `json:"created_by,omitempty"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UsersResponse struct {
	Users []User `json:"users"`
}

// CreateUserRequest provisions an account. Staff creation ignores an empty
// role and defaults to clerk.
type CreateUserRequest struct {
	FullName     string `json:"full_name"`
	NationalCode string `json:"national_code" example:"0075834129"`
	PhoneNumber  string `json:"phone_number"`
	Password     string `json:"password"`
	Role         string `json:"role,omitempty" example:"clerk"`
	Gender       string `json:"gender,omitempty"`
	BirthDate    string `json:"birth_date,omitempty"`
}

// UpdateProfileRequest holds optional profile changes. Nil fields are kept.
type UpdateProfileRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	BirthDate   *string `json:"birth_date,omitempty"`
}

type UpdateUserRequest struct {
	UpdateProfileRequest
	Role *string `json:"role,omitempty"`
}

type UpdateStaffRequest struct {
	UpdateProfileRequest
	Password *string `json:"password,omitempty"`
}

type ToggleStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status" example:"inactive"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ============================================================================
// Audit Types
// ============================================================================

type AuditActor struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type AuditLog struct {
	ID           string         `json:"id"`
	ActorUserID  *string        `json:"actor_user_id,omitempty"`
	Actor        *AuditActor    `json:"actor,omitempty"`
	Action       string         `json:"action" example:"enable_2fa"`
	ResourceType string         `json:"resource_type" example:"user"`
	ResourceID   *string        `json:"resource_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	IPAddress    *string        `json:"ip_address,omitempty"`
	UserAgent    *string        `json:"user_agent,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

type AuditLogsResponse struct {
	AuditLogs []AuditLog `json:"audit_logs"`
}

// AuditLogQuery filters GET /v1/admin/audit-logs. Zero values are omitted.
type AuditLogQuery struct {
	ActorUserID string
	Action      string
	Limit       int
	Offset      int
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz. Only /readyz sets Checks.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Sessions string `json:"sessions"`
	Signer   string `json:"signer"`
}

// ============================================================================
// JWKS Types
// ============================================================================

// JWKSResponse holds the public keys that verify session tokens.
type JWKSResponse jwtx.JWKS
