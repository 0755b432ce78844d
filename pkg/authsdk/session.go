package authsdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// ErrSessionExpired is returned locally once the access token has expired.
// Sessions cannot be refreshed without logging in again.
var ErrSessionExpired = errors.New("authsdk: session expired")

// Session is an authenticated session. Calls that refresh the token on the
// server (VerifyTOTP, ResetTOTP) update it in place.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time // zero when unknown
	principal   Principal
}

func newSession(client *SDKClient, tokenResp *TokenResponse) *Session {
	s := &Session{client: client}
	s.setToken(tokenResp)
	return s
}

func (s *Session) setToken(tokenResp *TokenResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = tokenResp.AccessToken
	s.principal = tokenResp.Principal
	s.expiresAt = time.Time{}
	if tokenResp.ExpiresIn > 0 {
		s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}
}

func (s *Session) validToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.expiresAt.IsZero() && !time.Now().Before(s.expiresAt) {
		return "", ErrSessionExpired
	}
	return s.accessToken, nil
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Principal returns the identity from the last token response. It is empty
// for sessions created with NewSessionFromToken until GetSession is called.
func (s *Session) Principal() Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal
}

// ============================================================================
// Session
// ============================================================================

// Logout revokes the session on the server.
func (s *Session) Logout(ctx context.Context) error {
	return s.doAuthJSON(ctx, http.MethodPost, "/v1/auth/logout", nil, nil, http.StatusNoContent)
}

// GetSession returns the principal of the current token.
func (s *Session) GetSession(ctx context.Context) (*Principal, error) {
	var p Principal
	if err := s.doAuthJSON(ctx, http.MethodGet, "/v1/auth/session", nil, &p, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.principal = p
	s.mu.Unlock()
	return &p, nil
}

// CheckAccess asks the gate about path for this session.
func (s *Session) CheckAccess(ctx context.Context, path string) (*AccessDecision, error) {
	var d AccessDecision
	if err := s.doAuthJSON(ctx, http.MethodGet, accessPath(path), nil, &d, http.StatusOK); err != nil {
		return nil, err
	}
	return &d, nil
}

// ============================================================================
// Two-factor
// ============================================================================

// EnrollTOTP starts (or resumes) TOTP enrollment.
func (s *Session) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	var out TOTPEnrollResponse
	if err := s.doAuthJSON(ctx, http.MethodPost, "/v1/mfa/totp/enroll", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTOTP confirms enrollment with a code and switches the session to the
// refreshed token.
func (s *Session) VerifyTOTP(ctx context.Context, code string) (*TokenResponse, error) {
	var out TokenResponse
	if err := s.doAuthJSON(ctx, http.MethodPost, "/v1/mfa/totp/verify", TOTPVerifyRequest{Code: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	s.setToken(&out)
	return &out, nil
}

// ResetTOTP disables two factors after checking password and switches the
// session to the refreshed token.
func (s *Session) ResetTOTP(ctx context.Context, password string) (*TokenResponse, error) {
	var out TokenResponse
	if err := s.doAuthJSON(ctx, http.MethodPost, "/v1/profile/2fa/reset", TOTPResetRequest{Password: password}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	s.setToken(&out)
	return &out, nil
}

// ============================================================================
// Profile
// ============================================================================

func (s *Session) GetProfile(ctx context.Context) (*User, error) {
	var u User
	if err := s.doAuthJSON(ctx, http.MethodGet, "/v1/profile", nil, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	var u User
	if err := s.doAuthJSON(ctx, http.MethodPatch, "/v1/profile", req, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	return s.doAuthJSON(ctx, http.MethodPost, "/v1/profile/password", ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}, nil, http.StatusNoContent)
}

// ============================================================================
// Administration
// ============================================================================

func (s *Session) ListUsers(ctx context.Context) ([]User, error) {
	var out UsersResponse
	if err := s.doAuthJSON(ctx, http.MethodGet, "/v1/admin/users", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var u User
	if err := s.doAuthJSON(ctx, http.MethodPost, "/v1/admin/users", req, &u, http.StatusCreated); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	var u User
	if err := s.doAuthJSON(ctx, http.MethodPut, "/v1/admin/users/"+url.PathEscape(id), req, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) ToggleUserStatus(ctx context.Context, id string) (*ToggleStatusResponse, error) {
	var out ToggleStatusResponse
	if err := s.doAuthJSON(ctx, http.MethodPost, "/v1/admin/users/"+url.PathEscape(id)+"/toggle-status", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListAuditLogs(ctx context.Context, q AuditLogQuery) ([]AuditLog, error) {
	v := url.Values{}
	if q.ActorUserID != "" {
		v.Set("actor_user_id", q.ActorUserID)
	}
	if q.Action != "" {
		v.Set("action", q.Action)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}

	path := "/v1/admin/audit-logs"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var out AuditLogsResponse
	if err := s.doAuthJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.AuditLogs, nil
}

// ============================================================================
// Staff
// ============================================================================

func (s *Session) ListStaff(ctx context.Context) ([]User, error) {
	var out UsersResponse
	if err := s.doAuthJSON(ctx, http.MethodGet, "/v1/staff", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (s *Session) CreateStaff(ctx context.Context, req CreateUserRequest) (*User, error) {
	var u User
	if err := s.doAuthJSON(ctx, http.MethodPost, "/v1/staff", req, &u, http.StatusCreated); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) UpdateStaff(ctx context.Context, id string, req UpdateStaffRequest) (*User, error) {
	var u User
	if err := s.doAuthJSON(ctx, http.MethodPut, "/v1/staff/"+url.PathEscape(id), req, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) ToggleStaffStatus(ctx context.Context, id string) (*ToggleStatusResponse, error) {
	var out ToggleStatusResponse
	if err := s.doAuthJSON(ctx, http.MethodPost, "/v1/staff/"+url.PathEscape(id)+"/toggle-status", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
