package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the EHR authentication service. It calls the
// public endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges credentials for a session token. Failures are returned as
// *APIError and match ErrInvalidCredentials, ErrTOTPRequired, ErrInvalidTOTP
// or ErrTOTPSetup with errors.Is.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	body, headers, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/login", body, headers)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// Authenticate logs in and wraps the token in a Session. totpCode may be
// empty for accounts without two factors.
func (c *SDKClient) Authenticate(ctx context.Context, identifier, password, totpCode string) (*Session, error) {
	tokenResp, err := c.Login(ctx, LoginRequest{
		Identifier: identifier,
		Password:   password,
		TOTPCode:   totpCode,
	})
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// NewSessionFromToken wraps an access token obtained elsewhere.
func (c *SDKClient) NewSessionFromToken(accessToken string) *Session {
	return &Session{client: c, accessToken: accessToken}
}

// CheckAccess asks the gate about path for an anonymous visitor.
func (c *SDKClient) CheckAccess(ctx context.Context, path string) (*AccessDecision, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, accessPath(path), nil, nil)
	if err != nil {
		return nil, err
	}

	var decision AccessDecision
	if err := decodeJSON(resp, &decision, http.StatusOK); err != nil {
		return nil, err
	}
	return &decision, nil
}

func accessPath(path string) string {
	return "/v1/access?" + url.Values{"path": {path}}.Encode()
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// GetJWKS retrieves the JSON Web Key Set for token verification.
func (c *SDKClient) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/jwks.json", nil, nil)
	if err != nil {
		return nil, err
	}

	var jwks JWKSResponse
	if err := decodeJSON(resp, &jwks, http.StatusOK); err != nil {
		return nil, err
	}

	return &jwks, nil
}
