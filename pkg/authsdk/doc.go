/*
Package authsdk provides a client SDK for the EHR authentication service.

# Overview

The package is organized around two types:

  - SDKClient: public endpoints (login, access gate, health, JWKS)
  - Session: endpoints that need a bearer token

Create an SDKClient and log in:

	client := authsdk.NewSDKClient("https://auth.example.com")

	session, err := client.Authenticate(ctx, "09121234567", password, "")
	if errors.Is(err, authsdk.ErrTOTPRequired) {
		// ask for the authenticator code and try again
		session, err = client.Authenticate(ctx, "09121234567", password, code)
	}

# Login Failures

Login answers 401 with one of three codes and 500 with a fourth. All of them
are returned as *APIError and can be matched with errors.Is:

  - ErrInvalidCredentials: unknown identifier, wrong password or inactive account
  - ErrTOTPRequired: the account has two factors and no code was sent
  - ErrInvalidTOTP: the code was wrong, stale or already used
  - ErrTOTPSetup: the account's two-factor configuration is broken

# Access Gate

The service decides where a UI route should send the user:

	d, err := session.CheckAccess(ctx, "/admin/users")
	if !d.Allowed {
		redirect(d.Redirect)
	}

API groups are guarded by the same rules and answer 403 access_denied with a
redirect field, available on the returned *APIError.

# Two-factor Enrollment

	enrollment, err := session.EnrollTOTP(ctx)
	// show enrollment.QRCode, then
	_, err = session.VerifyTOTP(ctx, code)

VerifyTOTP and ResetTOTP return a refreshed token and switch the session to
it, so the new totp_enabled flag is visible to the gate.

# Expiry

Tokens cannot be refreshed. Once a session's token has expired every call
returns ErrSessionExpired without contacting the server.

# Thread Safety

Sessions are safe for concurrent use.
*/
package authsdk
