package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrNationalCodeTaken  = errors.New("national_code_taken")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrActorRequired      = errors.New("actor_required")
	ErrSelfStatusChange   = errors.New("cannot_change_own_status")
	ErrTOTPAlreadyEnabled = errors.New("totp_already_enabled")
	ErrTOTPNotInitiated   = errors.New("totp_not_initiated")
	ErrInvalidTOTPCode    = errors.New("invalid_totp_code")
	ErrAuditWrite         = errors.New("audit_write_failed")
)
