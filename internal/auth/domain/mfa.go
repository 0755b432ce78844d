package domain

// TOTPEnrollment is returned when a user starts (or re-enters) TOTP setup.
type TOTPEnrollment struct {
	Secret  string // base32 secret for manual entry
	URI     string // otpauth:// provisioning URI
	QRCode  string // PNG data URL of URI
	Issuer  string
	Account string // national code
}
