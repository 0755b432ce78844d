package domain

// Principal is the authenticated identity produced by login and carried by a session.
type Principal struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	TOTPEnabled bool   `json:"totp_enabled"`
}
