package domain

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RoleClerk   Role = "clerk"
	RolePatient Role = "patient"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAdmin, RoleDoctor, RoleClerk, RolePatient:
		return r, true
	default:
		return "", false
	}
}

// IsStaff reports whether the role must use two-factor authentication.
func (r Role) IsStaff() bool {
	return r == RoleDoctor || r == RoleClerk
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) String() string { return string(r) }
