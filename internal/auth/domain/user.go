package domain

import "time"

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// Toggle returns the opposite status.
func (s UserStatus) Toggle() UserStatus {
	if s == UserStatusActive {
		return UserStatusInactive
	}
	return UserStatusActive
}

type User struct {
	ID           string
	NationalCode string // unique, also a login identifier
	PhoneNumber  string // login identifier
	FullName     string
	PasswordHash string // argon2id PHC, or bcrypt for imported accounts
	Role         Role
	Status       UserStatus
	Gender       string
	BirthDate    string // YYYY-MM-DD
	CreatedBy    *string
	TOTPSecret   *string // encrypted envelope, or legacy base32 plaintext
	TOTPEnabled  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Principal returns the identity carried by a session for this user.
func (u User) Principal() Principal {
	return Principal{
		ID:          u.ID,
		Name:        u.FullName,
		Role:        u.Role,
		TOTPEnabled: u.TOTPEnabled,
	}
}

// ProfileUpdate holds the user-editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName    *string
	PhoneNumber *string
	Gender      *string
	BirthDate   *string
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.FullName == nil && p.PhoneNumber == nil && p.Gender == nil && p.BirthDate == nil
}

// ChangedFields lists the names of the fields set on the update, for audit details.
func (p ProfileUpdate) ChangedFields() []string {
	var fields []string
	if p.FullName != nil {
		fields = append(fields, "full_name")
	}
	if p.PhoneNumber != nil {
		fields = append(fields, "phone_number")
	}
	if p.Gender != nil {
		fields = append(fields, "gender")
	}
	if p.BirthDate != nil {
		fields = append(fields, "birth_date")
	}
	return fields
}
