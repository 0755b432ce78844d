package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
)

const (
	MinPasswordLength = 8
	MinFullNameLength = 3
	MinPhoneLength    = 10
	NationalCodeLen   = 10

	birthDateLayout = "2006-01-02"
)

var genders = map[string]bool{"male": true, "female": true, "other": true, "unknown": true}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validateNationalCode(s string) error {
	if len(s) != NationalCodeLen || !allDigits(s) {
		return invalid("national code must be %d digits", NationalCodeLen)
	}
	return nil
}

func validatePhone(s string) error {
	digits := strings.TrimPrefix(s, "+")
	if len(digits) < MinPhoneLength || !allDigits(digits) {
		return invalid("phone number must have at least %d digits", MinPhoneLength)
	}
	return nil
}

func validateFullName(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < MinFullNameLength {
		return invalid("full name must have at least %d characters", MinFullNameLength)
	}
	return nil
}

func validatePassword(s string) error {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return invalid("password must have at least %d characters", MinPasswordLength)
	}
	return nil
}

func validateGender(s string) error {
	if s != "" && !genders[s] {
		return invalid("unknown gender %q", s)
	}
	return nil
}

func validateBirthDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(birthDateLayout, s); err != nil {
		return invalid("birth date must be YYYY-MM-DD")
	}
	return nil
}

// validateProfileUpdate checks the fields present on p.
func validateProfileUpdate(p domain.ProfileUpdate) error {
	if p.FullName != nil {
		if err := validateFullName(*p.FullName); err != nil {
			return err
		}
	}
	if p.PhoneNumber != nil {
		if err := validatePhone(*p.PhoneNumber); err != nil {
			return err
		}
	}
	if p.Gender != nil {
		if err := validateGender(*p.Gender); err != nil {
			return err
		}
	}
	if p.BirthDate != nil {
		if err := validateBirthDate(*p.BirthDate); err != nil {
			return err
		}
	}
	return nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NewAccount is the input for provisioning a user through administration or
// staff management.
type NewAccount struct {
	FullName     string
	NationalCode string
	PhoneNumber  string
	Password     string
	Role         domain.Role
	Gender       string
	BirthDate    string
}

func (a NewAccount) validate() error {
	if err := validateFullName(a.FullName); err != nil {
		return err
	}
	if err := validateNationalCode(a.NationalCode); err != nil {
		return err
	}
	if err := validatePhone(a.PhoneNumber); err != nil {
		return err
	}
	if err := validatePassword(a.Password); err != nil {
		return err
	}
	if err := validateGender(a.Gender); err != nil {
		return err
	}
	return validateBirthDate(a.BirthDate)
}
