package client

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"storefront/internal/users"
)

// MinPasswordLength is the shortest password the forms accept.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrInvalidEmail     = errors.New("please enter a valid email")
	ErrShortPassword    = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

// ValidateEmail accepts an empty value; required checks happen on submit.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" && !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if password != "" && len([]rune(password)) < MinPasswordLength {
		return ErrShortPassword
	}
	return nil
}

func ValidatePasswordMatch(password, confirm string) error {
	if confirm != "" && password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// FormatPhone keeps the digits of raw and lays them out as (DD) DDDD-DDDD
// for ten digits or (DD) DDDDD-DDDD for eleven or more. Shorter input is
// returned as bare digits; digits past the eleventh are kept at the end.
func FormatPhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, raw)

	switch {
	case len(digits) == 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:6], digits[6:])
	case len(digits) > 10:
		return fmt.Sprintf("(%s) %s-%s%s", digits[:2], digits[2:7], digits[7:11], digits[11:])
	default:
		return digits
	}
}

// ValidateSignup runs the inline checks of the signup form.
func ValidateSignup(nc users.NewCustomer) FieldErrors {
	errs := FieldErrors{}
	if err := ValidateEmail(nc.Email); err != nil {
		errs["email"] = err.Error()
	}
	if err := ValidatePassword(nc.Password); err != nil {
		errs["senha"] = err.Error()
	}
	if err := ValidatePasswordMatch(nc.Password, nc.ConfirmPassword); err != nil {
		errs["confirmarSenha"] = err.Error()
	}
	return errs
}

// ValidateLogin runs the inline checks of the login form.
func ValidateLogin(creds users.Credentials) FieldErrors {
	errs := FieldErrors{}
	if err := ValidateEmail(creds.Email); err != nil {
		errs["email"] = err.Error()
	}
	if err := ValidatePassword(creds.Password); err != nil {
		errs["senha"] = err.Error()
	}
	return errs
}
