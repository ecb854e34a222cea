package auth

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var emailRegex = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// specialChars is the set of characters that satisfies the special-character
// password rule.
const specialChars = `!@#$%^&*()-_=+[]{};:'",.<>?/`

// Password rule violations. Each rule carries its own stable message so the
// user is told exactly which precondition failed.
var (
	ErrPasswordEmpty     = errors.New("no password was entered")
	ErrPasswordNoLower   = errors.New("the password must contain at least one lowercase letter")
	ErrPasswordNoUpper   = errors.New("the password must contain at least one uppercase letter")
	ErrPasswordNoDigit   = errors.New("the password must contain at least one digit")
	ErrPasswordNoSpecial = errors.New("the password must contain at least one special character")
	ErrPasswordTooShort  = errors.New("the password must be longer than 7 characters")

	ErrInvalidEmail      = errors.New("an invalid email address was entered")
	ErrFirstNameTooShort = errors.New("the first name entered was too short")
	ErrFirstNameTooLong  = errors.New("the first name entered was too long")
	ErrLastInitialLong   = errors.New("the last name entered was too long")
)

// ValidatePassword checks the password against every rule and returns the
// first violated one.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordEmpty
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}

	if !hasLower {
		return ErrPasswordNoLower
	}
	if !hasUpper {
		return ErrPasswordNoUpper
	}
	if !hasDigit {
		return ErrPasswordNoDigit
	}
	if !hasSpecial {
		return ErrPasswordNoSpecial
	}
	if len(password) <= 7 {
		return ErrPasswordTooShort
	}
	return nil
}

// ValidEmail reports whether the address matches the email pattern. It does
// not check for the existence of the address.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateName checks the signup name fields. The last initial is optional
// but at most a single character.
func ValidateName(firstName, lastInitial string) error {
	if firstName == "" {
		return ErrFirstNameTooShort
	}
	if len(firstName) > 29 {
		return ErrFirstNameTooLong
	}
	if len(lastInitial) > 1 {
		return ErrLastInitialLong
	}
	return nil
}

// DisplayName builds the stored display name from a first name and an
// optional last initial.
func DisplayName(firstName, lastInitial string) string {
	if lastInitial == "" {
		return firstName
	}
	return firstName + " " + lastInitial + "."
}
