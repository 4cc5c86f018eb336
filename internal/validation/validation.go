// Package validation holds input rules shared by services and handlers.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	// MinPasswordLength is counted in characters, not bytes.
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxEmailLength    = 120
	MaxUsernameLength = 50
)

var (
	validate      = validator.New(validator.WithRequiredStructEnabled())
	usernameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._+-]*$`)
)

// ValidatePassword enforces the password length policy.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	}
	return nil
}

// ValidateEmail checks the address shape of an already normalized email.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if err := validate.Var(email, fmt.Sprintf("email,max=%d", MaxEmailLength)); err != nil {
		return errors.New("invalid email address")
	}
	return nil
}

// ValidateUsername accepts lowercase handles made of letters, digits and . _ + -.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username may only contain lowercase letters, digits, '.', '_', '+' and '-'")
	}
	return nil
}

// Struct validates v against its `validate` tags and reports the first
// failing field in a client-friendly message.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%s is required", field)
		case "max":
			return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
		case "email":
			return fmt.Errorf("%s must be a valid email address", field)
		case "oneof":
			return fmt.Errorf("%s must be one of: %s", field, fe.Param())
		default:
			return fmt.Errorf("%s is invalid", field)
		}
	}
	return err
}
