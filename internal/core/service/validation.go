package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

const (
	nameMinLen     = 2
	nameMaxLen     = 100
	passwordMinLen = 8
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// Optional leading +, then 7-15 digits; spaces and dashes are tolerated.
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)
)

// ValidateRegistration runs all field checks and returns every violation,
// keyed by field. A nil return means the input is clean. The checks are pure:
// no store access, no clock.
func ValidateRegistration(in ports.RegisterInput) *domain.ValidationError {
	ve := &domain.ValidationError{}

	if email := strings.TrimSpace(in.Email); email == "" {
		ve.Add("email", "email is required")
	} else if !emailRe.MatchString(email) {
		ve.Add("email", "email format is invalid")
	}

	name := strings.TrimSpace(in.Name)
	if len(name) < nameMinLen {
		ve.Add("name", "name must be at least 2 characters")
	} else if len(name) > nameMaxLen {
		ve.Add("name", "name must be at most 100 characters")
	}

	// Phone is optional: absence is not an error, only malformed input is.
	if in.Phone != "" && !phoneRe.MatchString(in.Phone) {
		ve.Add("phone", "phone format is invalid")
	}

	for _, msg := range passwordViolations(in.Password) {
		ve.Add("password", msg)
	}

	if !in.Role.Valid() {
		ve.Add("role", "role must be one of: customer, driver, editor, admin")
	}

	if !ve.HasViolations() {
		return nil
	}
	return ve
}

// passwordViolations returns every strength rule the password breaks, not
// just the first.
func passwordViolations(password string) []string {
	var msgs []string
	if len(password) < passwordMinLen {
		msgs = append(msgs, "password must be at least 8 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		msgs = append(msgs, "password must contain an uppercase letter")
	}
	if !hasLower {
		msgs = append(msgs, "password must contain a lowercase letter")
	}
	if !hasDigit {
		msgs = append(msgs, "password must contain a digit")
	}
	return msgs
}

// normalizeEmail canonicalizes an email for the case-insensitive uniqueness
// constraint.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
