package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")

	ErrRateLimited        = errors.New("too many registration attempts")
	ErrDuplicateRole      = errors.New("role already active for this account")
	ErrDriverDataRequired = errors.New("driver registration requires license data")
	ErrInvitationRequired = errors.New("editor registration requires an invitation code")

	ErrAttachmentNotFound = errors.New("role attachment not found")
	ErrProfileNotFound    = errors.New("role profile not found")

	ErrSelfTarget     = errors.New("bulk action cannot target the acting admin")
	ErrTargetNotFound = errors.New("one or more target accounts do not exist")
	ErrRoleRequired   = errors.New("role is required for this action")
	ErrUnknownAction  = errors.New("unknown bulk action")
)

// ValidationError aggregates per-field rule violations. Every violated rule
// is reported, not just the first one per field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a violation message for a field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// HasViolations reports whether any field failed validation.
func (e *ValidationError) HasViolations() bool {
	return len(e.Fields) > 0
}
