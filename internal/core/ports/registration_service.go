package ports

import (
	"context"
	"time"

	"github.com/citymove/identity-service/internal/core/domain"
)

// CustomerData carries optional customer role data supplied at registration.
type CustomerData struct {
	Preferences map[string]string
}

// DriverData carries the license data required to register as a driver.
type DriverData struct {
	LicenseNumber string
	LicenseExpiry time.Time
	Languages     []string
}

// EditorData carries the invitation code required to register as an editor.
type EditorData struct {
	InvitationCode string
}

// RoleData is a tagged union over the role-profile variants, discriminated
// by the requested role. Exactly the variant matching the role is consulted;
// the union deliberately has no approval field, so callers cannot self-set
// approval state.
type RoleData struct {
	Customer *CustomerData
	Driver   *DriverData
	Editor   *EditorData
}

// RegisterInput carries all data for one registration attempt.
type RegisterInput struct {
	// Origin identifies the caller for rate limiting (client IP).
	Origin   string
	Email    string
	Password string
	Name     string
	Phone    string // optional
	Role     domain.Role
	Data     RoleData
}

// RegisterResult is returned on a successful registration.
type RegisterResult struct {
	// Created is true when a new account was created, false when the role
	// was added to an existing account.
	Created bool
	// PendingApproval is true for roles that await external moderation.
	PendingApproval bool
	Message         string
	Account         *domain.Account
	Role            domain.Role
}

// RegistrationService orchestrates rate limiting, validation, and the
// create-account vs attach-role branches.
type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
}

// RoleProvisioner creates or updates the role-specific profile for an
// attachment. ValidateData checks role preconditions without touching the
// store, so the registrar can fail before any state exists.
type RoleProvisioner interface {
	ValidateData(role domain.Role, data RoleData) error
	Provision(ctx context.Context, accountID string, role domain.Role, data RoleData) error
}

// ScoreService computes and persists the 0-100 profile completion score.
type ScoreService interface {
	Score(ctx context.Context, accountID string) (int, error)
}

// ScoreQueue schedules an asynchronous score recomputation for an account.
type ScoreQueue interface {
	Enqueue(accountID string)
}
