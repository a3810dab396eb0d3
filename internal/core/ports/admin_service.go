package ports

import (
	"context"

	"github.com/citymove/identity-service/internal/core/domain"
)

// AdminAction is a bulk operation an administrator can run over accounts.
type AdminAction string

const (
	ActionActivate   AdminAction = "activate"
	ActionDeactivate AdminAction = "deactivate"
	ActionVerify     AdminAction = "verify"
	ActionAssignRole AdminAction = "assign_role"
	ActionRevokeRole AdminAction = "revoke_role"
)

// Valid reports whether a is a known bulk action.
func (a AdminAction) Valid() bool {
	switch a {
	case ActionActivate, ActionDeactivate, ActionVerify, ActionAssignRole, ActionRevokeRole:
		return true
	}
	return false
}

// RequiresRole reports whether the action needs a role parameter.
func (a AdminAction) RequiresRole() bool {
	return a == ActionAssignRole || a == ActionRevokeRole
}

// BulkActionInput carries one admin bulk call.
type BulkActionInput struct {
	ActorID   string
	Action    AdminAction
	TargetIDs []string
	Role      domain.Role // required for assign_role / revoke_role
}

// TargetResult reports the outcome of the action for a single target.
// Success and failure are independent per target; a failed target never
// rolls back the others.
type TargetResult struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// AdminService runs bulk account and role administration.
type AdminService interface {
	BulkAction(ctx context.Context, in BulkActionInput) ([]TargetResult, error)
}
