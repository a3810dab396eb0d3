package domain

import "time"

// Role is a role kind that can be attached to an Account.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleEditor   Role = "editor"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known role kinds.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDriver, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// AssignedBySelf marks an attachment created by the account holder during
// registration, as opposed to an admin grant (which records the admin id).
const AssignedBySelf = "self"

// RoleAttachment is a grant of one role kind to an Account. At most one
// attachment per (account, role) may be active at a time. Attachments are
// never physically removed: a revoke flips Active to false and stamps
// DeactivatedAt, preserving history.
type RoleAttachment struct {
	ID            string     `json:"id"`
	AccountID     string     `json:"account_id"`
	Role          Role       `json:"role"`
	Active        bool       `json:"active"`
	AssignedBy    string     `json:"assigned_by"`
	AssignedAt    time.Time  `json:"assigned_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}
