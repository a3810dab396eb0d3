package ports

import (
	"context"

	"github.com/citymove/identity-service/internal/core/domain"
)

// RoleRepository defines persistence operations for role attachments and
// role profiles.
type RoleRepository interface {
	// FindActiveAttachment returns the active attachment for (account, role),
	// or domain.ErrAttachmentNotFound when none is active.
	FindActiveAttachment(ctx context.Context, accountID string, role domain.Role) (*domain.RoleAttachment, error)
	ListAttachments(ctx context.Context, accountID string) ([]*domain.RoleAttachment, error)
	CreateAttachment(ctx context.Context, att *domain.RoleAttachment) (*domain.RoleAttachment, error)
	// DeactivateAttachment soft-deactivates an attachment, preserving history.
	DeactivateAttachment(ctx context.Context, id string) error
	// DeleteAttachment removes an attachment record. Only used to roll back
	// an attachment whose profile provisioning failed in the same call.
	DeleteAttachment(ctx context.Context, id string) error

	FindCustomerProfile(ctx context.Context, accountID string) (*domain.CustomerProfile, error)
	FindDriverProfile(ctx context.Context, accountID string) (*domain.DriverProfile, error)
	FindEditorProfile(ctx context.Context, accountID string) (*domain.EditorProfile, error)
	// FindProfiles loads all provisioned role profiles for an account in one
	// call (used by the scorer).
	FindProfiles(ctx context.Context, accountID string) (*domain.RoleProfiles, error)

	CreateCustomerProfile(ctx context.Context, p *domain.CustomerProfile) error
	CreateDriverProfile(ctx context.Context, p *domain.DriverProfile) error
	CreateEditorProfile(ctx context.Context, p *domain.EditorProfile) error
	// UpdateDriverProfile updates license data and languages. The approval
	// flag is deliberately not part of this operation.
	UpdateDriverProfile(ctx context.Context, p *domain.DriverProfile) error
}
