package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

// Provisioner creates and updates role-specific profiles. It never lets a
// caller set an approval flag: the RoleData union carries no such field and
// new driver/editor profiles are always written unapproved.
type Provisioner struct {
	roles ports.RoleRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewProvisioner(roles ports.RoleRepository, log zerolog.Logger) *Provisioner {
	return &Provisioner{roles: roles, log: log, now: time.Now}
}

// ValidateData checks role preconditions without touching the store, so a
// registration can be rejected before any account or attachment exists.
func (p *Provisioner) ValidateData(role domain.Role, data ports.RoleData) error {
	switch role {
	case domain.RoleCustomer, domain.RoleAdmin:
		return nil
	case domain.RoleDriver:
		d := data.Driver
		if d == nil || d.LicenseNumber == "" {
			return fmt.Errorf("%w: license number is missing", domain.ErrDriverDataRequired)
		}
		if len(d.Languages) == 0 {
			return fmt.Errorf("%w: at least one language is required", domain.ErrDriverDataRequired)
		}
		if !d.LicenseExpiry.After(p.now()) {
			return fmt.Errorf("%w: license expiry must be in the future", domain.ErrDriverDataRequired)
		}
		return nil
	case domain.RoleEditor:
		// Only syntactic presence is checked here; validating the code
		// against an invitation registry is an external extension point.
		if data.Editor == nil || data.Editor.InvitationCode == "" {
			return domain.ErrInvitationRequired
		}
		return nil
	default:
		return fmt.Errorf("unknown role %q", role)
	}
}

// Provision materializes the role profile for an account. Customer
// provisioning is an idempotent no-op when the profile already exists;
// driver provisioning updates license data on an existing profile without
// touching the approval flag.
func (p *Provisioner) Provision(ctx context.Context, accountID string, role domain.Role, data ports.RoleData) error {
	now := p.now().UTC()

	switch role {
	case domain.RoleCustomer:
		existing, err := p.roles.FindCustomerProfile(ctx, accountID)
		if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			return fmt.Errorf("find customer profile: %w", err)
		}
		if existing != nil {
			p.log.Debug().Str("account_id", accountID).Msg("customer profile already provisioned")
			return nil
		}
		profile := &domain.CustomerProfile{
			AccountID:    accountID,
			LoyaltyScore: 0,
			Tier:         domain.TierBasic,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if data.Customer != nil {
			profile.Preferences = data.Customer.Preferences
		}
		if err := p.roles.CreateCustomerProfile(ctx, profile); err != nil {
			return fmt.Errorf("create customer profile: %w", err)
		}

	case domain.RoleDriver:
		existing, err := p.roles.FindDriverProfile(ctx, accountID)
		if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			return fmt.Errorf("find driver profile: %w", err)
		}
		if existing != nil {
			if data.Driver != nil {
				existing.LicenseNumber = data.Driver.LicenseNumber
				existing.LicenseExpiry = data.Driver.LicenseExpiry
				existing.Languages = data.Driver.Languages
				existing.UpdatedAt = now
				if err := p.roles.UpdateDriverProfile(ctx, existing); err != nil {
					return fmt.Errorf("update driver profile: %w", err)
				}
			}
			return nil
		}
		profile := &domain.DriverProfile{
			AccountID: accountID,
			Approved:  false,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if data.Driver != nil {
			profile.LicenseNumber = data.Driver.LicenseNumber
			profile.LicenseExpiry = data.Driver.LicenseExpiry
			profile.Languages = data.Driver.Languages
		}
		if err := p.roles.CreateDriverProfile(ctx, profile); err != nil {
			return fmt.Errorf("create driver profile: %w", err)
		}

	case domain.RoleEditor:
		existing, err := p.roles.FindEditorProfile(ctx, accountID)
		if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			return fmt.Errorf("find editor profile: %w", err)
		}
		if existing != nil {
			return nil
		}
		// Permissions always start empty; moderation grants them later.
		profile := &domain.EditorProfile{
			AccountID:   accountID,
			Permissions: []string{},
			Approved:    false,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := p.roles.CreateEditorProfile(ctx, profile); err != nil {
			return fmt.Errorf("create editor profile: %w", err)
		}

	case domain.RoleAdmin:
		// Admin has no profile variant.
		return nil

	default:
		return fmt.Errorf("unknown role %q", role)
	}

	p.log.Info().Str("account_id", accountID).Str("role", string(role)).Msg("role profile provisioned")
	return nil
}
