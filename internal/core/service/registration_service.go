package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

const (
	msgAccountReady     = "account created, you can sign in now"
	msgAccountPending   = "account created, pending approval"
	msgRoleAdded        = "role added to existing account"
	msgRoleAddedPending = "role added to existing account, pending approval"
)

// RegistrationService implements the registration flow: rate-limiter gate,
// field validation, then either attaching a role to an existing account or
// creating a new account with its first role attachment.
type RegistrationService struct {
	accounts    ports.AccountRepository
	roles       ports.RoleRepository
	provisioner ports.RoleProvisioner
	limiter     ports.RateLimiter
	scores      ports.ScoreQueue
	log         zerolog.Logger
}

func NewRegistrationService(
	accounts ports.AccountRepository,
	roles ports.RoleRepository,
	provisioner ports.RoleProvisioner,
	limiter ports.RateLimiter,
	scores ports.ScoreQueue,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		accounts:    accounts,
		roles:       roles,
		provisioner: provisioner,
		limiter:     limiter,
		scores:      scores,
		log:         log,
	}
}

func (s *RegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	// 1. Rate-limiter gate. Limiter backend errors fail open: losing one
	// window of protection beats refusing every registration.
	dec, err := s.limiter.Allow(ctx, in.Origin)
	if err != nil {
		s.log.Warn().Err(err).Str("origin", in.Origin).Msg("rate limiter check failed, allowing request")
	} else if !dec.Allowed {
		s.log.Info().Str("origin", in.Origin).Time("reset_at", dec.ResetAt).Msg("registration rate limited")
		return nil, domain.ErrRateLimited
	}

	// 2. Field validation, all violations at once.
	if ve := ValidateRegistration(in); ve != nil {
		return nil, ve
	}

	// 3. Branch on existing identity.
	email := normalizeEmail(in.Email)
	account, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.attachRole(ctx, account, in)
	case errors.Is(err, domain.ErrAccountNotFound):
		return s.createAccount(ctx, email, in)
	default:
		return nil, fmt.Errorf("find account by email: %w", err)
	}
}

// attachRole adds a new role to an existing account. The attachment and its
// profile succeed or fail as a unit: a provisioning failure removes the
// attachment created in this call.
func (s *RegistrationService) attachRole(ctx context.Context, account *domain.Account, in ports.RegisterInput) (*ports.RegisterResult, error) {
	if _, err := s.roles.FindActiveAttachment(ctx, account.ID, in.Role); err == nil {
		return nil, domain.ErrDuplicateRole
	} else if !errors.Is(err, domain.ErrAttachmentNotFound) {
		return nil, fmt.Errorf("find role attachment: %w", err)
	}

	if err := s.provisioner.ValidateData(in.Role, in.Data); err != nil {
		return nil, err
	}

	att, err := s.roles.CreateAttachment(ctx, &domain.RoleAttachment{
		AccountID:  account.ID,
		Role:       in.Role,
		Active:     true,
		AssignedBy: domain.AssignedBySelf,
		AssignedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create role attachment: %w", err)
	}

	if err := s.provisioner.Provision(ctx, account.ID, in.Role, in.Data); err != nil {
		if delErr := s.roles.DeleteAttachment(ctx, att.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("attachment_id", att.ID).Msg("failed to roll back role attachment")
		}
		return nil, fmt.Errorf("provision role profile: %w", err)
	}

	s.scores.Enqueue(account.ID)
	s.log.Info().
		Str("account_id", account.ID).
		Str("role", string(in.Role)).
		Msg("role added to existing account")

	pending := rolePendingApproval(in.Role)
	msg := msgRoleAdded
	if pending {
		msg = msgRoleAddedPending
	}
	return &ports.RegisterResult{
		Created:         false,
		PendingApproval: pending,
		Message:         msg,
		Account:         account,
		Role:            in.Role,
	}, nil
}

// createAccount creates a new account with its first role attachment. Role
// preconditions are checked before anything is written, so a rejected driver
// or editor registration leaves zero state behind. A unique-email violation
// from the store means we lost a race with a concurrent registration: the
// request is redirected into the attach-role branch instead of failing.
func (s *RegistrationService) createAccount(ctx context.Context, email string, in ports.RegisterInput) (*ports.RegisterResult, error) {
	if err := s.provisioner.ValidateData(in.Role, in.Data); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Email:        email,
		Name:         in.Name,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Active:       true,
		// Customers are usable immediately; every other role stays
		// unverified until external moderation acts.
		Verified:  in.Role == domain.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.accounts.Create(ctx, account)
	if errors.Is(err, domain.ErrAccountExists) {
		existing, findErr := s.accounts.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, fmt.Errorf("find account after unique violation: %w", findErr)
		}
		s.log.Info().Str("account_id", existing.ID).Msg("lost creation race, attaching role to existing account")
		return s.attachRole(ctx, existing, in)
	}
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	att, err := s.roles.CreateAttachment(ctx, &domain.RoleAttachment{
		AccountID:  created.ID,
		Role:       in.Role,
		Active:     true,
		AssignedBy: domain.AssignedBySelf,
		AssignedAt: now,
	})
	if err != nil {
		s.rollbackCreation(ctx, created.ID, "")
		return nil, fmt.Errorf("create first role attachment: %w", err)
	}

	if err := s.provisioner.Provision(ctx, created.ID, in.Role, in.Data); err != nil {
		s.rollbackCreation(ctx, created.ID, att.ID)
		return nil, fmt.Errorf("provision role profile: %w", err)
	}

	s.scores.Enqueue(created.ID)
	s.log.Info().
		Str("account_id", created.ID).
		Str("email", created.Email).
		Str("role", string(in.Role)).
		Bool("verified", created.Verified).
		Msg("account created")

	pending := rolePendingApproval(in.Role)
	msg := msgAccountReady
	if pending {
		msg = msgAccountPending
	}
	return &ports.RegisterResult{
		Created:         true,
		PendingApproval: pending,
		Message:         msg,
		Account:         created,
		Role:            in.Role,
	}, nil
}

// rollbackCreation removes the partial state of a failed registration. The
// account was never visible to its owner, so deleting it here does not
// violate the no-hard-delete lifecycle rule.
func (s *RegistrationService) rollbackCreation(ctx context.Context, accountID, attachmentID string) {
	if attachmentID != "" {
		if err := s.roles.DeleteAttachment(ctx, attachmentID); err != nil {
			s.log.Error().Err(err).Str("attachment_id", attachmentID).Msg("failed to roll back role attachment")
		}
	}
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		s.log.Error().Err(err).Str("account_id", accountID).Msg("failed to roll back account creation")
	}
}

// rolePendingApproval reports whether a role waits on external moderation
// after registration.
func rolePendingApproval(role domain.Role) bool {
	return role == domain.RoleDriver || role == domain.RoleEditor
}
