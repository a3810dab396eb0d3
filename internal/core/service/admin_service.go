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

// AdminService runs bulk account and role administration. Preconditions
// (acting admin, no self-targeting, all targets exist, role present for
// role actions) fail the whole call before any mutation; the action itself
// then runs per target with independent outcomes.
type AdminService struct {
	accounts    ports.AccountRepository
	roles       ports.RoleRepository
	provisioner ports.RoleProvisioner
	scores      ports.ScoreQueue
	log         zerolog.Logger
}

func NewAdminService(
	accounts ports.AccountRepository,
	roles ports.RoleRepository,
	provisioner ports.RoleProvisioner,
	scores ports.ScoreQueue,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		accounts:    accounts,
		roles:       roles,
		provisioner: provisioner,
		scores:      scores,
		log:         log,
	}
}

func (s *AdminService) BulkAction(ctx context.Context, in ports.BulkActionInput) ([]ports.TargetResult, error) {
	if !in.Action.Valid() {
		return nil, domain.ErrUnknownAction
	}
	if in.Action.RequiresRole() && !in.Role.Valid() {
		return nil, domain.ErrRoleRequired
	}
	if len(in.TargetIDs) == 0 {
		ve := &domain.ValidationError{}
		ve.Add("target_ids", "at least one target is required")
		return nil, ve
	}

	// The actor must hold an active admin attachment.
	if _, err := s.roles.FindActiveAttachment(ctx, in.ActorID, domain.RoleAdmin); err != nil {
		if errors.Is(err, domain.ErrAttachmentNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("check actor role: %w", err)
	}

	// Self-inclusion fails the entire call with zero mutations, whatever
	// the action.
	for _, id := range in.TargetIDs {
		if id == in.ActorID {
			return nil, domain.ErrSelfTarget
		}
	}

	// Existence check is all-or-nothing before any mutation.
	found, err := s.accounts.FindByIDs(ctx, in.TargetIDs)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	byID := make(map[string]*domain.Account, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	for _, id := range in.TargetIDs {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrTargetNotFound, id)
		}
	}

	// Per-target execution: independent outcomes, no cross-target rollback.
	results := make([]ports.TargetResult, 0, len(in.TargetIDs))
	for _, id := range in.TargetIDs {
		results = append(results, s.applyAction(ctx, in, id))
	}

	s.log.Info().
		Str("actor_id", in.ActorID).
		Str("action", string(in.Action)).
		Int("targets", len(in.TargetIDs)).
		Msg("bulk action completed")

	return results, nil
}

func (s *AdminService) applyAction(ctx context.Context, in ports.BulkActionInput, targetID string) ports.TargetResult {
	var (
		status string
		err    error
	)

	switch in.Action {
	case ports.ActionActivate:
		status, err = "activated", s.accounts.SetActive(ctx, targetID, true)
	case ports.ActionDeactivate:
		status, err = "deactivated", s.accounts.SetActive(ctx, targetID, false)
	case ports.ActionVerify:
		status, err = "verified", s.accounts.SetVerified(ctx, targetID, true)
	case ports.ActionAssignRole:
		status, err = "role_assigned", s.assignRole(ctx, targetID, in.Role, in.ActorID)
	case ports.ActionRevokeRole:
		status, err = "role_revoked", s.revokeRole(ctx, targetID, in.Role)
	}

	if err != nil {
		s.log.Warn().Err(err).
			Str("target_id", targetID).
			Str("action", string(in.Action)).
			Msg("bulk action target failed")
		return ports.TargetResult{AccountID: targetID, Status: "error", Error: err.Error()}
	}
	return ports.TargetResult{AccountID: targetID, Status: status}
}

// assignRole attaches a role on behalf of an admin and provisions its
// profile with defaults (no role data is supplied on admin grants; driver
// and editor profiles start empty and unapproved).
func (s *AdminService) assignRole(ctx context.Context, targetID string, role domain.Role, actorID string) error {
	if _, err := s.roles.FindActiveAttachment(ctx, targetID, role); err == nil {
		return domain.ErrDuplicateRole
	} else if !errors.Is(err, domain.ErrAttachmentNotFound) {
		return fmt.Errorf("find role attachment: %w", err)
	}

	att, err := s.roles.CreateAttachment(ctx, &domain.RoleAttachment{
		AccountID:  targetID,
		Role:       role,
		Active:     true,
		AssignedBy: actorID,
		AssignedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("create role attachment: %w", err)
	}

	if err := s.provisioner.Provision(ctx, targetID, role, ports.RoleData{}); err != nil {
		if delErr := s.roles.DeleteAttachment(ctx, att.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("attachment_id", att.ID).Msg("failed to roll back role attachment")
		}
		return fmt.Errorf("provision role profile: %w", err)
	}

	s.scores.Enqueue(targetID)
	return nil
}

// revokeRole soft-deactivates the active attachment. The profile is kept:
// deactivating an attachment never deletes role data.
func (s *AdminService) revokeRole(ctx context.Context, targetID string, role domain.Role) error {
	att, err := s.roles.FindActiveAttachment(ctx, targetID, role)
	if err != nil {
		if errors.Is(err, domain.ErrAttachmentNotFound) {
			return fmt.Errorf("role %s is not active for this account", role)
		}
		return fmt.Errorf("find role attachment: %w", err)
	}
	if err := s.roles.DeactivateAttachment(ctx, att.ID); err != nil {
		return fmt.Errorf("deactivate attachment: %w", err)
	}
	return nil
}
