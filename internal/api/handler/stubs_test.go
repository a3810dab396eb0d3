package handler

import (
	"context"

	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

type stubRegistrar struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error)
}

func (s *stubRegistrar) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	return s.registerFn(ctx, in)
}

type stubAuthService struct {
	loginFn func(ctx context.Context, email, password string) (string, *domain.Account, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	return s.loginFn(ctx, email, password)
}

type stubAdminService struct {
	bulkFn func(ctx context.Context, in ports.BulkActionInput) ([]ports.TargetResult, error)
}

func (s *stubAdminService) BulkAction(ctx context.Context, in ports.BulkActionInput) ([]ports.TargetResult, error) {
	return s.bulkFn(ctx, in)
}

type stubScoreService struct {
	scoreFn func(ctx context.Context, accountID string) (int, error)
}

func (s *stubScoreService) Score(ctx context.Context, accountID string) (int, error) {
	return s.scoreFn(ctx, accountID)
}

// stubAccountRepo serves the account handler tests; only lookups are used.
type stubAccountRepo struct {
	byID map[string]*domain.Account
}

func (s *stubAccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for _, a := range s.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccountRepo) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccountRepo) FindByIDs(ctx context.Context, ids []string) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, id := range ids {
		if a, ok := s.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubAccountRepo) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	return account, nil
}

func (s *stubAccountRepo) Update(ctx context.Context, account *domain.Account) error { return nil }

func (s *stubAccountRepo) UpdateScore(ctx context.Context, id string, score int) error { return nil }

func (s *stubAccountRepo) SetActive(ctx context.Context, id string, active bool) error { return nil }

func (s *stubAccountRepo) SetVerified(ctx context.Context, id string, verified bool) error {
	return nil
}

func (s *stubAccountRepo) Delete(ctx context.Context, id string) error { return nil }

func (s *stubAccountRepo) Count(ctx context.Context, active *bool) (int64, error) {
	return int64(len(s.byID)), nil
}

// stubRoleRepo serves the account handler tests; only ListAttachments is used.
type stubRoleRepo struct {
	attachments map[string][]*domain.RoleAttachment
}

func (s *stubRoleRepo) FindActiveAttachment(ctx context.Context, accountID string, role domain.Role) (*domain.RoleAttachment, error) {
	for _, att := range s.attachments[accountID] {
		if att.Role == role && att.Active {
			return att, nil
		}
	}
	return nil, domain.ErrAttachmentNotFound
}

func (s *stubRoleRepo) ListAttachments(ctx context.Context, accountID string) ([]*domain.RoleAttachment, error) {
	return s.attachments[accountID], nil
}

func (s *stubRoleRepo) CreateAttachment(ctx context.Context, att *domain.RoleAttachment) (*domain.RoleAttachment, error) {
	return att, nil
}

func (s *stubRoleRepo) DeactivateAttachment(ctx context.Context, id string) error { return nil }

func (s *stubRoleRepo) DeleteAttachment(ctx context.Context, id string) error { return nil }

func (s *stubRoleRepo) FindCustomerProfile(ctx context.Context, accountID string) (*domain.CustomerProfile, error) {
	return nil, domain.ErrProfileNotFound
}

func (s *stubRoleRepo) FindDriverProfile(ctx context.Context, accountID string) (*domain.DriverProfile, error) {
	return nil, domain.ErrProfileNotFound
}

func (s *stubRoleRepo) FindEditorProfile(ctx context.Context, accountID string) (*domain.EditorProfile, error) {
	return nil, domain.ErrProfileNotFound
}

func (s *stubRoleRepo) FindProfiles(ctx context.Context, accountID string) (*domain.RoleProfiles, error) {
	return &domain.RoleProfiles{}, nil
}

func (s *stubRoleRepo) CreateCustomerProfile(ctx context.Context, p *domain.CustomerProfile) error {
	return nil
}

func (s *stubRoleRepo) CreateDriverProfile(ctx context.Context, p *domain.DriverProfile) error {
	return nil
}

func (s *stubRoleRepo) CreateEditorProfile(ctx context.Context, p *domain.EditorProfile) error {
	return nil
}

func (s *stubRoleRepo) UpdateDriverProfile(ctx context.Context, p *domain.DriverProfile) error {
	return nil
}
