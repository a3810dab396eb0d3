package service

import (
	"context"
	"fmt"
	"time"

	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories shared by the service tests.
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	byID      map[string]*domain.Account
	nextID    int
	createErr error
	// failCreateWithExists simulates losing the unique-email race: the first
	// Create returns ErrAccountExists while racerAccount becomes visible to
	// FindByEmail.
	failCreateWithExists bool
	racerAccount         *domain.Account
	// findMisses makes the next N FindByEmail calls report not-found,
	// simulating the window before a concurrent racer committed.
	findMisses int
	deleted    []string
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	if r.findMisses > 0 {
		r.findMisses--
		return nil, domain.ErrAccountNotFound
	}
	if r.racerAccount != nil && r.racerAccount.Email == email {
		return cloneAccount(r.racerAccount), nil
	}
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, id := range ids {
		if a, ok := r.byID[id]; ok {
			out = append(out, cloneAccount(a))
		}
	}
	return out, nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if r.failCreateWithExists {
		r.failCreateWithExists = false
		return nil, domain.ErrAccountExists
	}
	for _, a := range r.byID {
		if a.Email == account.Email {
			return nil, domain.ErrAccountExists
		}
	}
	clone := cloneAccount(account)
	r.nextID++
	clone.ID = fmt.Sprintf("acc_%d", r.nextID)
	r.byID[clone.ID] = clone
	return cloneAccount(clone), nil
}

func (r *stubAccountRepo) Update(_ context.Context, account *domain.Account) error {
	r.byID[account.ID] = cloneAccount(account)
	return nil
}

func (r *stubAccountRepo) UpdateScore(_ context.Context, id string, score int) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.CompletionScore = score
	return nil
}

func (r *stubAccountRepo) SetActive(_ context.Context, id string, active bool) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Active = active
	return nil
}

func (r *stubAccountRepo) SetVerified(_ context.Context, id string, verified bool) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Verified = verified
	return nil
}

func (r *stubAccountRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubAccountRepo) Count(_ context.Context, active *bool) (int64, error) {
	var n int64
	for _, a := range r.byID {
		if active == nil || a.Active == *active {
			n++
		}
	}
	return n, nil
}

type stubRoleRepo struct {
	attachments map[string]*domain.RoleAttachment
	customers   map[string]*domain.CustomerProfile
	drivers     map[string]*domain.DriverProfile
	editors     map[string]*domain.EditorProfile
	nextID      int

	attachErr   error
	profileErr  error
	deletedAtts []string
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{
		attachments: make(map[string]*domain.RoleAttachment),
		customers:   make(map[string]*domain.CustomerProfile),
		drivers:     make(map[string]*domain.DriverProfile),
		editors:     make(map[string]*domain.EditorProfile),
	}
}

func (r *stubRoleRepo) FindActiveAttachment(_ context.Context, accountID string, role domain.Role) (*domain.RoleAttachment, error) {
	for _, att := range r.attachments {
		if att.AccountID == accountID && att.Role == role && att.Active {
			clone := *att
			return &clone, nil
		}
	}
	return nil, domain.ErrAttachmentNotFound
}

func (r *stubRoleRepo) ListAttachments(_ context.Context, accountID string) ([]*domain.RoleAttachment, error) {
	var out []*domain.RoleAttachment
	for _, att := range r.attachments {
		if att.AccountID == accountID {
			clone := *att
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubRoleRepo) CreateAttachment(_ context.Context, att *domain.RoleAttachment) (*domain.RoleAttachment, error) {
	if r.attachErr != nil {
		return nil, r.attachErr
	}
	clone := *att
	r.nextID++
	clone.ID = fmt.Sprintf("att_%d", r.nextID)
	r.attachments[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubRoleRepo) DeactivateAttachment(_ context.Context, id string) error {
	att, ok := r.attachments[id]
	if !ok {
		return domain.ErrAttachmentNotFound
	}
	att.Active = false
	now := time.Now().UTC()
	att.DeactivatedAt = &now
	return nil
}

func (r *stubRoleRepo) DeleteAttachment(_ context.Context, id string) error {
	delete(r.attachments, id)
	r.deletedAtts = append(r.deletedAtts, id)
	return nil
}

func (r *stubRoleRepo) FindCustomerProfile(_ context.Context, accountID string) (*domain.CustomerProfile, error) {
	p, ok := r.customers[accountID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubRoleRepo) FindDriverProfile(_ context.Context, accountID string) (*domain.DriverProfile, error) {
	p, ok := r.drivers[accountID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubRoleRepo) FindEditorProfile(_ context.Context, accountID string) (*domain.EditorProfile, error) {
	p, ok := r.editors[accountID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubRoleRepo) FindProfiles(_ context.Context, accountID string) (*domain.RoleProfiles, error) {
	out := &domain.RoleProfiles{}
	if p, ok := r.customers[accountID]; ok {
		clone := *p
		out.Customer = &clone
	}
	if p, ok := r.drivers[accountID]; ok {
		clone := *p
		out.Driver = &clone
	}
	if p, ok := r.editors[accountID]; ok {
		clone := *p
		out.Editor = &clone
	}
	return out, nil
}

func (r *stubRoleRepo) CreateCustomerProfile(_ context.Context, p *domain.CustomerProfile) error {
	if r.profileErr != nil {
		return r.profileErr
	}
	clone := *p
	r.customers[p.AccountID] = &clone
	return nil
}

func (r *stubRoleRepo) CreateDriverProfile(_ context.Context, p *domain.DriverProfile) error {
	if r.profileErr != nil {
		return r.profileErr
	}
	clone := *p
	r.drivers[p.AccountID] = &clone
	return nil
}

func (r *stubRoleRepo) CreateEditorProfile(_ context.Context, p *domain.EditorProfile) error {
	if r.profileErr != nil {
		return r.profileErr
	}
	clone := *p
	r.editors[p.AccountID] = &clone
	return nil
}

func (r *stubRoleRepo) UpdateDriverProfile(_ context.Context, p *domain.DriverProfile) error {
	clone := *p
	r.drivers[p.AccountID] = &clone
	return nil
}

// activeAttachmentCount counts active attachments for (account, role).
func (r *stubRoleRepo) activeAttachmentCount(accountID string, role domain.Role) int {
	n := 0
	for _, att := range r.attachments {
		if att.AccountID == accountID && att.Role == role && att.Active {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Limiter and queue stubs
// ---------------------------------------------------------------------------

type stubLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (l *stubLimiter) Allow(_ context.Context, _ string) (ports.RateLimitDecision, error) {
	l.calls++
	if l.err != nil {
		return ports.RateLimitDecision{}, l.err
	}
	return ports.RateLimitDecision{Allowed: l.allowed, ResetAt: time.Now().Add(time.Minute)}, nil
}

func allowAllLimiter() *stubLimiter { return &stubLimiter{allowed: true} }

type stubScoreQueue struct {
	enqueued []string
}

func (q *stubScoreQueue) Enqueue(accountID string) {
	q.enqueued = append(q.enqueued, accountID)
}
