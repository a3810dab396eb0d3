package ports

import (
	"context"

	"github.com/citymove/identity-service/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// FindByEmail looks up an account by its case-insensitive email.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// FindByIDs returns the accounts for the given ids; missing ids are
	// simply absent from the result (the caller decides whether that is
	// an error).
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	UpdateScore(ctx context.Context, id string, score int) error
	SetActive(ctx context.Context, id string, active bool) error
	SetVerified(ctx context.Context, id string, verified bool) error
	// Delete removes an account record. Only used to roll back a partial
	// creation within the same registration call; accounts are otherwise
	// never hard-deleted.
	Delete(ctx context.Context, id string) error
	// Count returns the number of accounts, optionally filtered by the
	// active flag (nil = all).
	Count(ctx context.Context, active *bool) (int64, error)
}
