package ports

import (
	"context"

	"github.com/citymove/identity-service/internal/core/domain"
)

// AuthService authenticates a caller and issues a token identifying them.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
}
