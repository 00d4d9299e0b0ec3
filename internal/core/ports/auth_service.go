package ports

import (
	"context"

	"github.com/agromarket/marketplace-api/internal/core/domain"
)

// AuthService verifies credentials and resolves bearer tokens to accounts.
type AuthService interface {
	// Login returns a signed token or domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, error)
	// Authenticate returns the token's account or domain.ErrUnauthenticated.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
