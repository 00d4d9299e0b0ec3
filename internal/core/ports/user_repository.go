package ports

import (
	"context"

	"github.com/agromarket/marketplace-api/internal/core/domain"
)

// Page is an offset/limit window over a listing.
type Page struct {
	Skip  int
	Limit int
}

// UserRepository persists accounts. Implementations enforce email uniqueness
// and translate their own errors into domain errors.
type UserRepository interface {
	// Create assigns an ID and returns the stored user.
	// Returns domain.ErrEmailTaken on a uniqueness violation.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, page Page) ([]*domain.User, error)
	// Delete removes the user and the products they own, returning the
	// removed user or domain.ErrUserNotFound.
	Delete(ctx context.Context, id int64) (*domain.User, error)
}
