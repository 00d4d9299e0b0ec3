package ports

import (
	"context"

	"github.com/agromarket/marketplace-api/internal/core/domain"
)

// RegisterUserInput is a validated sign-up request.
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Location *string
}

// UserService holds account use cases. actor is the resolved caller.
type UserService interface {
	Register(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	List(ctx context.Context, actor *domain.User, page Page) ([]*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id int64) (*domain.User, error)
}
