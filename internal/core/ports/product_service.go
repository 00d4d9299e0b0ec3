package ports

import (
	"context"

	"github.com/agromarket/marketplace-api/internal/core/domain"
)

// CreateProductInput is a validated listing.
type CreateProductInput struct {
	Name        string
	Description *string
	Price       domain.Money
	Quantity    int
	Category    domain.Category
	Location    *string
}

// ProductService holds catalogue use cases. Mutations on an existing product
// check existence, then role, then ownership.
type ProductService interface {
	List(ctx context.Context, page Page) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	ListMine(ctx context.Context, actor *domain.User) ([]*domain.Product, error)
	Create(ctx context.Context, actor *domain.User, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, actor *domain.User, id int64, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, actor *domain.User, id int64) (*domain.Product, error)
}
