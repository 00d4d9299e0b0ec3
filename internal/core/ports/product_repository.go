package ports

import (
	"context"

	"github.com/agromarket/marketplace-api/internal/core/domain"
)

// ProductRepository persists listings.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	// FindByID returns domain.ErrProductNotFound when absent.
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, page Page) ([]*domain.Product, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Product, error)
	// Update applies the Set fields of patch and returns the stored result.
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id int64) (*domain.Product, error)
}
