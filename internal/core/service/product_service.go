package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
)

type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

func (s *ProductService) List(ctx context.Context, page ports.Page) ([]*domain.Product, error) {
	products, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.find(ctx, id)
}

// ListMine returns the caller's own listings. Only producers own listings.
func (s *ProductService) ListMine(ctx context.Context, actor *domain.User) ([]*domain.Product, error) {
	if actor == nil || !actor.Role.CanManageProducts() {
		return nil, domain.ErrForbidden
	}
	products, err := s.repo.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list products of %d: %w", actor.ID, err)
	}
	return products, nil
}

func (s *ProductService) Create(ctx context.Context, actor *domain.User, in ports.CreateProductInput) (*domain.Product, error) {
	if actor == nil || !actor.Role.CanManageProducts() {
		return nil, domain.ErrForbidden
	}

	created, err := s.repo.Create(ctx, &domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Category:    in.Category,
		Location:    in.Location,
		OwnerID:     actor.ID,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", actor.ID).Msg("failed to create product")
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info().Int64("product_id", created.ID).Int64("owner_id", actor.ID).Msg("product created")
	return created, nil
}

// Update applies a sparse patch to a listing the caller owns.
func (s *ProductService) Update(ctx context.Context, actor *domain.User, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	current, err := s.authorizeOwner(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	s.logger.Info().Int64("product_id", id).Int64("owner_id", actor.ID).Msg("product updated")
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, actor *domain.User, id int64) (*domain.Product, error) {
	if _, err := s.authorizeOwner(ctx, actor, id); err != nil {
		return nil, err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("delete product %d: %w", id, err)
	}

	s.logger.Info().Int64("product_id", id).Int64("owner_id", actor.ID).Msg("product deleted")
	return deleted, nil
}

// authorizeOwner checks, in order, that the product exists, that the caller
// is a producer and that the caller owns it. The first failure wins.
func (s *ProductService) authorizeOwner(ctx context.Context, actor *domain.User, id int64) (*domain.Product, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.Role.CanManageProducts() {
		return nil, domain.ErrForbidden
	}
	if !product.OwnedBy(actor) {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

func (s *ProductService) find(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return product, nil
}
