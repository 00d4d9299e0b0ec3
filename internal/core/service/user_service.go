package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
)

// UserService implements registration and account administration.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	guard  ports.RegistrationGuard
	log    zerolog.Logger
}

// NewUserService wires the service. guard may be nil.
func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, guard ports.RegistrationGuard, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, guard: guard, log: log}
}

// Register creates an account. An existing email yields domain.ErrEmailTaken
// whether it is caught by the pre-check, the guard or the store constraint.
func (s *UserService) Register(ctx context.Context, in ports.RegisterUserInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)

	if s.guard != nil {
		claimed, err := s.guard.Claim(ctx, email)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("registration guard unavailable, relying on store constraint")
		case !claimed:
			return nil, domain.ErrEmailTaken
		default:
			defer func() {
				if err := s.guard.Release(context.WithoutCancel(ctx), email); err != nil {
					s.log.Warn().Err(err).Msg("failed to release registration claim")
				}
			}()
		}
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Location:     in.Location,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// List returns a page of accounts to an administrator.
func (s *UserService) List(ctx context.Context, actor *domain.User, page ports.Page) ([]*domain.User, error) {
	if actor == nil || !actor.Role.CanAdministerUsers() {
		return nil, domain.ErrForbidden
	}
	users, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Delete removes another account. Administrators cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id int64) (*domain.User, error) {
	if actor == nil || !actor.Role.CanAdministerUsers() {
		return nil, domain.ErrForbidden
	}
	if id == actor.ID {
		return nil, domain.ErrSelfDelete
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user %d: %w", id, err)
	}

	s.log.Info().Int64("user_id", id).Int64("admin_id", actor.ID).Msg("user deleted")
	return deleted, nil
}
