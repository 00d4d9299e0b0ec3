package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
)

func registerInput(email string) ports.RegisterUserInput {
	return ports.RegisterUserInput{
		Name:     "Ana Souza",
		Email:    email,
		Password: "abcdefg1",
		Role:     domain.RoleBuyer,
	}
}

func TestUserService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, plainHasher{}, nil, discardLogger)

	user, err := svc.Register(context.Background(), registerInput(" A@B.com "))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, "hashed:abcdefg1", user.PasswordHash)
	assert.Equal(t, domain.RoleBuyer, user.Role)
}

func TestUserService_Register_Duplicate(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), plainHasher{}, nil, discardLogger)

	_, err := svc.Register(context.Background(), registerInput("a@b.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerInput("A@b.com"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserService_Register_StoreConstraintMapsToEmailTaken(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = domain.ErrEmailTaken
	svc := NewUserService(repo, plainHasher{}, nil, discardLogger)

	_, err := svc.Register(context.Background(), registerInput("a@b.com"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserService_Register_ConcurrentSameEmail(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), plainHasher{}, nil, discardLogger)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), registerInput("race@b.com"))
		}(i)
	}
	wg.Wait()

	var ok, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrEmailTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, taken)
}

func TestUserService_Register_GuardRejectsHeldEmail(t *testing.T) {
	guard := newStubGuard()
	guard.claimed["a@b.com"] = true
	repo := newStubUserRepo()
	svc := NewUserService(repo, plainHasher{}, guard, discardLogger)

	_, err := svc.Register(context.Background(), registerInput("a@b.com"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Empty(t, repo.byID)
}

func TestUserService_Register_GuardReleasesClaim(t *testing.T) {
	guard := newStubGuard()
	svc := NewUserService(newStubUserRepo(), plainHasher{}, guard, discardLogger)

	_, err := svc.Register(context.Background(), registerInput("a@b.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.com"}, guard.released)
	assert.Empty(t, guard.claimed)
}

func TestUserService_Register_GuardErrorIsNonFatal(t *testing.T) {
	guard := newStubGuard()
	guard.claimErr = errors.New("redis timeout")
	svc := NewUserService(newStubUserRepo(), plainHasher{}, guard, discardLogger)

	_, err := svc.Register(context.Background(), registerInput("a@b.com"))
	require.NoError(t, err)
}

func TestUserService_Register_HashFailure(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), plainHasher{err: errors.New("boom")}, nil, discardLogger)

	_, err := svc.Register(context.Background(), registerInput("a@b.com"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserService_List_AdminOnly(t *testing.T) {
	repo := newStubUserRepo()
	admin := repo.seed(&domain.User{ID: 1, Email: "root@b.com", Role: domain.RoleAdmin})
	buyer := repo.seed(&domain.User{ID: 2, Email: "buyer@b.com", Role: domain.RoleBuyer})
	svc := NewUserService(repo, plainHasher{}, nil, discardLogger)

	users, err := svc.List(context.Background(), admin, ports.Page{Skip: 0, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = svc.List(context.Background(), admin, ports.Page{Skip: 1, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = svc.List(context.Background(), buyer, ports.Page{Limit: 100})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserService_Delete(t *testing.T) {
	repo := newStubUserRepo()
	admin := repo.seed(&domain.User{ID: 1, Email: "root@b.com", Role: domain.RoleAdmin})
	repo.seed(&domain.User{ID: 2, Email: "buyer@b.com", Role: domain.RoleBuyer})
	svc := NewUserService(repo, plainHasher{}, nil, discardLogger)

	_, err := svc.Delete(context.Background(), admin, admin.ID)
	assert.ErrorIs(t, err, domain.ErrSelfDelete)

	deleted, err := svc.Delete(context.Background(), admin, 2)
	require.NoError(t, err)
	assert.Equal(t, "buyer@b.com", deleted.Email)

	_, err = svc.Delete(context.Background(), admin, 2)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = svc.Delete(context.Background(), admin, 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_Delete_NonAdmin(t *testing.T) {
	repo := newStubUserRepo()
	buyer := repo.seed(&domain.User{ID: 2, Email: "buyer@b.com", Role: domain.RoleBuyer})
	svc := NewUserService(repo, plainHasher{}, nil, discardLogger)

	_, err := svc.Delete(context.Background(), buyer, buyer.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
