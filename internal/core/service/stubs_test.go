package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	byID      map[int64]*domain.User
	nextID    int64
	findErr   error // if set, FindByEmail returns this error
	createErr error // if set, Create returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	c := cloneUser(u)
	c.ID = r.nextID
	r.byID[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, page ports.Page) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []*domain.User{}
	for i, id := range ids {
		if i < page.Skip || len(out) >= page.Limit {
			continue
		}
		out = append(out, cloneUser(r.byID[id]))
	}
	return out, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return u, nil
}

// seed stores u as-is, keeping its ID.
func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = cloneUser(u)
	if u.ID > r.nextID {
		r.nextID = u.ID
	}
	return u
}

type stubProductRepo struct {
	byID      map[int64]*domain.Product
	nextID    int64
	createErr error
	updates   int
	deletes   int
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: make(map[int64]*domain.Product)}
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	return &c
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	c := cloneProduct(p)
	c.ID = r.nextID
	r.byID[c.ID] = c
	return cloneProduct(c), nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *stubProductRepo) List(_ context.Context, page ports.Page) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for id := int64(1); id <= r.nextID; id++ {
		if p, ok := r.byID[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	if page.Skip >= len(out) {
		return []*domain.Product{}, nil
	}
	out = out[page.Skip:]
	if len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

func (r *stubProductRepo) ListByOwner(_ context.Context, ownerID int64) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for id := int64(1); id <= r.nextID; id++ {
		if p, ok := r.byID[id]; ok && p.OwnerID == ownerID {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	r.updates++
	patch.Apply(p)
	return cloneProduct(p), nil
}

func (r *stubProductRepo) Delete(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	r.deletes++
	delete(r.byID, id)
	return p, nil
}

// ---------------------------------------------------------------------------
// Security stubs
// ---------------------------------------------------------------------------

// plainHasher marks hashes with a prefix so tests can assert hashing happened.
type plainHasher struct{ err error }

func (h plainHasher) Hash(p string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + p, nil
}

func (plainHasher) Verify(p, hash string) bool { return hash == "hashed:"+p }

var errBadToken = errors.New("bad token")

// stubTokens issues "tok:<subject>" and rejects anything else.
type stubTokens struct{}

func (stubTokens) Issue(sub string) (string, error) { return "tok:" + sub, nil }

func (stubTokens) Verify(token string) (string, error) {
	sub, ok := strings.CutPrefix(token, "tok:")
	if !ok {
		return "", errBadToken
	}
	return sub, nil
}

type stubGuard struct {
	claimed  map[string]bool
	claimErr error
	released []string
}

func newStubGuard() *stubGuard { return &stubGuard{claimed: make(map[string]bool)} }

func (g *stubGuard) Claim(_ context.Context, email string) (bool, error) {
	if g.claimErr != nil {
		return false, g.claimErr
	}
	if g.claimed[email] {
		return false, nil
	}
	g.claimed[email] = true
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, email string) error {
	delete(g.claimed, email)
	g.released = append(g.released, email)
	return nil
}
