package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
)

// Store keeps users and products in process memory. Both repositories share
// one lock so deleting a producer and its listings is a single step.
type Store struct {
	mu sync.RWMutex

	users   map[int64]*domain.User
	byEmail map[string]int64
	userSeq int64

	products   map[int64]*domain.Product
	productSeq int64
}

func NewStore() *Store {
	return &Store{
		users:    make(map[int64]*domain.User),
		byEmail:  make(map[string]int64),
		products: make(map[int64]*domain.Product),
	}
}

// Users returns the store's ports.UserRepository.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Products returns the store's ports.ProductRepository.
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func copyUser(u *domain.User) *domain.User {
	c := *u
	if u.Location != nil {
		loc := *u.Location
		c.Location = &loc
	}
	return &c
}

func copyProduct(p *domain.Product) *domain.Product {
	c := *p
	if p.Description != nil {
		d := *p.Description
		c.Description = &d
	}
	if p.Location != nil {
		loc := *p.Location
		c.Location = &loc
	}
	return &c
}

// window slices ids (ascending) to page.
func window(ids []int64, page ports.Page) []int64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if page.Skip >= len(ids) {
		return nil
	}
	ids = ids[page.Skip:]
	if page.Limit >= 0 && len(ids) > page.Limit {
		ids = ids[:page.Limit]
	}
	return ids
}

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	s.userSeq++
	stored := copyUser(user)
	stored.ID = s.userSeq
	s.users[stored.ID] = stored
	s.byEmail[stored.Email] = stored.ID
	return copyUser(stored), nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(r.s.users[id]), nil
}

func (r *UserRepository) List(_ context.Context, page ports.Page) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]int64, 0, len(r.s.users))
	for id := range r.s.users {
		ids = append(ids, id)
	}
	out := []*domain.User{}
	for _, id := range window(ids, page) {
		out = append(out, copyUser(r.s.users[id]))
	}
	return out, nil
}

// Delete removes the user and every product they own.
func (r *UserRepository) Delete(_ context.Context, id int64) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	for pid, p := range s.products {
		if p.OwnerID == id {
			delete(s.products, pid)
		}
	}
	delete(s.users, id)
	delete(s.byEmail, u.Email)
	return copyUser(u), nil
}

type ProductRepository struct {
	s *Store
}

func (r *ProductRepository) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[product.OwnerID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	s.productSeq++
	stored := copyProduct(product)
	stored.ID = s.productSeq
	s.products[stored.ID] = stored
	return copyProduct(stored), nil
}

func (r *ProductRepository) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return copyProduct(p), nil
}

func (r *ProductRepository) List(_ context.Context, page ports.Page) ([]*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]int64, 0, len(r.s.products))
	for id := range r.s.products {
		ids = append(ids, id)
	}
	out := []*domain.Product{}
	for _, id := range window(ids, page) {
		out = append(out, copyProduct(r.s.products[id]))
	}
	return out, nil
}

func (r *ProductRepository) ListByOwner(_ context.Context, ownerID int64) ([]*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []int64
	for id, p := range r.s.products {
		if p.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	out := []*domain.Product{}
	for _, id := range window(ids, ports.Page{Limit: -1}) {
		out = append(out, copyProduct(r.s.products[id]))
	}
	return out, nil
}

func (r *ProductRepository) Update(_ context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	next := copyProduct(p)
	patch.Apply(next)
	r.s.products[id] = next
	return copyProduct(next), nil
}

func (r *ProductRepository) Delete(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	delete(r.s.products, id)
	return copyProduct(p), nil
}
