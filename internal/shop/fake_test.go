package shop

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/feed"
)

// memStore is an in-memory PurchaseStore, AccountStore and CatalogStore.
type memStore struct {
	mu        sync.Mutex
	stock     map[string]int
	purchases map[string]Purchase
	users     map[string]User
	products  []Product

	insertErr    error
	decrementErr error
	deleteErr    error
	stockErr     error
	writes       int
}

func newMemStore() *memStore {
	return &memStore{stock: map[string]int{}, purchases: map[string]Purchase{}, users: map[string]User{}}
}

func (m *memStore) Stock(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stockErr != nil {
		return 0, m.stockErr
	}
	s, ok := m.stock[id]
	if !ok {
		return 0, apperr.NotFound("product", id)
	}
	return s, nil
}

func (m *memStore) InsertPurchase(_ context.Context, p Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.writes++
	m.purchases[p.ID] = p
	return nil
}

func (m *memStore) DecrementStock(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.decrementErr != nil {
		return 0, m.decrementErr
	}
	if m.stock[id] <= 0 {
		return 0, ErrSoldOut
	}
	m.writes++
	m.stock[id]--
	return m.stock[id], nil
}

func (m *memStore) DeletePurchase(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.purchases, id)
	return nil
}

func (m *memStore) CreateUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Username == u.Username {
			return apperr.Conflict("username %s is already taken", u.Username)
		}
		if x.Email == u.Email {
			return apperr.Conflict("email %s is already registered", u.Email)
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) UserByUsername(_ context.Context, username string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, apperr.NotFound("user", username)
}

func (m *memStore) UserByID(_ context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, apperr.NotFound("user", id)
	}
	return u, nil
}

func (m *memStore) ActiveProducts(context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Product(nil), m.products...), nil
}

func (m *memStore) ActiveCategories(context.Context) ([]Category, error) {
	return []Category{{ID: "c-video", Name: "Video", Slug: "video", IsActive: true}}, nil
}

// recorder captures published changes.
type recorder struct {
	mu      sync.Mutex
	changes []string
}

func (r *recorder) Publish(_ context.Context, table string, op feed.Op, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, table+":"+string(op))
}

var errStore = errors.New("store unavailable")

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }
