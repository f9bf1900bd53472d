package httpx

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ariefcatur/go-streaming-store/internal/admin"
	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/blog"
	"github.com/ariefcatur/go-streaming-store/internal/redisx"
	"github.com/ariefcatur/go-streaming-store/internal/shop"
	"github.com/ariefcatur/go-streaming-store/internal/support"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeBlog struct {
	err   error
	query blog.Query
}

func (f *fakeBlog) Posts(_ context.Context, q blog.Query) (blog.PostPage, error) {
	f.query = q
	if f.err != nil {
		return blog.PostPage{}, f.err
	}
	return blog.PostPage{Posts: []blog.Post{{ID: "p1", Title: "Hola"}}}, nil
}

func (f *fakeBlog) Post(_ context.Context, id string) (blog.Post, error) {
	if id != "p1" {
		return blog.Post{}, apperr.NotFound("post", id)
	}
	return blog.Post{ID: "p1", Title: "Hola"}, nil
}

func (f *fakeBlog) Categories(context.Context) ([]blog.Category, error) { return nil, f.err }
func (f *fakeBlog) FAQs(context.Context) ([]blog.FAQ, error)            { return []blog.FAQ{}, f.err }

func (f *fakeBlog) Shell(context.Context) (blog.Shell, error) {
	return blog.Shell{Settings: blog.DefaultSettings()}, f.err
}

func (f *fakeBlog) Share(_ context.Context, id string, req blog.ShareRequest) (blog.ShareLink, error) {
	if req.Phone == "" {
		return blog.ShareLink{}, apperr.Validation("phone is required")
	}
	if _, err := f.Post(context.Background(), id); err != nil {
		return blog.ShareLink{}, err
	}
	return blog.ShareLink{RedirectURL: "https://wa.me/" + req.Phone}, nil
}

type fakeCatalog struct {
	products map[string]shop.Product
}

func (f *fakeCatalog) Snapshot(context.Context) (*shop.CatalogSnapshot, error) {
	s := &shop.CatalogSnapshot{}
	for _, p := range f.products {
		s.Products = append(s.Products, p)
	}
	return s, nil
}

func (f *fakeCatalog) Products(_ context.Context, q shop.ProductQuery) (shop.ProductPage, error) {
	return shop.ProductPage{}, nil
}

func (f *fakeCatalog) Product(_ context.Context, id string) (shop.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return shop.Product{}, apperr.NotFound("product", id)
	}
	return p, nil
}

func (f *fakeCatalog) Inquiry(_ context.Context, id string, u *shop.User) (string, error) {
	if _, err := f.Product(context.Background(), id); err != nil {
		return "", err
	}
	if u != nil {
		return "https://wa.me/1?text=" + u.Name, nil
	}
	return "https://wa.me/1?text=anon", nil
}

type fakeAccounts struct {
	users map[string]shop.User
}

func (f *fakeAccounts) Active(_ context.Context, id string) (shop.User, error) {
	u, ok := f.users[id]
	if !ok || !u.IsActive {
		return shop.User{}, shop.ErrLoginRequired
	}
	return u, nil
}

func (f *fakeAccounts) Register(_ context.Context, r shop.Registration) (shop.User, error) {
	if err := r.Validate(); err != nil {
		return shop.User{}, err
	}
	u := shop.User{ID: "u-new", Username: r.Username, Name: r.Name, IsActive: true}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeAccounts) Login(_ context.Context, username, password string) (shop.User, error) {
	for _, u := range f.users {
		if u.Username == username && password == "secret1" {
			return u, nil
		}
	}
	return shop.User{}, shop.ErrBadCredentials
}

type fakeSessions struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (f *fakeSessions) Create(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := "tok-" + userID
	f.tokens[t] = userID
	return t, nil
}

func (f *fakeSessions) Get(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[token]
	if !ok {
		return "", redisx.ErrNoSession
	}
	return id, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

type fakeBuyer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeBuyer) Buy(_ context.Context, u *shop.User, p shop.Product) (shop.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return shop.Receipt{}, f.err
	}
	return shop.Receipt{PurchaseID: "PUR-1", ProductID: p.ID, Product: p.Name, RemainingStock: p.Stock - 1}, nil
}

type fakeIdempotency struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (f *fakeIdempotency) Begin(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	if !ok {
		f.entries[key] = nil
		return nil, true, nil
	}
	if v == nil {
		return nil, false, redisx.ErrInFlight
	}
	return v, false, nil
}

func (f *fakeIdempotency) Finish(_ context.Context, key string, resp []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = resp
	return nil
}

func (f *fakeIdempotency) Abandon(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

type fakeSupport struct {
	err error
}

func (f *fakeSupport) Create(_ context.Context, userID, purchaseID, supportType string) (support.Request, error) {
	if f.err != nil {
		return support.Request{}, f.err
	}
	return support.Request{Ticket: support.Ticket{ID: "t1", UserID: userID, PurchaseID: purchaseID, SupportType: supportType, Status: support.StatusPending}}, nil
}

func (f *fakeSupport) PurchasesWithStatus(_ context.Context, userID string) ([]support.PurchaseStatus, error) {
	return []support.PurchaseStatus{{Purchase: shop.Purchase{ID: "PUR-1", UserID: userID}}}, nil
}

type fakeGate struct{}

func (fakeGate) Open(secret string) (string, time.Time, error) {
	if secret != "open-sesame" {
		return "", time.Time{}, admin.ErrWrongSecret
	}
	return "admin-token", time.Now().Add(time.Hour), nil
}

func (fakeGate) Check(token string) error {
	if token != "admin-token" {
		return admin.ErrBadToken
	}
	return nil
}

type fakeAdmin struct {
	saved   admin.Entity
	deleted string
}

func (f *fakeAdmin) Save(_ context.Context, e admin.Entity) (admin.Entity, error) {
	f.saved = e
	return e, nil
}

func (f *fakeAdmin) Delete(_ context.Context, kind admin.Kind, id string) error {
	if kind == admin.KindSettings {
		return apperr.Validation("settings cannot be deleted")
	}
	f.deleted = string(kind) + "/" + id
	return nil
}

func (f *fakeAdmin) List(_ context.Context, kind admin.Kind) (any, error) {
	return []string{string(kind)}, nil
}

func (f *fakeAdmin) Dashboard(context.Context) (admin.Dashboard, error) {
	return admin.Dashboard{}, nil
}

type fakeTickets struct{}

func (fakeTickets) List(context.Context) ([]support.Ticket, error) { return []support.Ticket{}, nil }

func (fakeTickets) Resolve(_ context.Context, id string) (support.Ticket, error) {
	if id == "done" {
		return support.Ticket{}, support.ErrAlreadyResolved
	}
	return support.Ticket{ID: id, Status: support.StatusResolved}, nil
}
