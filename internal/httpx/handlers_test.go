package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-streaming-store/internal/admin"
	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/shop"
)

type testEnv struct {
	router  *chi.Mux
	blog    *fakeBlog
	buyer   *fakeBuyer
	idem    *fakeIdempotency
	support *fakeSupport
	admin   *fakeAdmin
}

func newTestEnv() *testEnv {
	log := discardLogger()
	env := &testEnv{
		router:  NewRouter(log),
		blog:    &fakeBlog{},
		buyer:   &fakeBuyer{},
		idem:    &fakeIdempotency{entries: map[string][]byte{}},
		support: &fakeSupport{},
		admin:   &fakeAdmin{},
	}
	accounts := &fakeAccounts{users: map[string]shop.User{
		"u1": {ID: "u1", Username: "ana", Name: "Ana", IsActive: true},
		"u2": {ID: "u2", Username: "old", Name: "Old", IsActive: false},
	}}
	sessions := &fakeSessions{tokens: map[string]string{"tok-u1": "u1", "tok-u2": "u2"}}
	catalog := &fakeCatalog{products: map[string]shop.Product{
		"prod-1": {ID: "prod-1", Name: "Netflix", Stock: 3, IsActive: true},
	}}

	(&BlogHandler{Blog: env.blog, Log: log}).Register(env.router)
	(&MediaHandler{Log: log}).Register(env.router)
	(&StoreHandler{
		Catalog: catalog, Blog: env.blog, Accounts: accounts, Sessions: sessions,
		Purchases: env.buyer, Idempotency: env.idem, Support: env.support, Log: log,
	}).Register(env.router)
	(&AdminHandler{Gate: fakeGate{}, Admin: env.admin, Tickets: fakeTickets{}, Log: log}).Register(env.router)
	return env
}

func (e *testEnv) do(method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHealthz(t *testing.T) {
	rec := newTestEnv().do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.Validation("bad"), http.StatusBadRequest, CodeValidationError},
		{shop.ErrLoginRequired, http.StatusUnauthorized, CodeUnauthorized},
		{apperr.NotFound("post", "x"), http.StatusNotFound, CodeNotFound},
		{shop.ErrSoldOut, http.StatusConflict, CodeConflict},
		{apperr.Connection("load", errors.New("refused")), http.StatusServiceUnavailable, CodeUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), discardLogger(), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestConnectionErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), discardLogger(),
		apperr.Connection("load", errors.New("password=hunter2")))
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestBlogPosts(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodGet, "/blog/posts?q=netflix&category=c1&page=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "netflix", env.blog.query.Search)
	assert.Equal(t, "c1", env.blog.query.Category)
	assert.Equal(t, 2, env.blog.query.Page)

	rec = env.do(http.MethodGet, "/blog/posts?page=zero", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/blog/posts/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlogShare(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/blog/posts/p1/share", "", `{"phone":"936992107"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://wa.me/936992107")

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/blog/posts/p1/share", "", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/blog/posts/nope/share", "", `{"phone":"1"}`).Code)
}

func TestBlogLoadFailureIsRetryable(t *testing.T) {
	env := newTestEnv()
	env.blog.err = apperr.Connection("load blog", errors.New("down"))
	rec := env.do(http.MethodGet, "/blog/shell", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMediaResolve(t *testing.T) {
	env := newTestEnv()
	id := "1AbCdEfGhIjKlMnOpQrStUvWxYz012345"

	rec := env.do(http.MethodGet, "/media/resolve?ref=https://drive.google.com/file/d/"+id+"/view&kind=video", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got mediaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)
	assert.True(t, got.Valid)
	assert.Equal(t, "https://drive.google.com/file/d/"+id+"/preview", got.RenderURL)

	rec = env.do(http.MethodGet, "/media/resolve?ref=short", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreLoginAndMe(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/store/login", "", `{"username":"ana","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var sess sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, "u1", sess.User.ID)

	rec = env.do(http.MethodGet, "/store/me", sess.Token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/store/logout", sess.Token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodGet, "/store/me", sess.Token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/store/login", "", `{"username":"ana","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStoreInactiveSessionIsAnonymous(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodGet, "/store/me", "tok-u2", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStoreRegister(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/store/register", "",
		`{"name":"Luis","phone":"999","email":"l@x.pe","username":"luis","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/store/register", "", `{"name":"Luis"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/store/register", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreInquiry(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodGet, "/store/products/prod-1/inquiry", "tok-u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ana")

	rec = env.do(http.MethodGet, "/store/products/prod-1/inquiry", "", "")
	assert.Contains(t, rec.Body.String(), "anon")
}

func TestPurchaseRequiresLogin(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/store/products/prod-1/purchase", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, env.buyer.calls)
}

func TestPurchase(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/store/products/prod-1/purchase", "tok-u1", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var r shop.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, 2, r.RemainingStock)

	rec = env.do(http.MethodPost, "/store/products/nope/purchase", "tok-u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.buyer.err = shop.ErrSoldOut
	rec = env.do(http.MethodPost, "/store/products/prod-1/purchase", "tok-u1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPurchaseIdempotencyReplay(t *testing.T) {
	env := newTestEnv()
	first := env.do(http.MethodPost, "/store/products/prod-1/purchase", "tok-u1", "", headerIdempotencyKey, "k1")
	require.Equal(t, http.StatusCreated, first.Code)

	again := env.do(http.MethodPost, "/store/products/prod-1/purchase", "tok-u1", "", headerIdempotencyKey, "k1")
	require.Equal(t, http.StatusCreated, again.Code)
	assert.Equal(t, "true", again.Header().Get(headerReplayed))
	assert.JSONEq(t, first.Body.String(), again.Body.String())
	assert.Equal(t, 1, env.buyer.calls)
}

func TestPurchaseIdempotencyReleasedOnFailure(t *testing.T) {
	env := newTestEnv()
	env.buyer.err = shop.ErrWriteFailed
	rec := env.do(http.MethodPost, "/store/products/prod-1/purchase", "tok-u1", "", headerIdempotencyKey, "k2")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, env.idem.entries)

	env.buyer.err = nil
	rec = env.do(http.MethodPost, "/store/products/prod-1/purchase", "tok-u1", "", headerIdempotencyKey, "k2")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestPurchaseIdempotencyInFlight(t *testing.T) {
	env := newTestEnv()
	env.idem.entries["u1:k3"] = nil
	rec := env.do(http.MethodPost, "/store/products/prod-1/purchase", "tok-u1", "", headerIdempotencyKey, "k3")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, env.buyer.calls)
}

func TestSupportTicket(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/store/purchases/PUR-1/support", "tok-u1", `{"support_type":"Codigo"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	env.support.err = apperr.Conflict("already pending")
	rec = env.do(http.MethodPost, "/store/purchases/PUR-1/support", "tok-u1", `{"support_type":"Codigo"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodGet, "/store/purchases", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminGate(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/admin/session", "", `{"secret":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/admin/session", "", `{"secret":"open-sesame"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var g gateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Equal(t, "admin-token", g.Token)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/admin/dashboard", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/admin/dashboard", "forged", "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/admin/dashboard", g.Token, "").Code)
}

func TestAdminCRUD(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/admin/faqs", "admin-token", `{"question":"¿Cómo pago?","answer":"Yape"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	faq, ok := env.admin.saved.(*admin.FAQ)
	require.True(t, ok)
	assert.Equal(t, "¿Cómo pago?", faq.Question)

	rec = env.do(http.MethodPost, "/admin/widgets", "admin-token", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/admin/posts", "admin-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, "/admin/products/p9", "admin-token", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "products/p9", env.admin.deleted)

	rec = env.do(http.MethodDelete, "/admin/settings/default", "admin-token", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminResolveTicket(t *testing.T) {
	env := newTestEnv()
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/admin/tickets/t1/resolve", "admin-token", "").Code)
	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/admin/tickets/done/resolve", "admin-token", "").Code)
}
