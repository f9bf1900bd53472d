package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/blog"
	"github.com/ariefcatur/go-streaming-store/internal/redisx"
	"github.com/ariefcatur/go-streaming-store/internal/shop"
	"github.com/ariefcatur/go-streaming-store/internal/support"
)

type CatalogReader interface {
	Snapshot(ctx context.Context) (*shop.CatalogSnapshot, error)
	Products(ctx context.Context, q shop.ProductQuery) (shop.ProductPage, error)
	Product(ctx context.Context, id string) (shop.Product, error)
	Inquiry(ctx context.Context, productID string, user *shop.User) (string, error)
}

type AccountService interface {
	UserLoader
	Register(ctx context.Context, r shop.Registration) (shop.User, error)
	Login(ctx context.Context, username, password string) (shop.User, error)
}

type Buyer interface {
	Buy(ctx context.Context, user *shop.User, product shop.Product) (shop.Receipt, error)
}

// IdempotencyStore remembers purchase responses by client key.
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) ([]byte, bool, error)
	Finish(ctx context.Context, key string, response []byte) error
	Abandon(ctx context.Context, key string) error
}

type SupportDesk interface {
	Create(ctx context.Context, userID, purchaseID, supportType string) (support.Request, error)
	PurchasesWithStatus(ctx context.Context, userID string) ([]support.PurchaseStatus, error)
}

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
)

type StoreHandler struct {
	Catalog     CatalogReader
	Blog        BlogReader
	Accounts    AccountService
	Sessions    SessionStore
	Purchases   Buyer
	Idempotency IdempotencyStore // nil disables replay protection
	Support     SupportDesk
	Log         *slog.Logger
}

func (h *StoreHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(optionalUser(h.Sessions, h.Accounts, h.Log))
		r.Get("/store/products", h.products)
		r.Get("/store/catalog", h.catalog)
		r.Get("/store/products/{id}/inquiry", h.inquiry)
		r.Post("/store/register", h.register)
		r.Post("/store/login", h.login)
		r.Post("/store/products/{id}/purchase", h.purchase)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/store/logout", h.logout)
			r.Get("/store/me", h.me)
			r.Get("/store/purchases", h.purchases)
			r.Post("/store/purchases/{id}/support", h.openTicket)
		})
	})
}

func (h *StoreHandler) products(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	q := r.URL.Query()
	res, err := h.Catalog.Products(ctx, shop.ProductQuery{Search: q.Get("q"), Category: q.Get("category"), Page: page})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type catalogResponse struct {
	*shop.CatalogSnapshot
	blog.Shell
	FAQs []blog.FAQ `json:"faqs"`
}

// catalog is the storefront's initial load: products, categories, FAQs and
// site chrome in one response.
func (h *StoreHandler) catalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	snap, err := h.Catalog.Snapshot(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	shell, err := h.Blog.Shell(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	faqs, err := h.Blog.FAQs(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse{CatalogSnapshot: snap, Shell: shell, FAQs: faqs})
}

func (h *StoreHandler) inquiry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	link, err := h.Catalog.Inquiry(ctx, chi.URLParam(r, "id"), userFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect_url": link})
}

type sessionResponse struct {
	Token string    `json:"token"`
	User  shop.User `json:"user"`
}

func (h *StoreHandler) register(w http.ResponseWriter, r *http.Request) {
	var req shop.Registration
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	u, err := h.Accounts.Register(ctx, req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	token, err := h.Sessions.Create(ctx, u.ID)
	if err != nil {
		writeError(w, r, h.Log, apperr.Connection("session", err))
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: u})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *StoreHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	u, err := h.Accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	token, err := h.Sessions.Create(ctx, u.ID)
	if err != nil {
		writeError(w, r, h.Log, apperr.Connection("session", err))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: u})
}

func (h *StoreHandler) logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Sessions.Delete(ctx, tokenFrom(r.Context())); err != nil {
		writeError(w, r, h.Log, apperr.Connection("session", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StoreHandler) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}

func (h *StoreHandler) purchase(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	user := userFrom(r.Context())

	key := r.Header.Get(headerIdempotencyKey)
	if key != "" && user != nil && h.Idempotency != nil {
		key = user.ID + ":" + key
		stored, claimed, err := h.Idempotency.Begin(ctx, key)
		switch {
		case errors.Is(err, redisx.ErrInFlight):
			writeErrorCode(w, http.StatusConflict, CodeConflict, err.Error())
			return
		case err != nil:
			writeError(w, r, h.Log, apperr.Connection("idempotency", err))
			return
		case !claimed:
			w.Header().Set(headerReplayed, "true")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(stored)
			return
		}
	} else {
		key = ""
	}

	receipt, err := h.buy(ctx, user, chi.URLParam(r, "id"))
	if err != nil {
		if key != "" {
			if aerr := h.Idempotency.Abandon(context.WithoutCancel(ctx), key); aerr != nil {
				h.Log.Warn("release idempotency key", slog.Any("error", aerr))
			}
		}
		writeError(w, r, h.Log, err)
		return
	}
	if key != "" {
		body, _ := json.Marshal(receipt)
		if ferr := h.Idempotency.Finish(context.WithoutCancel(ctx), key, body); ferr != nil {
			h.Log.Warn("store idempotent response", slog.Any("error", ferr))
		}
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *StoreHandler) buy(ctx context.Context, user *shop.User, productID string) (shop.Receipt, error) {
	if user == nil {
		return shop.Receipt{}, shop.ErrLoginRequired
	}
	p, err := h.Catalog.Product(ctx, productID)
	if err != nil {
		return shop.Receipt{}, err
	}
	return h.Purchases.Buy(ctx, user, p)
}

func (h *StoreHandler) purchases(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ps, err := h.Support.PurchasesWithStatus(ctx, userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

type ticketRequest struct {
	SupportType string `json:"support_type"`
}

func (h *StoreHandler) openTicket(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := h.Support.Create(ctx, userFrom(r.Context()).ID, chi.URLParam(r, "id"), req.SupportType)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
