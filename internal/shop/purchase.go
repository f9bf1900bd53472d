package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/feed"
	"github.com/ariefcatur/go-streaming-store/internal/message"
)

var purchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "store_purchases_total",
	Help: "Purchase attempts by result.",
}, []string{"result"})

// PurchaseStore is the persistence the purchase flow needs.
type PurchaseStore interface {
	// Stock re-reads the current stock of a product.
	Stock(ctx context.Context, productID string) (int, error)
	InsertPurchase(ctx context.Context, p Purchase) error
	// DecrementStock takes one unit if any is left and returns the remainder.
	// It returns ErrSoldOut when stock is already zero.
	DecrementStock(ctx context.Context, productID string) (int, error)
	DeletePurchase(ctx context.Context, id string) error
}

type Receipt struct {
	PurchaseID     string          `json:"purchase_id"`
	ProductID      string          `json:"product_id"`
	Product        string          `json:"product_name"`
	Price          decimal.Decimal `json:"price"`
	RemainingStock int             `json:"remaining_stock"`
	RedirectURL    string          `json:"redirect_url"`
}

type Purchases struct {
	Store         PurchaseStore
	Publisher     feed.Publisher
	WhatsAppPhone string
	Log           *slog.Logger
}

func NewPurchaseID() string { return "PUR-" + uuid.NewString() }

// Buy purchases one unit of product for user. product is the catalog view the
// customer acted on; the stock it carries is only a precondition, the
// decrement itself is a conditional update in the store. When two customers
// race for the last unit the second one gets ErrSoldOut.
func (s *Purchases) Buy(ctx context.Context, user *User, product Product) (Receipt, error) {
	r, err := s.buy(ctx, user, product)
	purchasesTotal.WithLabelValues(purchaseResult(err)).Inc()
	return r, err
}

func (s *Purchases) buy(ctx context.Context, user *User, product Product) (Receipt, error) {
	if user == nil {
		return Receipt{}, ErrLoginRequired
	}
	if product.Stock <= 0 {
		return Receipt{}, ErrOutOfStock
	}
	log := s.Log.With(slog.String("product_id", product.ID), slog.String("user_id", user.ID))

	id := NewPurchaseID()
	stock, err := s.Store.Stock(ctx, product.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Receipt{}, err
	}
	if err != nil {
		log.Error("re-read stock failed", slog.Any("error", err))
		return Receipt{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if stock <= 0 {
		return Receipt{}, ErrSoldOut
	}

	p := Purchase{
		ID:           id,
		UserID:       user.ID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		Price:        product.Price,
		PurchaseDate: time.Now().UTC(),
		Status:       PurchaseCompleted,
	}
	if err := s.Store.InsertPurchase(ctx, p); err != nil {
		log.Error("insert purchase failed", slog.Any("error", err))
		return Receipt{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	remaining, err := s.Store.DecrementStock(ctx, product.ID)
	if err != nil {
		// the purchase row must not outlive a failed decrement
		if derr := s.Store.DeletePurchase(context.WithoutCancel(ctx), id); derr != nil {
			log.Error("compensating purchase delete failed", slog.String("purchase_id", id), slog.Any("error", derr))
		}
		if errors.Is(err, ErrSoldOut) {
			log.Info("lost race for last unit", slog.String("purchase_id", id))
			return Receipt{}, ErrSoldOut
		}
		log.Error("stock decrement failed", slog.String("purchase_id", id), slog.Any("error", err))
		return Receipt{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	s.Publisher.Publish(ctx, feed.TablePurchases, feed.OpInsert, id)
	s.Publisher.Publish(ctx, feed.TableProducts, feed.OpUpdate, product.ID)

	notice := message.PurchaseNotice{
		Customer: message.Customer{
			Name:        user.Name,
			Username:    user.Username,
			Email:       user.Email,
			CountryCode: user.CountryCode,
			Phone:       user.Phone,
		},
		Product:    product.Name,
		Price:      product.Price,
		PurchaseID: id,
	}
	log.Info("purchase completed", slog.String("purchase_id", id), slog.Int("remaining_stock", remaining))
	return Receipt{
		PurchaseID:     id,
		ProductID:      product.ID,
		Product:        product.Name,
		Price:          product.Price,
		RemainingStock: remaining,
		RedirectURL:    message.RedirectURL(s.WhatsAppPhone, notice.Text()),
	}, nil
}

func purchaseResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrLoginRequired):
		return "login_required"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrSoldOut):
		return "sold_out"
	default:
		return "write_failed"
	}
}
