// Package support tracks the help requests customers attach to their purchases.
package support

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/feed"
	"github.com/ariefcatur/go-streaming-store/internal/message"
	"github.com/ariefcatur/go-streaming-store/internal/shop"
)

var (
	ErrAlreadyResolved = fmt.Errorf("%w: ticket already resolved", apperr.ErrStateConflict)
	ErrTicketPending   = fmt.Errorf("%w: a support request for this purchase is already pending", apperr.ErrStateConflict)
)

// Types are the support categories a customer can pick.
var Types = []string{"Codigo", "Hogar", "Email", "Pago", "Geo", "Otros"}

func ValidType(t string) bool {
	for _, x := range Types {
		if x == t {
			return true
		}
	}
	return false
}

type Ticket struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	PurchaseID  string     `json:"purchase_id"`
	ProductName string     `json:"product_name"`
	SupportType string     `json:"support_type"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// PurchaseStatus is a purchase with the status of its latest ticket, nil when none.
type PurchaseStatus struct {
	shop.Purchase
	TicketStatus *Status `json:"ticket_status"`
}

type Store interface {
	// OwnedPurchase returns NotFound unless purchaseID belongs to userID.
	OwnedPurchase(ctx context.Context, userID, purchaseID string) (shop.Purchase, error)
	// InsertTicket returns ErrTicketPending when the purchase already has a pending ticket.
	InsertTicket(ctx context.Context, t Ticket) error
	Ticket(ctx context.Context, id string) (Ticket, error)
	// MarkResolved moves a pending ticket to resolved. It reports false when
	// the ticket was no longer pending.
	MarkResolved(ctx context.Context, id string, at time.Time) (bool, error)
	PurchasesWithStatus(ctx context.Context, userID string) ([]PurchaseStatus, error)
	Tickets(ctx context.Context) ([]Ticket, error)
}

type Service struct {
	Store         Store
	Publisher     feed.Publisher
	WhatsAppPhone string
	Log           *slog.Logger
}

type Request struct {
	Ticket      Ticket `json:"ticket"`
	RedirectURL string `json:"redirect_url"`
}

// Create opens a pending ticket for a purchase owned by userID.
func (s *Service) Create(ctx context.Context, userID, purchaseID, supportType string) (Request, error) {
	if !ValidType(supportType) {
		return Request{}, apperr.Validation("unknown support type %q", supportType)
	}
	p, err := s.Store.OwnedPurchase(ctx, userID, purchaseID)
	if err != nil {
		return Request{}, err
	}
	t := Ticket{
		ID:          uuid.NewString(),
		UserID:      userID,
		PurchaseID:  p.ID,
		ProductName: p.ProductName,
		SupportType: supportType,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.InsertTicket(ctx, t); err != nil {
		if !errors.Is(err, ErrTicketPending) {
			s.Log.Error("create ticket failed", slog.String("purchase_id", purchaseID), slog.Any("error", err))
		}
		return Request{}, err
	}
	s.Publisher.Publish(ctx, feed.TableSupportTickets, feed.OpInsert, t.ID)
	s.Log.Info("support ticket opened", slog.String("ticket_id", t.ID), slog.String("purchase_id", p.ID))

	text := message.SupportRequest{Product: p.ProductName, SupportType: supportType}.Text()
	return Request{Ticket: t, RedirectURL: message.RedirectURL(s.WhatsAppPhone, text)}, nil
}

// Resolve closes a pending ticket. Resolved is terminal.
func (s *Service) Resolve(ctx context.Context, id string) (Ticket, error) {
	t, err := s.Store.Ticket(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if !CanTransition(t.Status, StatusResolved) {
		return Ticket{}, ErrAlreadyResolved
	}
	now := time.Now().UTC()
	ok, err := s.Store.MarkResolved(ctx, id, now)
	if err != nil {
		s.Log.Error("resolve ticket failed", slog.String("ticket_id", id), slog.Any("error", err))
		return Ticket{}, err
	}
	if !ok {
		return Ticket{}, ErrAlreadyResolved
	}
	t.Status, t.ResolvedAt = StatusResolved, &now
	s.Publisher.Publish(ctx, feed.TableSupportTickets, feed.OpUpdate, id)
	return t, nil
}

func (s *Service) PurchasesWithStatus(ctx context.Context, userID string) ([]PurchaseStatus, error) {
	return s.Store.PurchasesWithStatus(ctx, userID)
}

func (s *Service) List(ctx context.Context) ([]Ticket, error) {
	return s.Store.Tickets(ctx)
}
