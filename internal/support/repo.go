package support

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/postgres"
	"github.com/ariefcatur/go-streaming-store/internal/shop"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) OwnedPurchase(ctx context.Context, userID, purchaseID string) (shop.Purchase, error) {
	var p shop.Purchase
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, product_id, product_name, price, purchase_date, status
		FROM purchases WHERE id=$1 AND user_id=$2`, purchaseID, userID).Scan(
		&p.ID, &p.UserID, &p.ProductID, &p.ProductName, &p.Price, &p.PurchaseDate, &p.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return shop.Purchase{}, apperr.NotFound("purchase", purchaseID)
	}
	if err != nil {
		return shop.Purchase{}, apperr.Connection("load purchase", err)
	}
	return p, nil
}

func (r *Repo) InsertTicket(ctx context.Context, t Ticket) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO support_tickets (id, user_id, purchase_id, product_name, support_type, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.UserID, t.PurchaseID, t.ProductName, t.SupportType, t.Status, t.CreatedAt)
	if postgres.IsUniqueViolation(err) {
		return ErrTicketPending
	}
	if err != nil {
		return apperr.Connection("insert ticket", err)
	}
	return nil
}

const ticketColumns = `id, user_id, purchase_id, product_name, support_type, status, created_at, resolved_at`

func scanTicket(row pgx.Row) (Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.UserID, &t.PurchaseID, &t.ProductName, &t.SupportType, &t.Status, &t.CreatedAt, &t.ResolvedAt)
	return t, err
}

func (r *Repo) Ticket(ctx context.Context, id string) (Ticket, error) {
	t, err := scanTicket(r.DB.QueryRow(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Ticket{}, apperr.NotFound("ticket", id)
	}
	if err != nil {
		return Ticket{}, apperr.Connection("load ticket", err)
	}
	return t, nil
}

func (r *Repo) MarkResolved(ctx context.Context, id string, at time.Time) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE support_tickets SET status='resolved', resolved_at=$2
		WHERE id=$1 AND status='pending'`, id, at)
	if err != nil {
		return false, apperr.Connection("resolve ticket", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *Repo) PurchasesWithStatus(ctx context.Context, userID string) ([]PurchaseStatus, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.user_id, p.product_id, p.product_name, p.price, p.purchase_date, p.status, t.status
		FROM purchases p
		LEFT JOIN LATERAL (
			SELECT status FROM support_tickets
			WHERE purchase_id = p.id
			ORDER BY created_at DESC LIMIT 1
		) t ON true
		WHERE p.user_id=$1
		ORDER BY p.purchase_date DESC`, userID)
	if err != nil {
		return nil, apperr.Connection("load purchases", err)
	}
	defer rows.Close()

	out := []PurchaseStatus{}
	for rows.Next() {
		var ps PurchaseStatus
		if err := rows.Scan(&ps.ID, &ps.UserID, &ps.ProductID, &ps.ProductName, &ps.Price, &ps.PurchaseDate,
			&ps.Purchase.Status, &ps.TicketStatus); err != nil {
			return nil, apperr.Connection("scan purchase", err)
		}
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Connection("load purchases", err)
	}
	return out, nil
}

func (r *Repo) Tickets(ctx context.Context) ([]Ticket, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+ticketColumns+` FROM support_tickets ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Connection("load tickets", err)
	}
	defer rows.Close()

	out := []Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, apperr.Connection("scan ticket", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Connection("load tickets", err)
	}
	return out, nil
}
