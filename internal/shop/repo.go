package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/postgres"
)

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `id, name, description, price, stock, image_id, terms_conditions, category_id, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageID, &p.TermsConditions,
		&p.CategoryID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repo) ActiveProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Connection("load products", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Connection("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Connection("load products", err)
	}
	return out, nil
}

func (r *Repo) ActiveCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM categories WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, apperr.Connection("load categories", err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, apperr.Connection("scan category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Connection("load categories", err)
	}
	return out, nil
}

func (r *Repo) Stock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := r.DB.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.NotFound("product", productID)
	}
	if err != nil {
		return 0, apperr.Connection("read stock", err)
	}
	return stock, nil
}

func (r *Repo) InsertPurchase(ctx context.Context, p Purchase) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO purchases (id, user_id, product_id, product_name, price, purchase_date, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.UserID, p.ProductID, p.ProductName, p.Price, p.PurchaseDate, p.Status)
	if err != nil {
		return apperr.Connection("insert purchase", err)
	}
	return nil
}

// DecrementStock is a single conditional update: it never takes stock below zero.
func (r *Repo) DecrementStock(ctx context.Context, productID string) (int, error) {
	var remaining int
	err := r.DB.QueryRow(ctx, `
		UPDATE products SET stock = stock - 1, updated_at = now()
		WHERE id=$1 AND stock > 0
		RETURNING stock`, productID).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrSoldOut
	}
	if err != nil {
		return 0, apperr.Connection("decrement stock", err)
	}
	return remaining, nil
}

func (r *Repo) DeletePurchase(ctx context.Context, id string) error {
	if _, err := r.DB.Exec(ctx, `DELETE FROM purchases WHERE id=$1`, id); err != nil {
		return apperr.Connection("delete purchase", err)
	}
	return nil
}

func (r *Repo) CreateUser(ctx context.Context, u User) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users (id, name, phone, country_code, email, username, password_hash, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		u.ID, u.Name, u.Phone, u.CountryCode, u.Email, u.Username, u.PasswordHash, u.IsActive, u.CreatedAt, u.UpdatedAt)
	switch postgres.ViolatedConstraint(err) {
	case "":
	case "users_email_key":
		return apperr.Conflict("email %s is already registered", u.Email)
	default:
		return apperr.Conflict("username %s is already taken", u.Username)
	}
	if err != nil {
		return apperr.Connection("insert user", err)
	}
	return nil
}

const userColumns = `id, name, phone, country_code, email, username, password_hash, is_active, created_at, updated_at`

func (r *Repo) userBy(ctx context.Context, column, value string) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+`=$1`, value).Scan(
		&u.ID, &u.Name, &u.Phone, &u.CountryCode, &u.Email, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("user", value)
	}
	if err != nil {
		return User{}, apperr.Connection("load user", err)
	}
	return u, nil
}

func (r *Repo) UserByUsername(ctx context.Context, username string) (User, error) {
	return r.userBy(ctx, "username", username)
}

func (r *Repo) UserByID(ctx context.Context, id string) (User, error) {
	return r.userBy(ctx, "id", id)
}
