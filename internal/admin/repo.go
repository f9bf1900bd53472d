package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/blog"
	"github.com/ariefcatur/go-streaming-store/internal/postgres"
	"github.com/ariefcatur/go-streaming-store/internal/shop"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Insert(ctx context.Context, e Entity) error {
	var err error
	switch v := e.(type) {
	case *Product:
		_, err = r.DB.Exec(ctx, `
			INSERT INTO products (id, name, description, price, stock, image_id, terms_conditions, category_id, is_active)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			v.ID, v.Name, v.Description, v.Price, v.Stock, v.ImageID, v.TermsConditions, v.CategoryID, boolOr(v.IsActive, true))
	case *StoreCategory:
		_, err = r.DB.Exec(ctx, `
			INSERT INTO categories (id, name, slug, description, is_active) VALUES ($1,$2,$3,$4,$5)`,
			v.ID, v.Name, v.Slug, v.Description, boolOr(v.IsActive, true))
	case *User:
		_, err = r.DB.Exec(ctx, `
			INSERT INTO users (id, name, phone, country_code, email, username, password_hash, is_active)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			v.ID, v.Name, v.Phone, v.CountryCode, v.Email, v.Username, v.passwordHash, boolOr(v.IsActive, true))
	case *FAQ:
		_, err = r.DB.Exec(ctx, `
			INSERT INTO faqs (id, question, answer, order_index, is_active) VALUES ($1,$2,$3,$4,$5)`,
			v.ID, v.Question, v.Answer, v.OrderIndex, boolOr(v.IsActive, true))
	case *SocialLink:
		_, err = r.DB.Exec(ctx, `
			INSERT INTO social_links (id, platform, url, icon, order_index, is_active) VALUES ($1,$2,$3,$4,$5,$6)`,
			v.ID, v.Platform, v.URL, v.Icon, v.OrderIndex, boolOr(v.IsActive, true))
	case *Settings:
		return r.upsertSettings(ctx, v)
	case *Post:
		_, err = r.DB.Exec(ctx, `
			INSERT INTO posts (id, title, slug, excerpt, content, featured_image, featured_video, category_id, is_published, published_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,COALESCE($10, now()))`,
			v.ID, v.Title, v.Slug, v.Excerpt, v.Content, v.FeaturedImage, v.FeaturedVideo, v.CategoryID, boolOr(v.IsPublished, true), v.PublishedAt)
	case *BlogCategory:
		_, err = r.DB.Exec(ctx, `
			INSERT INTO blog_categories (id, name, slug, description) VALUES ($1,$2,$3,$4)`,
			v.ID, v.Name, v.Slug, v.Description)
	default:
		return apperr.Validation("unsupported entity %T", e)
	}
	return writeErr("insert", e, err)
}

func (r *Repo) Update(ctx context.Context, e Entity) error {
	var (
		ct  pgconn.CommandTag
		err error
	)
	switch v := e.(type) {
	case *Product:
		ct, err = r.DB.Exec(ctx, `
			UPDATE products SET name=$2, description=$3, price=$4, stock=$5, image_id=$6, terms_conditions=$7,
			       category_id=$8, is_active=COALESCE($9, is_active), updated_at=now()
			WHERE id=$1`,
			v.ID, v.Name, v.Description, v.Price, v.Stock, v.ImageID, v.TermsConditions, v.CategoryID, v.IsActive)
	case *StoreCategory:
		ct, err = r.DB.Exec(ctx, `
			UPDATE categories SET name=$2, slug=$3, description=$4, is_active=COALESCE($5, is_active), updated_at=now() WHERE id=$1`,
			v.ID, v.Name, v.Slug, v.Description, v.IsActive)
	case *User:
		ct, err = r.DB.Exec(ctx, `
			UPDATE users SET name=$2, phone=$3, country_code=$4, email=$5, username=$6,
			       password_hash=COALESCE(NULLIF($7, ''), password_hash), is_active=COALESCE($8, is_active), updated_at=now()
			WHERE id=$1`,
			v.ID, v.Name, v.Phone, v.CountryCode, v.Email, v.Username, v.passwordHash, v.IsActive)
	case *FAQ:
		ct, err = r.DB.Exec(ctx, `
			UPDATE faqs SET question=$2, answer=$3, order_index=$4, is_active=COALESCE($5, is_active), updated_at=now() WHERE id=$1`,
			v.ID, v.Question, v.Answer, v.OrderIndex, v.IsActive)
	case *SocialLink:
		ct, err = r.DB.Exec(ctx, `
			UPDATE social_links SET platform=$2, url=$3, icon=$4, order_index=$5, is_active=COALESCE($6, is_active), updated_at=now() WHERE id=$1`,
			v.ID, v.Platform, v.URL, v.Icon, v.OrderIndex, v.IsActive)
	case *Settings:
		return r.upsertSettings(ctx, v)
	case *Post:
		ct, err = r.DB.Exec(ctx, `
			UPDATE posts SET title=$2, slug=$3, excerpt=$4, content=$5, featured_image=$6, featured_video=$7,
			       category_id=$8, is_published=COALESCE($9, is_published), published_at=COALESCE($10, published_at), updated_at=now()
			WHERE id=$1`,
			v.ID, v.Title, v.Slug, v.Excerpt, v.Content, v.FeaturedImage, v.FeaturedVideo, v.CategoryID, v.IsPublished, v.PublishedAt)
	case *BlogCategory:
		ct, err = r.DB.Exec(ctx, `
			UPDATE blog_categories SET name=$2, slug=$3, description=$4, updated_at=now() WHERE id=$1`,
			v.ID, v.Name, v.Slug, v.Description)
	default:
		return apperr.Validation("unsupported entity %T", e)
	}
	if err != nil {
		return writeErr("update", e, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound(string(e.Kind()), e.EntityID())
	}
	return nil
}

func (r *Repo) upsertSettings(ctx context.Context, v *Settings) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO site_settings (id, site_title, site_subtitle, hero_image, contact_phone, contact_email,
		                           whatsapp_url, reservation_url, footer_text, developer_text)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			site_title=EXCLUDED.site_title, site_subtitle=EXCLUDED.site_subtitle, hero_image=EXCLUDED.hero_image,
			contact_phone=EXCLUDED.contact_phone, contact_email=EXCLUDED.contact_email,
			whatsapp_url=EXCLUDED.whatsapp_url, reservation_url=EXCLUDED.reservation_url,
			footer_text=EXCLUDED.footer_text, developer_text=EXCLUDED.developer_text, updated_at=now()`,
		blog.SettingsID, v.SiteTitle, v.SiteSubtitle, v.HeroImage, v.ContactPhone, v.ContactEmail,
		v.WhatsAppURL, v.ReservationURL, v.FooterText, v.DeveloperText)
	return writeErr("upsert", v, err)
}

var deleteSQL = map[Kind]string{
	KindProducts:       `DELETE FROM products WHERE id=$1`,
	KindCategories:     `DELETE FROM categories WHERE id=$1`,
	KindUsers:          `DELETE FROM users WHERE id=$1`,
	KindFAQs:           `DELETE FROM faqs WHERE id=$1`,
	KindSocial:         `DELETE FROM social_links WHERE id=$1`,
	KindPosts:          `DELETE FROM posts WHERE id=$1`,
	KindBlogCategories: `DELETE FROM blog_categories WHERE id=$1`,
}

func (r *Repo) Delete(ctx context.Context, kind Kind, id string) error {
	q, ok := deleteSQL[kind]
	if !ok {
		return apperr.Validation("%s cannot be deleted", kind)
	}
	ct, err := r.DB.Exec(ctx, q, id)
	if err != nil {
		return apperr.Connection("delete "+string(kind), err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound(string(kind), id)
	}
	return nil
}

func writeErr(op string, e Entity, err error) error {
	if err == nil {
		return nil
	}
	if c := postgres.ViolatedConstraint(err); c != "" {
		return apperr.Conflict("%s %s violates %s", e.Kind(), e.EntityID(), c)
	}
	return apperr.Connection(fmt.Sprintf("%s %s", op, e.Kind()), err)
}

// collect runs q and scans every row with scan.
func collect[T any](ctx context.Context, db *pgxpool.Pool, what, q string, scan func(pgx.Rows, *T) error) ([]T, error) {
	rows, err := db.Query(ctx, q)
	if err != nil {
		return nil, apperr.Connection("load "+what, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			return nil, apperr.Connection("scan "+what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Connection("load "+what, err)
	}
	return out, nil
}

func (r *Repo) Products(ctx context.Context) ([]shop.Product, error) {
	return collect(ctx, r.DB, "products", `
		SELECT id, name, description, price, stock, image_id, terms_conditions, category_id, is_active, created_at, updated_at
		FROM products ORDER BY created_at DESC`,
		func(row pgx.Rows, p *shop.Product) error {
			return row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageID, &p.TermsConditions,
				&p.CategoryID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
		})
}

func (r *Repo) Categories(ctx context.Context) ([]shop.Category, error) {
	return collect(ctx, r.DB, "categories", `
		SELECT id, name, slug, description, is_active, created_at, updated_at FROM categories ORDER BY name`,
		func(row pgx.Rows, c *shop.Category) error {
			return row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
		})
}

func (r *Repo) Users(ctx context.Context) ([]shop.User, error) {
	return collect(ctx, r.DB, "users", `
		SELECT id, name, phone, country_code, email, username, is_active, created_at, updated_at
		FROM users ORDER BY created_at DESC`,
		func(row pgx.Rows, u *shop.User) error {
			return row.Scan(&u.ID, &u.Name, &u.Phone, &u.CountryCode, &u.Email, &u.Username, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
		})
}

func (r *Repo) FAQs(ctx context.Context) ([]blog.FAQ, error) {
	return collect(ctx, r.DB, "faqs", `
		SELECT id, question, answer, order_index, is_active, created_at, updated_at FROM faqs ORDER BY order_index`,
		func(row pgx.Rows, f *blog.FAQ) error {
			return row.Scan(&f.ID, &f.Question, &f.Answer, &f.OrderIndex, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
		})
}

func (r *Repo) SocialLinks(ctx context.Context) ([]blog.SocialLink, error) {
	return collect(ctx, r.DB, "social links", `
		SELECT id, platform, url, icon, order_index, is_active, created_at, updated_at FROM social_links ORDER BY order_index`,
		func(row pgx.Rows, l *blog.SocialLink) error {
			return row.Scan(&l.ID, &l.Platform, &l.URL, &l.Icon, &l.OrderIndex, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
		})
}

func (r *Repo) Settings(ctx context.Context) (blog.SiteSettings, error) {
	return (&blog.Repo{DB: r.DB}).Settings(ctx)
}

func (r *Repo) Posts(ctx context.Context) ([]blog.Post, error) {
	return collect(ctx, r.DB, "posts", `
		SELECT id, title, slug, excerpt, content, featured_image, featured_video,
		       category_id, is_published, published_at, created_at, updated_at
		FROM posts ORDER BY created_at DESC`,
		func(row pgx.Rows, p *blog.Post) error {
			return row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.FeaturedImage, &p.FeaturedVideo,
				&p.CategoryID, &p.IsPublished, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
		})
}

func (r *Repo) BlogCategories(ctx context.Context) ([]blog.Category, error) {
	return (&blog.Repo{DB: r.DB}).Categories(ctx)
}
