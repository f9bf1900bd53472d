package blog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
)

// Repo reads the reader-visible blog collections.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Posts(ctx context.Context) ([]Post, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, title, slug, excerpt, content, featured_image, featured_video,
		       category_id, is_published, published_at, created_at, updated_at
		FROM posts
		WHERE is_published
		ORDER BY published_at DESC`)
	if err != nil {
		return nil, apperr.Connection("load posts", err)
	}
	defer rows.Close()

	out := []Post{}
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.FeaturedImage, &p.FeaturedVideo,
			&p.CategoryID, &p.IsPublished, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, apperr.Connection("scan post", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Connection("load posts", err)
	}
	return out, nil
}

// Categories returns every category with the number of published posts referencing it.
func (r *Repo) Categories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT c.id, c.name, c.slug, c.description, COUNT(p.id), c.created_at, c.updated_at
		FROM blog_categories c
		LEFT JOIN posts p ON p.category_id = c.id AND p.is_published
		GROUP BY c.id
		ORDER BY c.name`)
	if err != nil {
		return nil, apperr.Connection("load blog categories", err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.PostCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, apperr.Connection("scan blog category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Connection("load blog categories", err)
	}
	return out, nil
}

func (r *Repo) FAQs(ctx context.Context) ([]FAQ, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, question, answer, order_index, is_active, created_at, updated_at
		FROM faqs WHERE is_active ORDER BY order_index`)
	if err != nil {
		return nil, apperr.Connection("load faqs", err)
	}
	defer rows.Close()

	out := []FAQ{}
	for rows.Next() {
		var f FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &f.OrderIndex, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, apperr.Connection("scan faq", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Connection("load faqs", err)
	}
	return out, nil
}

func (r *Repo) SocialLinks(ctx context.Context) ([]SocialLink, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, platform, url, icon, order_index, is_active, created_at, updated_at
		FROM social_links WHERE is_active ORDER BY order_index`)
	if err != nil {
		return nil, apperr.Connection("load social links", err)
	}
	defer rows.Close()

	out := []SocialLink{}
	for rows.Next() {
		var l SocialLink
		if err := rows.Scan(&l.ID, &l.Platform, &l.URL, &l.Icon, &l.OrderIndex, &l.IsActive, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, apperr.Connection("scan social link", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Connection("load social links", err)
	}
	return out, nil
}

// Settings returns the singleton row, or DefaultSettings when none exists.
func (r *Repo) Settings(ctx context.Context) (SiteSettings, error) {
	var s SiteSettings
	err := r.DB.QueryRow(ctx, `
		SELECT id, site_title, site_subtitle, hero_image, contact_phone, contact_email,
		       whatsapp_url, reservation_url, footer_text, developer_text, created_at, updated_at
		FROM site_settings LIMIT 1`).Scan(&s.ID, &s.SiteTitle, &s.SiteSubtitle, &s.HeroImage, &s.ContactPhone,
		&s.ContactEmail, &s.WhatsAppURL, &s.ReservationURL, &s.FooterText, &s.DeveloperText, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return SiteSettings{}, apperr.Connection("load site settings", err)
	}
	return s, nil
}
