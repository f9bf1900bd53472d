package admin

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/blog"
	"github.com/ariefcatur/go-streaming-store/internal/feed"
	"github.com/ariefcatur/go-streaming-store/internal/shop"
	"github.com/ariefcatur/go-streaming-store/internal/slug"
	"github.com/ariefcatur/go-streaming-store/internal/support"
)

// Store persists every admin collection. Update and Delete return NotFound
// when no row has the id; Update on settings upserts the singleton.
type Store interface {
	Insert(ctx context.Context, e Entity) error
	Update(ctx context.Context, e Entity) error
	Delete(ctx context.Context, kind Kind, id string) error

	Products(ctx context.Context) ([]shop.Product, error)
	Categories(ctx context.Context) ([]shop.Category, error)
	Users(ctx context.Context) ([]shop.User, error)
	FAQs(ctx context.Context) ([]blog.FAQ, error)
	SocialLinks(ctx context.Context) ([]blog.SocialLink, error)
	Settings(ctx context.Context) (blog.SiteSettings, error)
	Posts(ctx context.Context) ([]blog.Post, error)
	BlogCategories(ctx context.Context) ([]blog.Category, error)
}

type TicketLister interface {
	List(ctx context.Context) ([]support.Ticket, error)
}

type Service struct {
	Store     Store
	Tickets   TicketLister
	Publisher feed.Publisher
	Log       *slog.Logger
}

// Save inserts e when it has no id yet and updates it otherwise.
func (s *Service) Save(ctx context.Context, e Entity) (Entity, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	if err := prepare(e); err != nil {
		return nil, err
	}

	op := feed.OpUpdate
	var err error
	if e.Kind() != KindSettings && e.EntityID() == "" {
		if u, ok := e.(*User); ok && u.passwordHash == "" {
			return nil, apperr.Validation("password is required for new users")
		}
		e.setID(uuid.NewString())
		op = feed.OpInsert
		err = s.Store.Insert(ctx, e)
	} else {
		err = s.Store.Update(ctx, e)
	}
	if err != nil {
		s.logFailure("save", e.Kind(), e.EntityID(), err)
		return nil, err
	}

	if u, ok := e.(*User); ok {
		u.Password, u.passwordHash = "", ""
	}
	s.Publisher.Publish(ctx, e.Kind().Table(), op, e.EntityID())
	s.Log.Info("admin saved entity", slog.String("kind", string(e.Kind())), slog.String("id", e.EntityID()), slog.String("op", string(op)))
	return e, nil
}

// prepare fills derived fields: slugs, password hashes, defaults.
func prepare(e Entity) error {
	switch v := e.(type) {
	case *StoreCategory:
		// store category slugs always follow the name
		v.Slug = slug.Make(v.Name)
	case *BlogCategory:
		v.Slug = slug.Resolve(v.Name, v.Slug)
	case *Post:
		v.Slug = slug.Resolve(v.Title, v.Slug)
		v.CategoryID = emptyToNil(v.CategoryID)
	case *Product:
		v.CategoryID = emptyToNil(v.CategoryID)
	case *User:
		v.Email = strings.ToLower(strings.TrimSpace(v.Email))
		if v.CountryCode == "" {
			v.CountryCode = shop.DefaultCountryCode
		}
		if v.Password != "" {
			if len(v.Password) < shop.MinPasswordLen {
				return apperr.Validation("password must be at least %d characters", shop.MinPasswordLen)
			}
			h, err := shop.HashPassword(v.Password)
			if err != nil {
				return apperr.Validation("password cannot be hashed")
			}
			v.passwordHash = h
		}
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, kind Kind, id string) error {
	if kind == KindSettings {
		return apperr.Validation("site settings cannot be deleted")
	}
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("id is required")
	}
	if err := s.Store.Delete(ctx, kind, id); err != nil {
		s.logFailure("delete", kind, id, err)
		return err
	}
	s.Publisher.Publish(ctx, kind.Table(), feed.OpDelete, id)
	s.Log.Info("admin deleted entity", slog.String("kind", string(kind)), slog.String("id", id))
	return nil
}

// List returns the full collection for kind, inactive and unpublished rows included.
func (s *Service) List(ctx context.Context, kind Kind) (any, error) {
	switch kind {
	case KindProducts:
		return s.Store.Products(ctx)
	case KindCategories:
		return s.Store.Categories(ctx)
	case KindUsers:
		return s.Store.Users(ctx)
	case KindFAQs:
		return s.Store.FAQs(ctx)
	case KindSocial:
		return s.Store.SocialLinks(ctx)
	case KindSettings:
		return s.Store.Settings(ctx)
	case KindPosts:
		return s.Store.Posts(ctx)
	case KindBlogCategories:
		return s.Store.BlogCategories(ctx)
	}
	return nil, apperr.Validation("unknown collection %q", kind)
}

type Dashboard struct {
	Products       []shop.Product    `json:"products"`
	Categories     []shop.Category   `json:"categories"`
	Users          []shop.User       `json:"users"`
	FAQs           []blog.FAQ        `json:"faqs"`
	Social         []blog.SocialLink `json:"social_links"`
	Settings       blog.SiteSettings `json:"settings"`
	Posts          []blog.Post       `json:"posts"`
	BlogCategories []blog.Category   `json:"blog_categories"`
	Tickets        []support.Ticket  `json:"tickets"`
}

// Dashboard loads every collection in parallel.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { d.Products, err = s.Store.Products(gctx); return })
	g.Go(func() (err error) { d.Categories, err = s.Store.Categories(gctx); return })
	g.Go(func() (err error) { d.Users, err = s.Store.Users(gctx); return })
	g.Go(func() (err error) { d.FAQs, err = s.Store.FAQs(gctx); return })
	g.Go(func() (err error) { d.Social, err = s.Store.SocialLinks(gctx); return })
	g.Go(func() (err error) { d.Settings, err = s.Store.Settings(gctx); return })
	g.Go(func() (err error) { d.Posts, err = s.Store.Posts(gctx); return })
	g.Go(func() (err error) { d.BlogCategories, err = s.Store.BlogCategories(gctx); return })
	g.Go(func() (err error) { d.Tickets, err = s.Tickets.List(gctx); return })
	if err := g.Wait(); err != nil {
		s.Log.Error("admin dashboard load failed", slog.Any("error", err))
		return Dashboard{}, err
	}
	return d, nil
}

func (s *Service) logFailure(action string, kind Kind, id string, err error) {
	if apperr.Kind(err) == apperr.ErrConnection || apperr.Kind(err) == nil {
		s.Log.Error("admin "+action+" failed", slog.String("kind", string(kind)), slog.String("id", id), slog.Any("error", err))
	}
}
