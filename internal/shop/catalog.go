package shop

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/content"
	"github.com/ariefcatur/go-streaming-store/internal/feed"
	"github.com/ariefcatur/go-streaming-store/internal/message"
)

// Tables lists the tables whose changes invalidate the catalog snapshot.
var Tables = []string{feed.TableProducts, feed.TableCategories}

type CatalogStore interface {
	// ActiveProducts returns active products, newest first.
	ActiveProducts(ctx context.Context) ([]Product, error)
	// ActiveCategories returns active categories ordered by name.
	ActiveCategories(ctx context.Context) ([]Category, error)
}

type CatalogSnapshot struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
}

func LoadCatalog(ctx context.Context, st CatalogStore) (*CatalogSnapshot, error) {
	var s CatalogSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { s.Products, err = st.ActiveProducts(gctx); return })
	g.Go(func() (err error) { s.Categories, err = st.ActiveCategories(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	byID := make(map[string]*Category, len(s.Categories))
	for i := range s.Categories {
		byID[s.Categories[i].ID] = &s.Categories[i]
	}
	for i := range s.Products {
		s.Products[i].Category = byID[s.Products[i].CategoryRef()]
	}
	return &s, nil
}

type ProductQuery struct {
	Search   string
	Category string
	Page     int
}

type ProductPage struct {
	Products []Product        `json:"products"`
	Info     content.PageInfo `json:"pagination"`
}

type Catalog struct {
	cache         *feed.Cache[*CatalogSnapshot]
	pageSize      int
	whatsAppPhone string
}

func NewCatalog(st CatalogStore, pageSize int, whatsAppPhone string, logger *slog.Logger) *Catalog {
	return &Catalog{
		cache: feed.NewCache("catalog", func(ctx context.Context) (*CatalogSnapshot, error) {
			return LoadCatalog(ctx, st)
		}, logger),
		pageSize:      pageSize,
		whatsAppPhone: whatsAppPhone,
	}
}

func (c *Catalog) Invalidate()             { c.cache.Invalidate() }
func (c *Catalog) Run(ctx context.Context) { c.cache.Run(ctx) }

func (c *Catalog) Snapshot(ctx context.Context) (*CatalogSnapshot, error) { return c.cache.Get(ctx) }

func (c *Catalog) Products(ctx context.Context, q ProductQuery) (ProductPage, error) {
	snap, err := c.cache.Get(ctx)
	if err != nil {
		return ProductPage{}, err
	}
	if q.Page == 0 {
		q.Page = 1
	}
	b := content.NewBrowser(snap.Products, c.pageSize)
	b.SetSearch(q.Search)
	b.SetCategory(q.Category)
	b.SetPage(q.Page)
	return ProductPage{Products: b.Page(), Info: b.Info()}, nil
}

func (c *Catalog) Product(ctx context.Context, id string) (Product, error) {
	snap, err := c.cache.Get(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range snap.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, apperr.NotFound("product", id)
}

// Inquiry returns the redirect link for asking about a product. user may be nil.
func (c *Catalog) Inquiry(ctx context.Context, productID string, user *User) (string, error) {
	p, err := c.Product(ctx, productID)
	if err != nil {
		return "", err
	}
	q := message.ProductInquiry{Product: p.Name, Price: p.Price}
	if user != nil {
		q.CustomerName = user.Name
	}
	return message.RedirectURL(c.whatsAppPhone, q.Text()), nil
}
