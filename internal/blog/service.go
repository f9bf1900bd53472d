package blog

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/content"
	"github.com/ariefcatur/go-streaming-store/internal/feed"
	"github.com/ariefcatur/go-streaming-store/internal/media"
	"github.com/ariefcatur/go-streaming-store/internal/message"
)

var pageCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "blog_page_cache_lookups_total",
	Help: "Blog post page cache lookups by result.",
}, []string{"result"})

// Tables lists the tables whose changes invalidate the blog snapshot.
var Tables = []string{feed.TablePosts, feed.TableBlogCategories, feed.TableFAQs, feed.TableSocialLinks, feed.TableSiteSettings}

// Store is the read side the snapshot is loaded from.
type Store interface {
	Posts(ctx context.Context) ([]Post, error)
	Categories(ctx context.Context) ([]Category, error)
	FAQs(ctx context.Context) ([]FAQ, error)
	SocialLinks(ctx context.Context) ([]SocialLink, error)
	Settings(ctx context.Context) (SiteSettings, error)
}

type Snapshot struct {
	Posts      []Post
	Categories []Category
	FAQs       []FAQ
	Social     []SocialLink
	Settings   SiteSettings
}

// LoadSnapshot reads every collection in parallel and attaches categories to
// posts. A failing settings read falls back to DefaultSettings.
func LoadSnapshot(ctx context.Context, st Store, logger *slog.Logger) (*Snapshot, error) {
	var s Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { s.Posts, err = st.Posts(gctx); return })
	g.Go(func() (err error) { s.Categories, err = st.Categories(gctx); return })
	g.Go(func() (err error) { s.FAQs, err = st.FAQs(gctx); return })
	g.Go(func() (err error) { s.Social, err = st.SocialLinks(gctx); return })
	g.Go(func() error {
		settings, err := st.Settings(gctx)
		if err != nil {
			logger.Warn("site settings unavailable, using defaults", slog.Any("error", err))
			settings = DefaultSettings()
		}
		s.Settings = settings
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]*Category, len(s.Categories))
	for i := range s.Categories {
		byID[s.Categories[i].ID] = &s.Categories[i]
	}
	for i := range s.Posts {
		s.Posts[i].Category = byID[s.Posts[i].CategoryRef()]
	}
	return &s, nil
}

type Query struct {
	Search   string
	Category string
	Page     int
}

type PostPage struct {
	Posts []Post           `json:"posts"`
	Info  content.PageInfo `json:"pagination"`
}

type pageKey struct {
	Query
	gen uint64
}

// Shell is the chrome around every blog screen.
type Shell struct {
	Settings SiteSettings `json:"settings"`
	Social   []SocialLink `json:"social_links"`
}

type Service struct {
	cache    *feed.Cache[*Snapshot]
	pages    *expirable.LRU[pageKey, PostPage]
	gen      atomic.Uint64
	pageSize int
}

func NewService(st Store, pageSize, pageCacheSize int, pageCacheTTL time.Duration, logger *slog.Logger) *Service {
	s := &Service{
		pages:    expirable.NewLRU[pageKey, PostPage](pageCacheSize, nil, pageCacheTTL),
		pageSize: pageSize,
	}
	s.cache = feed.NewCache("blog", func(ctx context.Context) (*Snapshot, error) {
		return LoadSnapshot(ctx, st, logger)
	}, logger)
	s.cache.OnReload(func(*Snapshot) {
		s.gen.Add(1)
		s.pages.Purge()
	})
	return s
}

func (s *Service) Invalidate()             { s.cache.Invalidate() }
func (s *Service) Run(ctx context.Context) { s.cache.Run(ctx) }

func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) { return s.cache.Get(ctx) }

// Posts returns one page of published posts matching q. Page defaults to 1.
func (s *Service) Posts(ctx context.Context, q Query) (PostPage, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	key := pageKey{Query: q, gen: s.gen.Load()}
	if p, ok := s.pages.Get(key); ok {
		pageCacheLookups.WithLabelValues("hit").Inc()
		return p, nil
	}
	pageCacheLookups.WithLabelValues("miss").Inc()

	snap, err := s.cache.Get(ctx)
	if err != nil {
		return PostPage{}, err
	}
	b := content.NewBrowser(snap.Posts, s.pageSize)
	b.SetSearch(q.Search)
	b.SetCategory(q.Category)
	b.SetPage(q.Page)
	p := PostPage{Posts: b.Page(), Info: b.Info()}
	s.pages.Add(key, p)
	return p, nil
}

func (s *Service) Post(ctx context.Context, id string) (Post, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		return Post{}, err
	}
	for _, p := range snap.Posts {
		if p.ID == id {
			return p, nil
		}
	}
	return Post{}, apperr.NotFound("post", id)
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Categories, nil
}

func (s *Service) FAQs(ctx context.Context) ([]FAQ, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return snap.FAQs, nil
}

func (s *Service) Shell(ctx context.Context) (Shell, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		return Shell{}, err
	}
	return Shell{Settings: snap.Settings, Social: snap.Social}, nil
}

const defaultCountryCode = "+51"

// ShareRequest names the chat a post is shared to. Attachment marks the
// message as carrying the post's media file.
type ShareRequest struct {
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	Attachment  bool   `json:"attachment"`
}

type ShareLink struct {
	RedirectURL string `json:"redirect_url"`
	DownloadURL string `json:"download_url,omitempty"`
}

// Share builds the wa.me link that sends post id to the requested number.
func (s *Service) Share(ctx context.Context, id string, req ShareRequest) (ShareLink, error) {
	if strings.TrimSpace(req.Phone) == "" {
		return ShareLink{}, apperr.Validation("phone is required")
	}
	p, err := s.Post(ctx, id)
	if err != nil {
		return ShareLink{}, err
	}
	share := message.ContentShare{Title: p.Title, Description: p.Excerpt}
	mediaID, kind := p.FeaturedVideo, media.KindClip
	if mediaID == "" {
		mediaID, kind = p.FeaturedImage, media.KindPicture
	}
	var link ShareLink
	if view, err := media.ViewURL(mediaID); err == nil {
		share.TutorialURL, share.TutorialKind = view, string(kind)
		link.DownloadURL, _ = media.DownloadURL(mediaID)
	}
	text := share.Text()
	if req.Attachment && link.DownloadURL != "" {
		text = message.WithAttachment(text)
	}
	countryCode := req.CountryCode
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	link.RedirectURL = message.RedirectURL(countryCode+req.Phone, text)
	return link, nil
}
