// Package admin is the privileged CRUD surface over every managed collection.
package admin

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/blog"
	"github.com/ariefcatur/go-streaming-store/internal/feed"
	"github.com/ariefcatur/go-streaming-store/internal/media"
)

// Kind names a managed collection. Values match the admin tabs.
type Kind string

const (
	KindProducts       Kind = "products"
	KindCategories     Kind = "categories"
	KindUsers          Kind = "users"
	KindFAQs           Kind = "faqs"
	KindSocial         Kind = "social"
	KindSettings       Kind = "settings"
	KindPosts          Kind = "posts"
	KindBlogCategories Kind = "blog-categories"
)

var kindTables = map[Kind]string{
	KindProducts:       feed.TableProducts,
	KindCategories:     feed.TableCategories,
	KindUsers:          feed.TableUsers,
	KindFAQs:           feed.TableFAQs,
	KindSocial:         feed.TableSocialLinks,
	KindSettings:       feed.TableSiteSettings,
	KindPosts:          feed.TablePosts,
	KindBlogCategories: feed.TableBlogCategories,
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kindTables[k]; !ok {
		return "", apperr.Validation("unknown collection %q", s)
	}
	return k, nil
}

// Table returns the table backing k.
func (k Kind) Table() string { return kindTables[k] }

// Entity is one admin form. Each collection has its own variant.
type Entity interface {
	Kind() Kind
	EntityID() string
	setID(id string)
	validate() error
}

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	ImageID         string          `json:"image_id"`
	TermsConditions string          `json:"terms_conditions"`
	CategoryID      *string         `json:"category_id"`
	IsActive        *bool           `json:"is_active"`
}

type StoreCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	// Password is plaintext on the way in; it is hashed before storage and
	// left empty on update to keep the current one.
	Password string `json:"password,omitempty"`
	IsActive *bool  `json:"is_active"`

	passwordHash string
}

type FAQ struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	OrderIndex int    `json:"order_index"`
	IsActive   *bool  `json:"is_active"`
}

type SocialLink struct {
	ID         string `json:"id"`
	Platform   string `json:"platform"`
	URL        string `json:"url"`
	Icon       string `json:"icon"`
	OrderIndex int    `json:"order_index"`
	IsActive   *bool  `json:"is_active"`
}

type Settings struct {
	SiteTitle      string `json:"site_title"`
	SiteSubtitle   string `json:"site_subtitle"`
	HeroImage      string `json:"hero_image"`
	ContactPhone   string `json:"contact_phone"`
	ContactEmail   string `json:"contact_email"`
	WhatsAppURL    string `json:"whatsapp_url"`
	ReservationURL string `json:"reservation_url"`
	FooterText     string `json:"footer_text"`
	DeveloperText  string `json:"developer_text"`
}

type Post struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"content"`
	FeaturedImage string     `json:"featured_image"`
	FeaturedVideo string     `json:"featured_video"`
	CategoryID    *string    `json:"category_id"`
	IsPublished   *bool      `json:"is_published"`
	PublishedAt   *time.Time `json:"published_at"`
}

type BlogCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (*Product) Kind() Kind       { return KindProducts }
func (*StoreCategory) Kind() Kind { return KindCategories }
func (*User) Kind() Kind          { return KindUsers }
func (*FAQ) Kind() Kind           { return KindFAQs }
func (*SocialLink) Kind() Kind    { return KindSocial }
func (*Settings) Kind() Kind      { return KindSettings }
func (*Post) Kind() Kind          { return KindPosts }
func (*BlogCategory) Kind() Kind  { return KindBlogCategories }

func (e *Product) EntityID() string       { return e.ID }
func (e *StoreCategory) EntityID() string { return e.ID }
func (e *User) EntityID() string          { return e.ID }
func (e *FAQ) EntityID() string           { return e.ID }
func (e *SocialLink) EntityID() string    { return e.ID }
func (*Settings) EntityID() string        { return blog.SettingsID }
func (e *Post) EntityID() string          { return e.ID }
func (e *BlogCategory) EntityID() string  { return e.ID }

func (e *Product) setID(id string)       { e.ID = id }
func (e *StoreCategory) setID(id string) { e.ID = id }
func (e *User) setID(id string)          { e.ID = id }
func (e *FAQ) setID(id string)           { e.ID = id }
func (e *SocialLink) setID(id string)    { e.ID = id }
func (*Settings) setID(string)           {}
func (e *Post) setID(id string)          { e.ID = id }
func (e *BlogCategory) setID(id string)  { e.ID = id }

// required takes name, value pairs and reports the first blank one.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return apperr.Validation("%s is required", pairs[i])
		}
	}
	return nil
}

// mediaRef accepts a bare identifier or any supported address and stores the identifier.
func mediaRef(field string, ref *string) error {
	if strings.TrimSpace(*ref) == "" {
		*ref = ""
		return nil
	}
	id := media.ExtractID(*ref)
	if !media.Valid(id) {
		return apperr.Validation("%s: %v", field, media.ErrInvalidID)
	}
	*ref = id
	return nil
}

func (e *Product) validate() error {
	if err := required("name", e.Name); err != nil {
		return err
	}
	if e.Price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	if e.Stock < 0 {
		return apperr.Validation("stock must not be negative")
	}
	return mediaRef("image_id", &e.ImageID)
}

func (e *StoreCategory) validate() error {
	return required("name", e.Name)
}

func (e *User) validate() error {
	return required("name", e.Name, "phone", e.Phone, "email", e.Email, "username", e.Username)
}

func (e *FAQ) validate() error {
	return required("question", e.Question, "answer", e.Answer)
}

func (e *SocialLink) validate() error {
	return required("platform", e.Platform, "url", e.URL)
}

func (e *Settings) validate() error {
	if err := required("site_title", e.SiteTitle); err != nil {
		return err
	}
	return mediaRef("hero_image", &e.HeroImage)
}

func (e *Post) validate() error {
	if err := required("title", e.Title); err != nil {
		return err
	}
	if err := mediaRef("featured_image", &e.FeaturedImage); err != nil {
		return err
	}
	return mediaRef("featured_video", &e.FeaturedVideo)
}

func (e *BlogCategory) validate() error {
	return required("name", e.Name)
}

// Decode builds the variant for kind from a JSON form.
func Decode(kind Kind, data []byte) (Entity, error) {
	var e Entity
	switch kind {
	case KindProducts:
		e = &Product{}
	case KindCategories:
		e = &StoreCategory{}
	case KindUsers:
		e = &User{}
	case KindFAQs:
		e = &FAQ{}
	case KindSocial:
		e = &SocialLink{}
	case KindSettings:
		e = &Settings{}
	case KindPosts:
		e = &Post{}
	case KindBlogCategories:
		e = &BlogCategory{}
	default:
		return nil, apperr.Validation("unknown collection %q", kind)
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, apperr.Validation("malformed %s form: %v", kind, err)
	}
	return e, nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// emptyToNil turns a blank optional reference into NULL.
func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
