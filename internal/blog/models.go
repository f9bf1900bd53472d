// Package blog serves the support/blog content site: published posts with
// their categories, FAQs, social links and site settings.
package blog

import "time"

type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content"`
	FeaturedImage string    `json:"featured_image,omitempty"`
	FeaturedVideo string    `json:"featured_video,omitempty"`
	CategoryID    *string   `json:"category_id,omitempty"`
	Category      *Category `json:"category"` // nil when unset or dangling
	IsPublished   bool      `json:"is_published"`
	PublishedAt   time.Time `json:"published_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p Post) SearchText() []string { return []string{p.Title, p.Excerpt, p.Content} }

func (p Post) CategoryRef() string {
	if p.CategoryID == nil {
		return ""
	}
	return *p.CategoryID
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	PostCount   int       `json:"post_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FAQ struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	OrderIndex int       `json:"order_index"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type SocialLink struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	URL        string    `json:"url"`
	Icon       string    `json:"icon"`
	OrderIndex int       `json:"order_index"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SettingsID is the primary key of the singleton settings row.
const SettingsID = "default"

type SiteSettings struct {
	ID             string    `json:"id"`
	SiteTitle      string    `json:"site_title"`
	SiteSubtitle   string    `json:"site_subtitle"`
	HeroImage      string    `json:"hero_image,omitempty"`
	ContactPhone   string    `json:"contact_phone"`
	ContactEmail   string    `json:"contact_email,omitempty"`
	WhatsAppURL    string    `json:"whatsapp_url,omitempty"`
	ReservationURL string    `json:"reservation_url,omitempty"`
	FooterText     string    `json:"footer_text"`
	DeveloperText  string    `json:"developer_text,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultSettings is served while no settings row exists.
func DefaultSettings() SiteSettings {
	now := time.Now().UTC()
	return SiteSettings{
		ID:            SettingsID,
		SiteTitle:     "Delte Streaming",
		SiteSubtitle:  "Tu proveedor de confianza para servicios de streaming premium",
		ContactPhone:  "+51936992107",
		WhatsAppURL:   "https://wa.me/51936992107",
		FooterText:    "©️ 2025 - Delte Streaming",
		DeveloperText: "Desarrollado por: CyberLink Express 360 Sure",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
