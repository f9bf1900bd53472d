// Package message builds the templated texts sent through wa.me redirect links.
package message

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonDigits = regexp.MustCompile(`\D`)

// RedirectURL returns the wa.me address that opens a chat with phone prefilled
// with text. Spaces are encoded as %20, not +.
func RedirectURL(phone, text string) string {
	return "https://wa.me/" + nonDigits.ReplaceAllString(phone, "") + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// WithAttachment appends the attachment marker used when a file accompanies the message.
func WithAttachment(text string) string {
	return text + "\n\n📎 *Archivo adjunto incluido*"
}

type Customer struct {
	Name        string
	Username    string
	Email       string
	CountryCode string
	Phone       string
}

type PurchaseNotice struct {
	Customer   Customer
	Product    string
	Price      decimal.Decimal
	PurchaseID string
}

func (n PurchaseNotice) Text() string {
	var b strings.Builder
	b.WriteString("🛒 *NUEVA COMPRA - DELTE STREAMING*\n\n")
	b.WriteString("👤 *Cliente:* " + n.Customer.Name + "\n")
	b.WriteString("📱 *Usuario:* @" + n.Customer.Username + "\n")
	b.WriteString("🎬 *Producto:* " + n.Product + "\n")
	b.WriteString("💰 *Precio:* S/ " + n.Price.StringFixed(2) + "\n")
	b.WriteString("🆔 *ID de Compra:* " + n.PurchaseID + "\n\n")
	b.WriteString("📧 *Correo del cliente:* " + n.Customer.Email + "\n")
	b.WriteString("📞 *Teléfono:* " + n.Customer.CountryCode + " " + n.Customer.Phone + "\n\n")
	b.WriteString("✅ _Compra confirmada - Proceder con la activación del servicio_")
	return b.String()
}

type ProductInquiry struct {
	// CustomerName is empty for guests.
	CustomerName string
	Product      string
	Price        decimal.Decimal
}

func (q ProductInquiry) Text() string {
	name := q.CustomerName
	if name == "" {
		name = "Usuario Invitado"
	}
	var b strings.Builder
	b.WriteString("💬 *CONSULTA - DELTE STREAMING*\n\n")
	b.WriteString("👤 *Cliente:* " + name + "\n")
	b.WriteString("🎬 *Producto de Interés:* " + q.Product + "\n")
	b.WriteString("💰 *Precio:* S/ " + q.Price.StringFixed(2) + "\n\n")
	b.WriteString("❓ *Consulta:* Tengo una pregunta sobre este producto. ¿Podrías ayudarme?\n\n")
	b.WriteString("📞 _Esperando tu respuesta para aclarar mis dudas_")
	return b.String()
}

type SupportRequest struct {
	Product     string
	SupportType string
}

func (s SupportRequest) Text() string {
	return "Hola *Delte*, te envio Soporte de *" + s.Product + "* por *" + s.SupportType +
		"* el correo es: y la contraseña es:"
}

// ContentShare is the message used to share a support article.
type ContentShare struct {
	Title       string
	Description string
	TutorialURL string
	// TutorialKind is "picture", "clip" or empty.
	TutorialKind string
	LinkURL      string
}

func (c ContentShare) Text() string {
	var b strings.Builder
	b.WriteString(contentIcon(c.Title, c.Description) + " *" + c.Title + "*\n\n")
	b.WriteString("📄 *Descripción del contenido:*\n" + c.Description + "\n\n")
	if c.TutorialURL != "" {
		b.WriteString(tutorialIcon(c.TutorialKind) + " *Tutorial ilustrativo:*\n📌 " + c.TutorialURL + "\n\n")
	}
	if c.LinkURL != "" {
		b.WriteString(linkIcon(c.LinkURL) + " *Bot/Enlace directo:*\n🔗 " + c.LinkURL + "\n\n")
	}
	b.WriteString("📍 _Enviado desde el Sistema de Soporte Técnico_")
	return b.String()
}

type iconRule struct {
	keywords []string
	icon     string
}

// first match wins
var contentIcons = []iconRule{
	{[]string{"netflix"}, "🎬"},
	{[]string{"disney", "star plus"}, "🏰"},
	{[]string{"prime video", "amazon"}, "📺"},
	{[]string{"hbo", "max"}, "🎭"},
	{[]string{"paramount"}, "⭐"},
	{[]string{"apple tv"}, "🍎"},
	{[]string{"youtube"}, "📹"},
	{[]string{"crunchyroll"}, "🍜"},
	{[]string{"telegram", "bot"}, "🤖"},
	{[]string{"tutorial", "instrucciones"}, "📚"},
	{[]string{"activación", "links"}, "🔗"},
	{[]string{"streaming"}, "📡"},
	{[]string{"tv", "televisión"}, "📺"},
	{[]string{"error", "problema"}, "🔧"},
	{[]string{"código", "pin"}, "🔑"},
}

var linkIcons = []iconRule{
	{[]string{"t.me", "telegram"}, "🤖"},
	{[]string{"drive.google.com"}, "💾"},
	{[]string{"netflix.com"}, "🎬"},
	{[]string{"disney"}, "🏰"},
	{[]string{"primevideo.com"}, "📺"},
	{[]string{"activate", "activar"}, "🔗"},
	{[]string{"crunchyroll"}, "🍜"},
	{[]string{"hbo", "max"}, "🎭"},
	{[]string{"paramount"}, "⭐"},
	{[]string{"apple"}, "🍎"},
	{[]string{"youtube"}, "📹"},
}

func match(rules []iconRule, s, fallback string) string {
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(s, k) {
				return r.icon
			}
		}
	}
	return fallback
}

func contentIcon(title, description string) string {
	return match(contentIcons, strings.ToLower(title+" "+description), "✅")
}

func linkIcon(u string) string {
	return match(linkIcons, u, "🌐")
}

func tutorialIcon(kind string) string {
	switch kind {
	case "clip", "video":
		return "🎥"
	case "picture", "image":
		return "📄"
	}
	return "🎓"
}
