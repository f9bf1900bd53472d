// Package shop is the streaming-reseller storefront: catalog, customer
// accounts and the purchase flow.
package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	ImageID         string          `json:"image_id,omitempty"`
	TermsConditions string          `json:"terms_conditions,omitempty"`
	CategoryID      *string         `json:"category_id,omitempty"`
	Category        *Category       `json:"category"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p Product) SearchText() []string { return []string{p.Name, p.Description} }

func (p Product) CategoryRef() string {
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
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	CountryCode  string    `json:"country_code"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const PurchaseCompleted = "completed"

type Purchase struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Price        decimal.Decimal `json:"price"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Status       string          `json:"status"`
}
