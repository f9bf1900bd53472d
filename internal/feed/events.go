// Package feed carries table-change notifications from writers to the
// snapshot caches that must reload after a write.
package feed

import (
	"encoding/json"
	"time"
)

const (
	TopicChanges      = "store.table.changes"
	EventTableChanged = "TableChanged"
	EventVersion      = 1
)

// Tables that publish changes.
const (
	TablePosts          = "posts"
	TableBlogCategories = "blog_categories"
	TableFAQs           = "faqs"
	TableSocialLinks    = "social_links"
	TableSiteSettings   = "site_settings"
	TableCategories     = "categories"
	TableProducts       = "products"
	TableUsers          = "users"
	TablePurchases      = "purchases"
	TableSupportTickets = "support_tickets"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // row id
	Payload       json.RawMessage `json:"payload"`
}

type ChangePayload struct {
	Table string `json:"table"`
	Op    Op     `json:"op"`
	ID    string `json:"id,omitempty"`
}

// PartitionKey keeps all events of one table in order.
func PartitionKey(table string) []byte { return []byte(table) }
