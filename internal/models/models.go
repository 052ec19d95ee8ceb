package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item in the catalog
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Price       decimal.Decimal   `json:"price"`
	Description string            `json:"description"`
	Images      map[string]string `json:"images"`
	Sizes       []string          `json:"sizes"`
	Colors      []string          `json:"colors"`
	Category    string            `json:"category"`
}

// CartLine is one (product, size, color) selection with a quantity
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	ImageRef  string          `json:"image"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
}

// LineKey is the identity of a cart line
type LineKey struct {
	ProductID string
	Size      string
	Color     string
}

// Key returns the identity key of the line
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// Subtotal returns unit price times quantity
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Role is the author of a chat message
type Role string

// Chat roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is an immutable transcript entry
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderStatus is the fulfilment state of an order
type OrderStatus string

// Order statuses
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// Title returns the status with its first letter upper-cased
func (s OrderStatus) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Order represents a placed order
type Order struct {
	ID        string          `db:"id" json:"id"`
	Status    OrderStatus     `db:"status" json:"status"`
	Total     decimal.Decimal `db:"total" json:"total"`
	Email     string          `db:"email" json:"email"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}
