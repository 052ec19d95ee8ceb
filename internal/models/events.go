package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderPlaced      = "ORDER_PLACED"
	EventTypeNewsletterSignup = "NEWSLETTER_SIGNUP"
	EventTypeContactSubmitted = "CONTACT_SUBMITTED"
)

// Sources recorded alongside spreadsheet rows
const (
	SourceChat       = "chat"
	SourceNewsletter = "newsletter"
	SourceContact    = "contact_form"
	SourceCheckout   = "checkout"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewsletterSignupEvent published when an email is captured for the first time
type NewsletterSignupEvent struct {
	BaseEvent
	Email  string `json:"email"`
	Source string `json:"source"`
}

// ContactSubmittedEvent published when the contact form is submitted
type ContactSubmittedEvent struct {
	BaseEvent
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Source    string `json:"source"`
}

// OrderPlacedEvent published when checkout completes
type OrderPlacedEvent struct {
	BaseEvent
	OrderID string          `json:"order_id"`
	Email   string          `json:"email"`
	Total   decimal.Decimal `json:"total"`
	Items   []CartLine      `json:"items"`
}
