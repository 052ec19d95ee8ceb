package chat

import (
	"fmt"
	"regexp"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// WelcomeMessage seeds every transcript
const WelcomeMessage = "Welcome to Joe McHugh Collection! I'm here to help with questions about our " +
	"psychedelic art t-shirts, shipping, returns, or order tracking. How can I assist you today?"

const (
	orderNotFoundReply = "I couldn't find an order with that number. Please check your order confirmation email. " +
		"Order numbers look like \"JM-123456\". Would you like to try again or speak to our support team?"
	invalidEmailReply = "That doesn't look like a valid email address. " +
		"Please try again with a valid email like name@example.com"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s has the local@domain.tld shape
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Env is the read-only context a reply may depend on
type Env struct {
	CartTotal decimal.Decimal
	// LookupOrder resolves an order id, case-insensitively
	LookupOrder func(id string) (models.Order, bool)
}

// Outcome is the output of one transition: the reply and the next mode.
// CapturedEmail is set when the input should be added to the newsletter list.
type Outcome struct {
	Reply         string
	Next          Mode
	Intent        Intent
	CapturedEmail string
}

// Step is the conversation transition function. A pending expectation is
// consumed by exactly one message whether or not that message satisfies it.
// The text is used exactly as typed: an email with surrounding spaces is invalid.
func Step(mode Mode, text string, env Env) Outcome {
	switch mode {
	case ModeAwaitingOrderNumber:
		return Outcome{Reply: orderReply(text, env), Next: ModeNormal, Intent: IntentOrderLookup}

	case ModeAwaitingEmail:
		if !ValidEmail(text) {
			return Outcome{Reply: invalidEmailReply, Next: ModeNormal, Intent: IntentEmailCapture}
		}
		return Outcome{
			Reply: fmt.Sprintf("Thank you! We've added %s to our newsletter. You'll be the first to know "+
				"about new Joe McHugh designs and exclusive offers.\n\n[DEMO: This would sync to Google Sheets]", text),
			Next:          ModeNormal,
			Intent:        IntentEmailCapture,
			CapturedEmail: text,
		}
	}

	rule := Match(Rules, text)
	return Outcome{Reply: rule.Reply(env.CartTotal), Next: rule.Next, Intent: rule.Intent}
}

func orderReply(id string, env Env) string {
	if env.LookupOrder == nil {
		return orderNotFoundReply
	}
	order, ok := env.LookupOrder(id)
	if !ok {
		return orderNotFoundReply
	}

	var guidance string
	switch order.Status {
	case models.OrderStatusShipped:
		guidance = "Your order is on its way! You should receive it within 3-5 business days."
	case models.OrderStatusDelivered:
		guidance = "Your order has been delivered. We hope you love your Joe McHugh art!"
	default:
		guidance = "We're preparing your order for shipment."
	}

	return fmt.Sprintf("Found your order!\n\nOrder #%s\nStatus: %s\nTotal: $%s\n\n%s",
		order.ID, order.Status.Title(), order.Total.StringFixed(2), guidance)
}
