package chat

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Mode is the single slot of pending-input expectation of a conversation
type Mode int

const (
	ModeNormal Mode = iota
	ModeAwaitingOrderNumber
	ModeAwaitingEmail
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeAwaitingOrderNumber:
		return "awaiting_order_number"
	case ModeAwaitingEmail:
		return "awaiting_email"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Intent names the branch that produced a reply
type Intent string

const (
	IntentShipping     Intent = "shipping"
	IntentReturns      Intent = "returns"
	IntentTracking     Intent = "tracking"
	IntentSizing       Intent = "sizing"
	IntentCart         Intent = "cart"
	IntentArtist       Intent = "artist"
	IntentNewsletter   Intent = "newsletter"
	IntentGreeting     Intent = "greeting"
	IntentFallback     Intent = "fallback"
	IntentOrderLookup  Intent = "order_lookup"
	IntentEmailCapture Intent = "email_capture"
)

// Rule maps trigger keywords to a canned reply and the mode entered after it.
// Keywords are matched as substrings of the lower-cased message.
type Rule struct {
	Intent   Intent
	Keywords []string
	Next     Mode
	Reply    func(cartTotal decimal.Decimal) string
}

func fixed(text string) func(decimal.Decimal) string {
	return func(decimal.Decimal) string { return text }
}

// Rules is the keyword precedence list; the first matching rule wins.
var Rules = []Rule{
	{
		Intent:   IntentShipping,
		Keywords: []string{"shipping", "delivery"},
		Reply: fixed("We offer free shipping on orders over $75!\n\n" +
			"• Standard shipping (5-7 days): $5\n" +
			"• Express shipping (2-3 days): $12\n\n" +
			"All orders are printed on demand and ship from our facility in California. " +
			"You'll receive a tracking number once your order ships."),
	},
	{
		Intent:   IntentReturns,
		Keywords: []string{"return", "refund"},
		Reply: fixed("We accept returns within 30 days of delivery.\n\n" +
			"• Items must be unworn and in original condition\n" +
			"• Return shipping is the customer's responsibility\n" +
			"• Refunds are processed within 5-7 business days\n\n" +
			"To start a return, just reply with \"start return\" and I'll help you out!"),
	},
	{
		Intent:   IntentTracking,
		Keywords: []string{"track", "order", "where"},
		Next:     ModeAwaitingOrderNumber,
		Reply: fixed("I can help you track your order! Please provide your order number " +
			"(it looks like JM-123456). You can find it in your order confirmation email."),
	},
	{
		Intent:   IntentSizing,
		Keywords: []string{"size", "fit", "sizing"},
		Reply: fixed("Our t-shirts are unisex and run true to size.\n\n" +
			"Size Guide:\n" +
			"• S: Chest 34-36\"\n" +
			"• M: Chest 38-40\"\n" +
			"• L: Chest 42-44\"\n" +
			"• XL: Chest 46-48\"\n" +
			"• 2XL: Chest 50-52\"\n\n" +
			"The shirts are 100% combed cotton with a regular fit. When in doubt, size up for a more relaxed fit!"),
	},
	{
		Intent:   IntentCart,
		Keywords: []string{"cart", "checkout", "buy"},
		Reply: func(total decimal.Decimal) string {
			if total.IsPositive() {
				return fmt.Sprintf("I see you have $%s in your cart! Ready to checkout? "+
					"Click the cart icon in the top right to complete your purchase. "+
					"Need help with anything else?", total.StringFixed(2))
			}
			return "Your cart is empty! Browse our collection of Joe McHugh psychedelic art t-shirts " +
				"and add some to your cart. Is there a specific design you're looking for?"
		},
	},
	{
		Intent:   IntentArtist,
		Keywords: []string{"joe", "artist", "who"},
		Reply: fixed("Joe McHugh (1939-2022) was a visionary artist and pioneer of the psychedelic art movement. " +
			"His work emerged from the 1960s counterculture, combining mystical symbolism with playful line drawings. " +
			"Each t-shirt features his original artwork, printed on high-quality cotton for a piece of wearable art history."),
	},
	{
		Intent:   IntentNewsletter,
		Keywords: []string{"email", "newsletter", "subscribe"},
		Next:     ModeAwaitingEmail,
		Reply: fixed("I'd be happy to add you to our newsletter! Please share your email address " +
			"and you'll be the first to know about new designs and exclusive offers."),
	},
	{
		Intent:   IntentGreeting,
		Keywords: []string{"hello", "hi", "hey"},
		Reply: fixed("Hello! Welcome to Joe McHugh Collection. I can help you with:\n\n" +
			"• Product information\n" +
			"• Shipping & delivery\n" +
			"• Order tracking\n" +
			"• Returns & exchanges\n" +
			"• Sizing questions\n\n" +
			"What can I assist you with today?"),
	},
}

// FallbackRule answers when no rule matches
var FallbackRule = Rule{
	Intent: IntentFallback,
	Reply: fixed("Thank you for reaching out! I can help with questions about our psychedelic art t-shirts, " +
		"shipping, returns, order tracking, and sizing. What would you like to know? " +
		"Or try one of the quick reply buttons below!"),
}

// Match returns the first rule whose keywords appear in text, or FallbackRule
func Match(rules []Rule, text string) Rule {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r
			}
		}
	}
	return FallbackRule
}
