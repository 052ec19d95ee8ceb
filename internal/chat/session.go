package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const welcomeID = "welcome"

// OrderLookup resolves order ids for the tracking flow
type OrderLookup interface {
	Lookup(ctx context.Context, id string) (*models.Order, error)
}

// EmailSet records newsletter opt-ins. Add reports whether the address was new.
type EmailSet interface {
	Add(ctx context.Context, email string) (bool, error)
}

// CartTotaler exposes the current cart value
type CartTotaler interface {
	TotalPrice() decimal.Decimal
}

// Kind distinguishes typed messages from quick-reply taps
type Kind int

const (
	KindTyped Kind = iota
	KindQuickReply
)

// QuickReplies are offered at the start of a conversation
var QuickReplies = []string{
	"Tell me about shipping",
	"What are your returns?",
	"Track my order",
	"Product sizing",
	"View my cart",
}

// quickReplyWindow is the transcript length below which quick replies are shown
const quickReplyWindow = 3

// defaultLookupTimeout bounds order lookups and email captures per reply
const defaultLookupTimeout = 3 * time.Second

// Options configures the simulated typing delay
type Options struct {
	TypedDelay      time.Duration
	QuickReplyDelay time.Duration
	// LookupTimeout bounds external calls made while replying; zero means 3s
	LookupTimeout   time.Duration
}

func (o Options) lookupTimeout() time.Duration {
	if o.LookupTimeout > 0 {
		return o.LookupTimeout
	}
	return defaultLookupTimeout
}

// Session owns a transcript and its conversation mode. Replies to Send are
// revealed after a delay; Close discards any that are still pending.
type Session struct {
	// respondMu serializes replies so each sees the mode left by the last
	respondMu sync.Mutex

	mu       sync.Mutex
	messages []models.ChatMessage
	mode     Mode
	queue    []string
	timers   map[uint64]*time.Timer
	nextID   uint64
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc

	orders OrderLookup
	emails EmailSet
	cart   CartTotaler
	opts   Options
	logger *zap.Logger
}

// NewSession creates a session seeded with the welcome message
func NewSession(orders OrderLookup, emails EmailSet, cart CartTotaler, opts Options) *Session {
	if orders == nil || emails == nil || cart == nil {
		panic("chat: NewSession called with nil dependency")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		messages: []models.ChatMessage{welcome()},
		timers:   make(map[uint64]*time.Timer),
		ctx:      ctx,
		cancel:   cancel,
		orders:   orders,
		emails:   emails,
		cart:     cart,
		opts:     opts,
		logger:   util.ComponentLogger("chat"),
	}
}

func welcome() models.ChatMessage {
	return models.ChatMessage{
		ID:        welcomeID,
		Role:      models.RoleAssistant,
		Content:   WelcomeMessage,
		Timestamp: time.Now(),
	}
}

// AddMessage appends a message with a fresh id and the current time
func (s *Session) AddMessage(content string, role models.Role) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(content, role)
}

func (s *Session) appendLocked(content string, role models.Role) models.ChatMessage {
	msg := models.ChatMessage{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, msg)
	util.ChatMessagesTotal.WithLabelValues(string(role)).Inc()
	return msg
}

// Respond produces the reply to text and applies the resulting mode change
// before returning. It does not touch the transcript.
func (s *Session) Respond(ctx context.Context, text string) string {
	s.respondMu.Lock()
	defer s.respondMu.Unlock()
	return s.respond(ctx, text)
}

// respond must be called with respondMu held and mu released. Order lookups
// and email captures may hit Postgres or Redis, so they run outside mu.
func (s *Session) respond(ctx context.Context, text string) string {
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.opts.lookupTimeout())
	defer cancel()

	env := Env{
		CartTotal: s.cart.TotalPrice(),
		LookupOrder: func(id string) (models.Order, bool) {
			order, err := s.orders.Lookup(ctx, id)
			if err != nil || order == nil {
				return models.Order{}, false
			}
			return *order, true
		},
	}
	out := Step(mode, text, env)

	if out.CapturedEmail != "" {
		if _, err := s.emails.Add(ctx, out.CapturedEmail); err != nil {
			s.logger.Error("Failed to capture email", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.mode = out.Next
	s.mu.Unlock()

	if out.Next != mode {
		s.logger.Debug("Conversation mode changed",
			zap.Stringer("from", mode),
			zap.Stringer("to", out.Next))
	}
	util.ChatIntentsTotal.WithLabelValues(string(out.Intent)).Inc()
	return out.Reply
}

// Send appends a user message and schedules the assistant reply. Blank input is
// ignored and reported as false. Replies are produced in send order.
func (s *Session) Send(text string, kind Kind) (models.ChatMessage, bool) {
	if strings.TrimSpace(text) == "" {
		return models.ChatMessage{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.ChatMessage{}, false
	}

	msg := s.appendLocked(text, models.RoleUser)
	s.queue = append(s.queue, text)

	delay := s.opts.TypedDelay
	if kind == KindQuickReply {
		delay = s.opts.QuickReplyDelay
	}

	id := s.nextID
	s.nextID++
	s.timers[id] = time.AfterFunc(delay, func() { s.deliver(id) })
	return msg, true
}

// deliver answers the oldest queued message, whichever timer fires first.
// The message stays queued, so Typing holds, until its reply is appended.
func (s *Session) deliver(id uint64) {
	s.respondMu.Lock()
	defer s.respondMu.Unlock()

	s.mu.Lock()
	if s.closed || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	text := s.queue[0]
	s.mu.Unlock()

	reply := s.respond(s.ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = s.queue[1:]
	s.appendLocked(reply, models.RoleAssistant)
}

// Messages returns a copy of the transcript
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// ClearMessages resets the transcript to the welcome message. The conversation
// mode is left as is.
func (s *Session) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []models.ChatMessage{welcome()}
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Typing reports whether a reply is pending
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0
}

// AvailableQuickReplies returns the quick replies to show, if any
func (s *Session) AvailableQuickReplies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) > 0 || len(s.messages) >= quickReplyWindow {
		return nil
	}
	return append([]string(nil), QuickReplies...)
}

// Placeholder returns the input hint for the current mode
func (s *Session) Placeholder() string {
	switch s.Mode() {
	case ModeAwaitingOrderNumber:
		return "Enter order number (JM-123456)..."
	case ModeAwaitingEmail:
		return "Enter your email..."
	default:
		return "Type your message..."
	}
}

// Close stops pending replies. A timer that already fired becomes a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
	s.queue = nil
}
