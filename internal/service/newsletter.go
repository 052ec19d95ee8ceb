package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/broker"
	"storefront/internal/chat"
	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmailStore is the deduplicating set behind the newsletter list
type EmailStore interface {
	Add(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]string, error)
}

// NewsletterList captures opt-ins and announces each new address once
type NewsletterList struct {
	store          EmailStore
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

func NewNewsletterList(store EmailStore, eventPublisher *broker.EventPublisher) *NewsletterList {
	return &NewsletterList{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// Capture adds email, recording where it came from. Resubmitting an address is a no-op.
func (n *NewsletterList) Capture(ctx context.Context, email, source string) (bool, error) {
	ctx, span := util.StartSpan(ctx, "NewsletterList.Capture")
	defer span.End()

	added, err := n.store.Add(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to store email: %w", err)
	}
	if !added {
		n.logger.Debug("Email already captured", zap.String("email", email))
		return false, nil
	}

	util.EmailsCapturedTotal.WithLabelValues(source).Inc()
	n.logger.Info("Email captured for newsletter", zap.String("email", email), zap.String("source", source))

	event := &models.NewsletterSignupEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeNewsletterSignup,
			Timestamp: time.Now(),
		},
		Email:  email,
		Source: source,
	}
	if err := n.eventPublisher.PublishNewsletterSignup(ctx, event); err != nil {
		n.logger.Error("Failed to publish NewsletterSignup event", zap.Error(err))
	}
	return true, nil
}

// Emails lists captured addresses
func (n *NewsletterList) Emails(ctx context.Context) ([]string, error) {
	return n.store.List(ctx)
}

// ForSource binds the list to a source so it can back a chat session
func (n *NewsletterList) ForSource(source string) chat.EmailSet {
	return sourcedList{list: n, source: source}
}

type sourcedList struct {
	list   *NewsletterList
	source string
}

func (s sourcedList) Add(ctx context.Context, email string) (bool, error) {
	return s.list.Capture(ctx, email, s.source)
}
