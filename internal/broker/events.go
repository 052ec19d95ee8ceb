package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing integration events
type EventPublisher struct {
	sink     EventSink
	sinkName string
}

// NewEventPublisher creates a new event publisher; sinkName labels metrics
func NewEventPublisher(sink EventSink, sinkName string) *EventPublisher {
	return &EventPublisher{sink: sink, sinkName: sinkName}
}

func (ep *EventPublisher) publish(ctx context.Context, key, eventType string, event interface{}) error {
	if err := ep.sink.PublishEvent(ctx, key, event); err != nil {
		return err
	}
	util.IntegrationEventsTotal.WithLabelValues(eventType, ep.sinkName).Inc()
	return nil
}

// PublishOrderPlaced publishes OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return ep.publish(ctx, "order-"+event.OrderID, event.EventType, event)
}

// PublishNewsletterSignup publishes NewsletterSignup event
func (ep *EventPublisher) PublishNewsletterSignup(ctx context.Context, event *models.NewsletterSignupEvent) error {
	return ep.publish(ctx, "newsletter-"+event.Email, event.EventType, event)
}

// PublishContactSubmitted publishes ContactSubmitted event
func (ep *EventPublisher) PublishContactSubmitted(ctx context.Context, event *models.ContactSubmittedEvent) error {
	return ep.publish(ctx, "contact-"+event.Email, event.EventType, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onOrderPlaced      func(context.Context, *models.OrderPlacedEvent) error
	onNewsletterSignup func(context.Context, *models.NewsletterSignupEvent) error
	onContactSubmitted func(context.Context, *models.ContactSubmittedEvent) error
	logger             *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.ComponentLogger("events")}
}

// OnOrderPlaced registers a handler for OrderPlaced events
func (eh *EventHandler) OnOrderPlaced(handler func(context.Context, *models.OrderPlacedEvent) error) {
	eh.onOrderPlaced = handler
}

// OnNewsletterSignup registers a handler for NewsletterSignup events
func (eh *EventHandler) OnNewsletterSignup(handler func(context.Context, *models.NewsletterSignupEvent) error) {
	eh.onNewsletterSignup = handler
}

// OnContactSubmitted registers a handler for ContactSubmitted events
func (eh *EventHandler) OnContactSubmitted(handler func(context.Context, *models.ContactSubmittedEvent) error) {
	eh.onContactSubmitted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeOrderPlaced:
		if eh.onOrderPlaced != nil {
			var event models.OrderPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
			}
			return eh.onOrderPlaced(ctx, &event)
		}

	case models.EventTypeNewsletterSignup:
		if eh.onNewsletterSignup != nil {
			var event models.NewsletterSignupEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal NewsletterSignup event: %w", err)
			}
			return eh.onNewsletterSignup(ctx, &event)
		}

	case models.EventTypeContactSubmitted:
		if eh.onContactSubmitted != nil {
			var event models.ContactSubmittedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ContactSubmitted event: %w", err)
			}
			return eh.onContactSubmitted(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
