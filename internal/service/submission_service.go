package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/broker"
	"storefront/internal/chat"
	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactForm is the contact page submission
type ContactForm struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// SubmissionService handles the contact form and the footer newsletter form.
// Neither sends anything; both wait out a simulated round trip, log the row
// that would be synced to the spreadsheet and publish an integration event.
type SubmissionService struct {
	delay          time.Duration
	newsletter     *NewsletterList
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(delay time.Duration, newsletter *NewsletterList, eventPublisher *broker.EventPublisher) *SubmissionService {
	return &SubmissionService{
		delay:          delay,
		newsletter:     newsletter,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// SubmitContact accepts a contact form. It only fails on invalid input or if
// ctx ends before the simulated round trip completes.
func (s *SubmissionService) SubmitContact(ctx context.Context, form ContactForm) error {
	ctx, span := util.StartSpan(ctx, "SubmissionService.SubmitContact")
	defer span.End()

	form.Email = strings.TrimSpace(form.Email)
	if !chat.ValidEmail(form.Email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, form.Email)
	}

	s.logger.Info("[DEMO] Would sync contact submission to Google Sheets",
		zap.String("first_name", form.FirstName),
		zap.String("last_name", form.LastName),
		zap.String("email", form.Email),
		zap.String("subject", form.Subject),
		zap.String("source", models.SourceContact))

	if err := sleepCtx(ctx, s.delay); err != nil {
		return fmt.Errorf("contact submission interrupted: %w", err)
	}
	util.SubmissionsTotal.WithLabelValues("contact").Inc()

	event := &models.ContactSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeContactSubmitted,
			Timestamp: time.Now(),
		},
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Subject:   form.Subject,
		Message:   form.Message,
		Source:    models.SourceContact,
	}
	if err := s.eventPublisher.PublishContactSubmitted(ctx, event); err != nil {
		s.logger.Error("Failed to publish ContactSubmitted event", zap.Error(err))
	}
	return nil
}

// Subscribe adds email to the newsletter list. Reports whether it was new.
func (s *SubmissionService) Subscribe(ctx context.Context, email string) (bool, error) {
	ctx, span := util.StartSpan(ctx, "SubmissionService.Subscribe")
	defer span.End()

	email = strings.TrimSpace(email)
	if !chat.ValidEmail(email) {
		return false, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	if err := sleepCtx(ctx, s.delay); err != nil {
		return false, fmt.Errorf("newsletter signup interrupted: %w", err)
	}
	util.SubmissionsTotal.WithLabelValues("newsletter").Inc()

	return s.newsletter.Capture(ctx, email, models.SourceNewsletter)
}
