package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/chat"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubmissions(delay time.Duration) (*SubmissionService, *NewsletterList, *recordingSink) {
	publisher, rec := newRecordingPublisher()
	list := NewNewsletterList(chat.NewMemoryEmailSet(), publisher)
	return NewSubmissionService(delay, list, publisher), list, rec
}

func TestSubscribeDeduplicates(t *testing.T) {
	svc, list, rec := newTestSubmissions(0)
	ctx := context.Background()

	added, err := svc.Subscribe(ctx, " fan@example.com ")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.Subscribe(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.False(t, added)

	emails, err := list.Emails(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fan@example.com"}, emails)
	assert.Equal(t, []string{models.EventTypeNewsletterSignup}, rec.types())
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	svc, _, rec := newTestSubmissions(0)
	_, err := svc.Subscribe(context.Background(), "fan at example")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Empty(t, rec.types())
}

func TestChatAndFooterShareList(t *testing.T) {
	svc, list, rec := newTestSubmissions(0)
	ctx := context.Background()

	added, err := list.ForSource(models.SourceChat).Add(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.Subscribe(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, rec.types(), 1)
}

func TestSubmitContact(t *testing.T) {
	svc, _, rec := newTestSubmissions(time.Millisecond)
	err := svc.SubmitContact(context.Background(), ContactForm{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Subject:   "Wholesale",
		Message:   "Do you ship to the UK?",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{models.EventTypeContactSubmitted}, rec.types())
	assert.Contains(t, string(rec.raw[0]), `"source":"contact_form"`)
}

func TestSubmitContactCancelled(t *testing.T) {
	svc, _, rec := newTestSubmissions(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.SubmitContact(ctx, ContactForm{Email: "ada@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.types())
}
