package worker

import (
	"context"
	"testing"
	"time"

	"storefront/internal/broker"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetSyncRows(t *testing.T) {
	var rows []SheetRow
	sync := NewSheetSync(func(r SheetRow) { rows = append(rows, r) })
	publisher := broker.NewEventPublisher(broker.NewLocalSink(sync.Handler().HandleMessage), "local")
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, publisher.PublishNewsletterSignup(ctx, &models.NewsletterSignupEvent{
		BaseEvent: models.BaseEvent{EventID: "e1", EventType: models.EventTypeNewsletterSignup, Timestamp: now},
		Email:     "fan@example.com",
		Source:    models.SourceNewsletter,
	}))
	require.NoError(t, publisher.PublishOrderPlaced(ctx, &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{EventID: "e2", EventType: models.EventTypeOrderPlaced, Timestamp: now},
		OrderID:   "JM-123456",
		Email:     "buyer@example.com",
		Total:     decimal.RequireFromString("75"),
	}))
	require.NoError(t, publisher.PublishContactSubmitted(ctx, &models.ContactSubmittedEvent{
		BaseEvent: models.BaseEvent{EventID: "e3", EventType: models.EventTypeContactSubmitted, Timestamp: now},
		FirstName: "Ada",
		Email:     "ada@example.com",
		Subject:   "Hi",
		Source:    models.SourceContact,
	}))

	require.Len(t, rows, 3)

	assert.Equal(t, "newsletter", rows[0].Sheet)
	assert.Equal(t, "fan@example.com", rows[0].Email)
	assert.Equal(t, models.SourceNewsletter, rows[0].Source)
	assert.True(t, now.Equal(rows[0].Timestamp))

	assert.Equal(t, "orders", rows[1].Sheet)
	assert.Equal(t, "JM-123456", rows[1].Fields["order_id"])
	assert.Equal(t, "75.00", rows[1].Fields["total"])

	assert.Equal(t, "contact", rows[2].Sheet)
	assert.Equal(t, "Hi", rows[2].Fields["subject"])
}

func TestSheetSyncWithoutRecorder(t *testing.T) {
	sync := NewSheetSync(nil)
	assert.NoError(t, sync.HandleNewsletterSignup(context.Background(), &models.NewsletterSignupEvent{Email: "x@y.z"}))
}
