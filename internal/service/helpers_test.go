package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"storefront/internal/broker"
	"storefront/internal/cart"
	"storefront/internal/kv"
	"storefront/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// recordingSink keeps the base envelope of every published event
type recordingSink struct {
	mu     sync.Mutex
	events []models.BaseEvent
	raw    [][]byte
}

func (r *recordingSink) handle(_ context.Context, msg kafka.Message) error {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, base)
	r.raw = append(r.raw, msg.Value)
	return nil
}

func (r *recordingSink) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

func newRecordingPublisher() (*broker.EventPublisher, *recordingSink) {
	rec := &recordingSink{}
	return broker.NewEventPublisher(broker.NewLocalSink(rec.handle), "test"), rec
}

func newTestCart(t *testing.T) *cart.Store {
	t.Helper()
	return cart.NewStore(kv.NewMemoryStore(), cart.DefaultKey)
}

func addLine(t *testing.T, c *cart.Store, id, size, color string, qty int, price string) {
	t.Helper()
	require.NoError(t, c.AddItem(models.CartLine{
		ProductID: id,
		Name:      id,
		UnitPrice: decimal.RequireFromString(price),
		Size:      size,
		Color:     color,
		Quantity:  qty,
	}))
}
